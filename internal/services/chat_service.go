package services

import (
	"strings"

	"github.com/coolAppl3/hangoutio/internal/models"
	"gorm.io/gorm"
)

// ChatService is plain append/read message storage behind the membership
// check; no invariants beyond that.
type ChatService struct {
	db     *gorm.DB
	notify Notifier
}

func NewChatService(db *gorm.DB, notify Notifier) *ChatService {
	if notify == nil {
		notify = func(string, Event) {}
	}
	return &ChatService{db: db, notify: notify}
}

func (s *ChatService) Send(hangoutID string, identity models.Identity, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > 2000 {
		return nil, errValidation("Message must be 1 to 2000 characters.")
	}

	member, err := memberOf(s.db, hangoutID, identity)
	if err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		HangoutMemberID: member.ID,
		HangoutID:       hangoutID,
		Content:         content,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	s.notify(hangoutID, NewEvent("chat", "messageSent", models.ChatMessageWithAuthor{
		Content:     message.Content,
		CreatedAt:   message.CreatedAt,
		DisplayName: member.DisplayName,
	}))
	return &message, nil
}

func (s *ChatService) List(hangoutID string, identity models.Identity, limit int) ([]models.ChatMessageWithAuthor, error) {
	if _, err := memberOf(s.db, hangoutID, identity); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var messages []models.ChatMessageWithAuthor
	err := s.db.
		Table("chat_messages").
		Select("chat_messages.content, chat_messages.created_at, hangout_members.display_name").
		Joins("JOIN hangout_members ON chat_messages.hangout_member_id = hangout_members.id").
		Where("chat_messages.hangout_id = ?", hangoutID).
		Order("chat_messages.created_at ASC").
		Limit(limit).
		Scan(&messages).Error
	return messages, err
}
