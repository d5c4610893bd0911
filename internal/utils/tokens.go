package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const hangoutIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateHangoutID returns an opaque hangout id: an "h" prefix, the creation
// timestamp, and 32 random characters.
func GenerateHangoutID() string {
	var b strings.Builder
	b.WriteString("h")
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 36))
	b.WriteString("_")
	for i := 0; i < 32; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(hangoutIDAlphabet))))
		if err != nil {
			// crypto/rand failing means the process has bigger problems
			panic(err)
		}
		b.WriteByte(hangoutIDAlphabet[n.Int64()])
	}
	return b.String()
}

// GenerateSessionToken returns an opaque session token.
func GenerateSessionToken() string {
	return uuid.NewString()
}

// GenerateRateID returns a fresh rate tracker id.
func GenerateRateID() string {
	return uuid.NewString()
}

func cookieSecret() ([]byte, error) {
	secret := os.Getenv("COOKIE_SECRET")
	if secret == "" {
		return nil, errors.New("COOKIE_SECRET is not set")
	}
	return []byte(secret), nil
}

// SignRateID wraps a rate tracker id in a signed token so clients cannot
// mint arbitrary rate ids.
func SignRateID(rateID string) (string, error) {
	secret, err := cookieSecret()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"rateId": rateID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyRateID extracts the rate id from a signed rate cookie value.
func VerifyRateID(signed string) (string, error) {
	secret, err := cookieSecret()
	if err != nil {
		return "", err
	}
	token, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid rate cookie")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid rate cookie claims")
	}
	rateID, ok := claims["rateId"].(string)
	if !ok || rateID == "" {
		return "", errors.New("missing rate id claim")
	}
	return rateID, nil
}
