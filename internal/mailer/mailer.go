// Package mailer is the boundary to transactional email delivery. The core
// only promises to invoke it with a recipient and a code after its own
// transaction commits; delivery failures never roll anything back.
package mailer

import (
	"log"
)

type Mailer interface {
	SendVerificationCode(email, code string)
	SendAccountDeleted(email string)
}

// Default is swapped for a real transport in deployment wiring.
var Default Mailer = logMailer{}

type logMailer struct{}

func (logMailer) SendVerificationCode(email, code string) {
	log.Printf("mailer: verification code for %s: %s", email, code)
}

func (logMailer) SendAccountDeleted(email string) {
	log.Printf("mailer: account deletion confirmation for %s", email)
}
