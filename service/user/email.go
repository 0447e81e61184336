package user

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// sendWelcomeEmail greets a freshly registered user. Mail is best-effort:
// when SMTP is not configured the message is skipped.
func sendWelcomeEmail(email, username string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		return nil
	}
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Snapgram")
	m.SetBody("text/plain", fmt.Sprintf("Hi %s, your account is ready. Start following people to build your feed.", username))

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}
