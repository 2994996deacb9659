package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPServerConfig holds the settings for the outgoing mail server.
type SMTPServerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails the registrant about their own registration.
type EmailNotifier struct {
	config   SMTPServerConfig
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewEmailNotifier(config SMTPServerConfig) *EmailNotifier {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &EmailNotifier{config: config, auth: auth, sendMail: smtp.SendMail}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if n.UserEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	subject, body := emailContent(n)
	message := []byte(
		"To: " + n.UserEmail + "\r\n" +
			"From: " + e.config.Sender + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body + "\r\n")

	if err := e.sendMail(addr, e.auth, e.config.Sender, []string{n.UserEmail}, message); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	return nil
}

func emailContent(n Notification) (subject, body string) {
	switch {
	case n.Kind == RegistrationCreated:
		subject = fmt.Sprintf("Registration received: %s", n.EventTitle)
		body = fmt.Sprintf("Hi %s,\n\nwe received your registration for %s (%s), starting %s.\nYour registration number is %d.\n\nSee you at the start!",
			n.who(), n.EventTitle, n.RaceLabel, n.EventStartAt.Format("2006-01-02 15:04"), n.RegistrationID)
	case n.Active:
		subject = fmt.Sprintf("Registration restored: %s", n.EventTitle)
		body = fmt.Sprintf("Hi %s,\n\nyour registration #%d for %s (%s) is active again.",
			n.who(), n.RegistrationID, n.EventTitle, n.RaceLabel)
	default:
		subject = fmt.Sprintf("Registration cancelled: %s", n.EventTitle)
		body = fmt.Sprintf("Hi %s,\n\nyour registration #%d for %s (%s) was cancelled. You can restore it until the event starts.",
			n.who(), n.RegistrationID, n.EventTitle, n.RaceLabel)
	}
	return subject, body
}
