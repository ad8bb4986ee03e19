package worker_service

import (
	"fmt"

	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	"gopkg.in/gomail.v2"
)

// Mailer is satisfied by *gomail.Dialer.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewSMTPMailer returns nil when no SMTP host is configured.
func NewSMTPMailer() Mailer {
	host := config.Conf.MAIL.SMTPHost
	if host == "" {
		return nil
	}
	return gomail.NewDialer(host, config.Conf.MAIL.SMTPPort, config.Conf.MAIL.Username, config.Conf.MAIL.Password)
}

func SendRoomCreatedMail(mailer Mailer, from string, payload queue.RoomCreatedPayload) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", payload.OwnerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your listing %q is live", payload.HostelName))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\nYour room %q at %s in %s was published as listing #%d on %s.\n",
		payload.Title,
		payload.HostelName,
		payload.Location,
		payload.RoomID,
		payload.CreatedAt.Format("2006-01-02 15:04"),
	))

	if err := mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send room created email: %w", err)
	}

	return nil
}
