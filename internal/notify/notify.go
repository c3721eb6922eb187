// Package notify sends access-request decision mails.
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"statementapi/internal/config"
	"statementapi/internal/model"
)

// Notifier tells a requester that their access request was decided.
type Notifier interface {
	AccessRequestDecided(ctx context.Context, req model.AccessRequest) error
}

// New returns an SMTP notifier, or a no-op one when SMTP_HOST is empty.
func New(cfg config.MailConfig) Notifier {
	if cfg.Host == "" {
		return Noop{}
	}
	return NewSMTP(cfg)
}

// Noop discards notifications.
type Noop struct{}

func (Noop) AccessRequestDecided(context.Context, model.AccessRequest) error { return nil }

// SMTP delivers notifications through gomail.
type SMTP struct {
	from string
	send func(msgs ...*gomail.Message) error
}

// NewSMTP builds an SMTP notifier dialing cfg.Host for every message.
func NewSMTP(cfg config.MailConfig) *SMTP {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTP{from: cfg.From, send: d.DialAndSend}
}

func (s *SMTP) AccessRequestDecided(ctx context.Context, req model.AccessRequest) error {
	if req.Email == "" {
		return fmt.Errorf("access request %s has no email", req.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", req.Email)
	m.SetHeader("Subject", subject(req.Status))
	m.SetBody("text/plain", body(req))

	if err := s.send(m); err != nil {
		return fmt.Errorf("send decision mail: %w", err)
	}
	return nil
}

func subject(status model.RequestStatus) string {
	if status == model.RequestApproved {
		return "Your admin access request was approved"
	}
	return "Your admin access request was rejected"
}

func body(req model.AccessRequest) string {
	name := req.Name
	if name == "" {
		name = req.Email
	}
	if req.Status == model.RequestApproved {
		return fmt.Sprintf("Hello %s,\n\nYour request for admin access has been approved. You can now sign in to the admin area.\n", name)
	}
	return fmt.Sprintf("Hello %s,\n\nYour request for admin access has been rejected.\n", name)
}
