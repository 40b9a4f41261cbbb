// Package email sends transactional mail over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/niketshah083/lead-management-backend-sub002/platform/config"
	"github.com/niketshah083/lead-management-backend-sub002/platform/logger"

	"github.com/wneessen/go-mail"
)

// Sender delivers mail through the configured SMTP relay.
type Sender struct {
	client   *mail.Client
	from     string
	fromName string
	log      *logger.Logger
}

// NewSender builds the SMTP client from config.
func NewSender(cfg config.EmailConfig, log *logger.Logger) (*Sender, error) {
	client, err := mail.NewClient(cfg.GetSMTPHost(),
		mail.WithPort(cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.GetSMTPUsername()),
		mail.WithPassword(cfg.GetSMTPPassword()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Sender{
		client:   client,
		from:     cfg.GetEmailFromAddress(),
		fromName: cfg.GetEmailFromName(),
		log:      log,
	}, nil
}

// SendBreachAlert mails an SLA breach alert to the lead's owner.
func (s *Sender) SendBreachAlert(ctx context.Context, to, toName, leadName, dimension string, due time.Time) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.AddToFormat(toName, to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}

	msg.Subject(fmt.Sprintf("SLA breached: %s", leadName))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nThe %s deadline for lead %q was missed. It was due at %s.\n\nPlease follow up as soon as possible.\n",
		toName, humanDimension(dimension), leadName, due.Format(time.RFC1123)))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.log.Error("breach alert delivery failed", "to", to, "error", err)
		return err
	}

	s.log.Info("breach alert sent", "to", to, "lead", leadName, "dimension", dimension)
	return nil
}

func humanDimension(dimension string) string {
	switch dimension {
	case "FIRST_RESPONSE":
		return "first response"
	case "RESOLUTION":
		return "resolution"
	default:
		return dimension
	}
}
