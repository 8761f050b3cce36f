package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"vegorder/internal/models"
)

var ErrNotConfigured = errors.New("email notifications are not configured")

type MailerConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	Recipients []string
	Timeout    time.Duration
}

// Mailer sends the order confirmation to the shop's recipients over SMTP.
type Mailer struct {
	cfg MailerConfig
}

func NewMailer(cfg MailerConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.FromEmail != "" && len(m.cfg.Recipients) > 0
}

func (m *Mailer) SendOrderNotification(ctx context.Context, order models.Order, items []models.OrderItem) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	msg, err := m.buildMessage(order, items)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail.NewClient: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send order #%d email: %w", order.ID, err)
	}
	return nil
}

func (m *Mailer) buildMessage(order models.Order, items []models.OrderItem) (*mail.Msg, error) {
	body, err := renderOrderEmail(order, items)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if m.cfg.FromName != "" {
		err = msg.FromFormat(m.cfg.FromName, m.cfg.FromEmail)
	} else {
		err = msg.From(m.cfg.FromEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(orderSubject(order))
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}
