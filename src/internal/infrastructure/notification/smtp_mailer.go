// Package notification 通知相關的基礎設施：寄信、派單、冪等標記
package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/jackyeh168/order_settlement/src/internal/application/settlement"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/config"
)

// SMTPMailer 以 SMTP 寄送純文字郵件
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger *zap.Logger
}

// NewSMTPMailer 建立 SMTP mailer
//
// 有帳號時使用 SMTP AUTH LOGIN 並要求 TLS；沒有帳號時以機會性 TLS 連線（本機 relay）。
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{client: client, from: cfg.From, logger: logger}, nil
}

var _ settlement.Mailer = (*SMTPMailer)(nil)

// Send 寄送郵件
func (m *SMTPMailer) Send(ctx context.Context, msg settlement.Message) error {
	email, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}

	m.logger.Debug("sending email", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg settlement.Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)
	return email, nil
}

// LogMailer 只記錄郵件內容，不寄送（未設定 SMTP 時使用）
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer 建立只記錄的 mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

var _ settlement.Mailer = (*LogMailer)(nil)

// Send 記錄郵件
func (m *LogMailer) Send(ctx context.Context, msg settlement.Message) error {
	m.logger.Info("email (not sent, SMTP disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
