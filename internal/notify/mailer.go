package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/internal/report"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"github.com/jeovahfialho/faturamento-report/pkg/metrics"
	"github.com/shopspring/decimal"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	DefaultHost    = "smtp.gmail.com"
	DefaultPort    = 587
	DefaultTimeout = 30 * time.Second

	Subject = "Relatório de Faturamento"
)

type MailConfig struct {
	Host          string
	Port          int
	SenderAddress string
	SenderSecret  string
	Timeout       time.Duration
}

// deliverer hands a built message to the relay.
type deliverer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type Mailer struct {
	cfg    MailConfig
	dialer func(MailConfig) (deliverer, error)
}

func NewMailer(cfg MailConfig) *Mailer {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.SenderAddress = strings.TrimSpace(cfg.SenderAddress)

	return &Mailer{cfg: cfg, dialer: newClient}
}

// Enabled reports whether both sender credentials are configured.
func (m *Mailer) Enabled() bool {
	return m.Validate() == nil
}

func (m *Mailer) Validate() error {
	if m.cfg.SenderAddress == "" || strings.TrimSpace(m.cfg.SenderSecret) == "" {
		return domain.ErrCredentialsMissing
	}
	return nil
}

// Send mails the PDF report to recipient. Credentials and recipient are
// checked before any connection is opened; there is no retry.
func (m *Mailer) Send(ctx context.Context, recipient string, pdf []byte, total decimal.Decimal) error {
	if err := m.Validate(); err != nil {
		metrics.RecordEmail("credentials_missing")
		return err
	}

	to, err := parseRecipient(recipient)
	if err != nil {
		metrics.RecordEmail("invalid_recipient")
		return err
	}

	msg, err := m.buildMessage(to, pdf, total)
	if err != nil {
		metrics.RecordEmail("failed")
		return err
	}

	client, err := m.dialer(m.cfg)
	if err != nil {
		metrics.RecordEmail("failed")
		return &domain.DeliveryError{Detail: err.Error(), Err: err}
	}

	timer := metrics.NewTimer()
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		metrics.RecordEmail("failed")
		logger.Error("erro ao enviar e-mail",
			zap.String("recipient", to),
			zap.String("host", m.cfg.Host),
			zap.Error(err))
		return &domain.DeliveryError{Detail: err.Error(), Err: err}
	}
	timer.ObserveStage("email")

	metrics.RecordEmail("sent")
	logger.Info("e-mail enviado",
		zap.String("recipient", to),
		zap.Int("attachment_bytes", len(pdf)),
		zap.Duration("elapsed", timer.Elapsed()))

	return nil
}

func (m *Mailer) buildMessage(to string, pdf []byte, total decimal.Decimal) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.SenderAddress); err != nil {
		return nil, fmt.Errorf("erro ao definir remetente: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRecipient, to)
	}

	msg.Subject(Subject)
	msg.SetBodyString(gomail.TypeTextPlain, body(total))

	msg.AttachReadSeeker(report.DocumentFilename, bytes.NewReader(pdf),
		gomail.WithFileContentType(gomail.ContentType(report.DocumentContentType)))

	return msg, nil
}

func body(total decimal.Decimal) string {
	return "Segue em anexo o relatório de faturamento.\n\n" +
		"Faturamento Total: " + report.FormatCurrency(total) + "\n"
}

func parseRecipient(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", fmt.Errorf("%w: destinatário vazio", domain.ErrInvalidRecipient)
	}

	addr, err := mail.ParseAddress(recipient)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRecipient, recipient)
	}
	return addr.Address, nil
}

func newClient(cfg MailConfig) (deliverer, error) {
	return gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SenderAddress),
		gomail.WithPassword(cfg.SenderSecret),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(cfg.Timeout),
	)
}
