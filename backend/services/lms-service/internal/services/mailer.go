package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/config"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/constants"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/metrics"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	templatePurchaseReceipt   = "purchase_receipt"
	templateCertificateIssued = "certificate_issued"
)

// Mailer sends transactional emails. Callers treat failures as non-fatal.
type Mailer interface {
	SendPurchaseReceipt(ctx context.Context, to *models.User, p *models.Purchase) error
	SendCertificateIssued(ctx context.Context, to *models.User, c *models.Certificate) error
}

// NewMailer returns a SendGrid-backed mailer, or a no-op one when no API
// key is configured.
func NewMailer(cfg *config.Config, m *metrics.Metrics) Mailer {
	if cfg.SendgridAPIKey == "" {
		utils.Logger.Warn("SENDGRID_API_KEY not set; transactional email disabled")
		return NoopMailer{}
	}
	return &SendgridMailer{
		client:  sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:    mail.NewEmail(constants.SupportTeamName, cfg.LDFlag_SendgridFromEmail),
		sandbox: cfg.LDFlag_SendgridSandboxMode,
		appURL:  cfg.AppUrl,
		metrics: m,
	}
}

type SendgridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	sandbox bool
	appURL  string
	metrics *metrics.Metrics
}

func (m *SendgridMailer) SendPurchaseReceipt(ctx context.Context, to *models.User, p *models.Purchase) error {
	amount := fmt.Sprintf("$%.2f", p.Amount())
	subject := fmt.Sprintf(constants.EmailSubjectPurchaseReceipt, amount)
	plain := fmt.Sprintf("Thanks for your purchase, %s! You were charged %s and are now enrolled.", to.Name, amount)
	body := fmt.Sprintf(transactionalEmailHTML,
		"Thanks for your purchase",
		html.EscapeString(fmt.Sprintf("Hi %s, your payment went through and you are now enrolled.", to.Name)),
		amount,
		time.Now().Year(),
	)
	return m.send(ctx, templatePurchaseReceipt, to, subject, plain, body)
}

func (m *SendgridMailer) SendCertificateIssued(ctx context.Context, to *models.User, c *models.Certificate) error {
	subject := fmt.Sprintf(constants.EmailSubjectCertificateIssued, c.CourseName)
	verifyURL := m.appURL + "/certificates/verify/" + c.VerificationCode
	plain := fmt.Sprintf("Congratulations %s! Your certificate for %s is ready. Verify it at %s", to.Name, c.CourseName, verifyURL)
	body := fmt.Sprintf(transactionalEmailHTML,
		"Congratulations!",
		html.EscapeString(fmt.Sprintf("Hi %s, you earned a certificate for %s. Anyone can verify it with this code:", to.Name, c.CourseName)),
		c.VerificationCode,
		time.Now().Year(),
	)
	return m.send(ctx, templateCertificateIssued, to, subject, plain, body)
}

func (m *SendgridMailer) send(ctx context.Context, template string, to *models.User, subject, plain, htmlBody string) error {
	if to.Email == "" {
		m.metrics.EmailsSent.WithLabelValues(template, "skipped").Inc()
		return nil
	}

	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail(to.Name, to.Email), plain, htmlBody)
	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := m.client.SendWithContext(ctx, msg)
	if err == nil && resp.StatusCode >= 300 {
		err = fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	if err != nil {
		m.metrics.EmailsSent.WithLabelValues(template, "failed").Inc()
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	m.metrics.EmailsSent.WithLabelValues(template, "sent").Inc()
	return nil
}

// NoopMailer is used when email is disabled.
type NoopMailer struct{}

func (NoopMailer) SendPurchaseReceipt(_ context.Context, to *models.User, p *models.Purchase) error {
	utils.Logger.Debugf("Email disabled; skipping receipt for purchase %s", p.ID)
	return nil
}

func (NoopMailer) SendCertificateIssued(_ context.Context, to *models.User, c *models.Certificate) error {
	utils.Logger.Debugf("Email disabled; skipping certificate email for %s", c.ID)
	return nil
}
