// Package mail sends transactional email over SMTP.
//
// Services depend on the Mailer interface; the SMTP implementation wraps a
// small fluent message builder:
//
//	mail.To("rosa@example.com").
//	    Subject("Otp for Email Verification").
//	    Text("Your Otp is : 4821QK").
//	    UseConfig(cfg).
//	    Send()
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/pkg/logger"
)

// Mailer delivers one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ------------------- Config -------------------

// SMTP holds relay credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// ConfigFromEnv reads the MAIL_* settings.
func ConfigFromEnv() SMTP {
	return SMTP{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
		FromName: config.MailFromName(),
	}
}

// ------------------- SMTP mailer -------------------

// SMTPMailer implements Mailer over a relay.
type SMTPMailer struct{ cfg SMTP }

func NewSMTP(cfg SMTP) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (s *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return To(to).Subject(subject).Text(body).UseConfig(s.cfg).Send()
}

// ------------------- Log mailer -------------------

// LogMailer writes messages to the log instead of sending them. Used when
// running locally without relay credentials.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.WithCtx(ctx).Info("mail (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}

// ------------------- Message -------------------

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
	smtpCfg SMTP
}

// To sets the recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses, smtpCfg: ConfigFromEnv()}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// UseConfig overrides the relay settings for this message.
func (m *Message) UseConfig(cfg SMTP) *Message {
	m.smtpCfg = cfg
	return m
}

// ------------------- Sending -------------------

// Send delivers the message. Port 465 uses implicit TLS; anything else goes
// through smtp.SendMail, which upgrades with STARTTLS when offered.
func (m *Message) Send() error {
	cfg := m.smtpCfg
	if cfg.Username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	raw := m.buildRaw()
	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port == "465" {
		return sendTLS(addr, auth, cfg.From, m.to, raw, cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, cfg.From, m.to, raw); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (m *Message) buildRaw() []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	from := m.smtpCfg.From
	if m.smtpCfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.smtpCfg.FromName, m.smtpCfg.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}
