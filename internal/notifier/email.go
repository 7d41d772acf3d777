package notifier

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/orefwatch/orefwatch/internal/config"
)

type EmailNotifier struct {
	name string
	cfg  config.EmailChannelConfig
}

func NewEmailNotifier(name string, cfg config.EmailChannelConfig) (*EmailNotifier, error) {
	return &EmailNotifier{name: name, cfg: cfg}, nil
}

func (en *EmailNotifier) Name() string {
	return en.name
}

func (en *EmailNotifier) Send(data NotificationData, templates Templates) error {
	body, err := renderTemplate("email_body", templates.Alert, data)
	if err != nil {
		return fmt.Errorf("failed to render message for channel '%s': %w", en.name, err)
	}
	subject := collapseLine(data.Title)
	if subject == "" {
		subject = "התרעת פיקוד העורף"
	}

	headers := make(map[string]string)
	headers["From"] = en.cfg.SMTPFrom
	headers["To"] = strings.Join(en.cfg.SMTPTo, ", ")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/plain; charset=\"utf-8\""

	var msgBuilder strings.Builder
	for k, v := range headers {
		msgBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msgBuilder.WriteString("\r\n")
	msgBuilder.WriteString(body)

	addr := fmt.Sprintf("%s:%d", en.cfg.SMTPHost, en.cfg.SMTPPort)

	var auth smtp.Auth
	if en.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", en.cfg.SMTPUsername, en.cfg.SMTPPassword, en.cfg.SMTPHost)
	}

	fromAddr := extractEmail(en.cfg.SMTPFrom)

	// Port 465 speaks TLS from the first byte, so smtp.SendMail (which
	// expects a plaintext greeting) cannot be used there.
	if en.cfg.SMTPPort == 465 {
		return en.sendImplicitTLS(addr, auth, fromAddr, []byte(msgBuilder.String()))
	}

	if en.cfg.SMTPUseTLS {
		return en.sendStartTLS(addr, auth, fromAddr, []byte(msgBuilder.String()))
	}

	if err := smtp.SendMail(addr, auth, fromAddr, en.cfg.SMTPTo, []byte(msgBuilder.String())); err != nil {
		return fmt.Errorf("failed to send email via channel '%s': %w", en.name, err)
	}
	return nil
}

// sendStartTLS requires the STARTTLS upgrade instead of leaving it to the
// server's advertisement; refusing is an error when smtp_use_tls is set.
func (en *EmailNotifier) sendStartTLS(addr string, auth smtp.Auth, from string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server for channel '%s': %w", en.name, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("SMTP server does not support STARTTLS, but smtp_use_tls is set for channel '%s'", en.name)
	}
	if err := client.StartTLS(&tls.Config{ServerName: en.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("failed to start TLS for channel '%s': %w", en.name, err)
	}
	return en.transact(client, auth, from, msg)
}

func (en *EmailNotifier) sendImplicitTLS(addr string, auth smtp.Auth, from string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: en.cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("failed to open TLS connection for channel '%s': %w", en.name, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, en.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client for channel '%s': %w", en.name, err)
	}
	defer client.Close()

	return en.transact(client, auth, from, msg)
}

func (en *EmailNotifier) transact(client *smtp.Client, auth smtp.Auth, from string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed for channel '%s': %w", en.name, err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL failed for channel '%s': %w", en.name, err)
	}
	for _, rcpt := range en.cfg.SMTPTo {
		if err := client.Rcpt(extractEmail(rcpt)); err != nil {
			return fmt.Errorf("SMTP RCPT failed for channel '%s': %w", en.name, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed for channel '%s': %w", en.name, err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email body for channel '%s': %w", en.name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish email body for channel '%s': %w", en.name, err)
	}
	return client.Quit()
}

// extractEmail pulls the bare address out of a "Name <addr>" form; SMTP
// envelope commands want the address only.
func extractEmail(s string) string {
	if start := strings.LastIndex(s, "<"); start != -1 {
		if end := strings.LastIndex(s, ">"); end > start {
			return s[start+1 : end]
		}
	}
	return strings.TrimSpace(s)
}
