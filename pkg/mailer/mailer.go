package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends HTML email over SMTP.
type Mailer struct {
	host        string
	port        int
	user        string
	pass        string
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

// New creates a Mailer. An empty host disables sending; Send then returns an
// error so callers can record the failure.
func New(host string, port int, user, pass, fromAddress, fromName string, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger,
	}
}

// Send delivers one HTML message to a single recipient.
func (m *Mailer) Send(to, subject, bodyHTML string) error {
	if m.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.fromName, m.fromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(bodyHTML)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.fromAddress, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
