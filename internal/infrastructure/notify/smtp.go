package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/insightdesk/access-directory/internal/core/domain"
)

// SMTPConfig captures the settings for the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPNotifier sends the access-granted mail through a plain SMTP relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

// Notify sends one access-granted message. The login name in the body is the
// derived record id the client signs in with; the password is intentionally
// absent (it is blank until the administrator resets login details).
func (n *SMTPNotifier) Notify(_ context.Context, email, loginName string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	msg := buildMessage(n.cfg.From, email, loginName)
	if err := n.send(addr, auth, n.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("%w: smtp send to %s: %v", domain.ErrNotify, email, err)
	}
	return nil
}

func buildMessage(from, to, loginName string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your dashboard access is ready\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello,\r\n\r\nDashboard access has been granted for this address.\r\n")
	fmt.Fprintf(&b, "Your login name is: %s\r\n\r\n", loginName)
	b.WriteString("An administrator will share your login details separately.\r\n")
	return []byte(b.String())
}
