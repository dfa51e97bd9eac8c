package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP. Only password resets use it
// today.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer configures a Gmail-compatible SMTP dialer. user is both the
// authenticated account and the From address.
func NewMailer(host string, port int, user, password string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// SendPasswordReset emails the reset link for an admin account.
func (m *Mailer) SendPasswordReset(to, resetLink string) error {
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Password Reset Request</h2>
	<p>You requested to reset your password for the admin account.</p>
	<p><a href="%s">Reset Password</a></p>
	<p>If you didn't request this password reset, please ignore this email. This link will expire in 24 hours.</p>
</div>`, resetLink)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Request - Admin")
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}
