package service

import (
	"errors"
	"fmt"
	"html"
	"io"

	"menuqr/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled mail is switched off in config
var ErrEmailDisabled = errors.New("email service is disabled, set email.enabled=true")

// EmailService SMTP mail
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates the mail service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether mail can be sent
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendWelcomeEmail tells a new owner where the menu lives and attaches the QR image
func (s *EmailService) SendWelcomeEmail(toEmail, username, restaurantName, menuURL string, qrPNG []byte) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	m := s.newMessage(toEmail, "Your digital menu is ready", s.generateWelcomeEmailBody(username, restaurantName, menuURL))
	if len(qrPNG) > 0 {
		m.Attach("menu-qr.png",
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qrPNG)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"image/png"}}),
		)
	}
	return s.send(m)
}

// generateWelcomeEmailBody HTML body of the welcome mail
func (s *EmailService) generateWelcomeEmailBody(username, restaurantName, menuURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #f97316, #ea580c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .btn { display: inline-block; background: #ea580c; color: white !important; text-decoration: none; padding: 14px 40px; border-radius: 8px; font-weight: 600; margin: 20px 0; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
        .link { word-break: break-all; color: #ea580c; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
        </div>
        <div class="content">
            <p>Hello <strong>%s</strong>,</p>
            <p>Your menu is online. Share the link or print the attached QR code for your tables.</p>
            <p style="text-align: center;">
                <a href="%s" class="btn">Open my menu</a>
            </p>
            <p class="link">%s</p>
        </div>
        <div class="footer">
            <p>This message was sent automatically, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(restaurantName), html.EscapeString(username), html.EscapeString(menuURL), html.EscapeString(menuURL))
}

func (s *EmailService) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *EmailService) send(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
