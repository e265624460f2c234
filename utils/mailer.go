package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"teamnest/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewMailer(cfg config.Config) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Embedded email templates
var emailTemplates = map[string]string{
	"signin_link": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Sign in to {{.AppName}}</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>Click the button below to sign in. No password needed.</p>

        <p style="text-align: center;">
            <a href="{{.Link}}" class="button">Sign In</a>
        </p>

        <p>This link will expire in 15 minutes and can only be used once.</p>

        <p>Or copy and paste this link into your browser:<br>
        <small>{{.Link}}</small></p>
    </div>

    <div class="footer">
        <p>If you didn't request this link, you can safely ignore this email.</p>
        <p>© {{.Year}} {{.AppName}}. All rights reserved.</p>
    </div>
</body>
</html>`,

	"team_invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #27ae60; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You've been invited to a team</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.InviterName}}</strong> has invited you to join their team on {{.AppName}}.</p>

        <p style="text-align: center;">
            <a href="{{.Link}}" class="button">View Invitation</a>
        </p>

        <p>This invitation will expire in 7 days.</p>

        <p>Or copy and paste this link into your browser:<br>
        <small>{{.Link}}</small></p>
    </div>

    <div class="footer">
        <p>If you weren't expecting this invitation, you can safely ignore this email.</p>
        <p>© {{.Year}} {{.AppName}}. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// SendSignInEmail delivers a passwordless sign-in link.
func (m *Mailer) SendSignInEmail(to, link string) error {
	return m.send(to, "Your sign-in link", "signin_link", map[string]interface{}{
		"Link": link,
	})
}

// SendInviteEmail delivers a team invitation carrying an accept link.
func (m *Mailer) SendInviteEmail(to, inviterName, link string) error {
	return m.send(to, fmt.Sprintf("%s invited you to their team", inviterName), "team_invite", map[string]interface{}{
		"InviterName": inviterName,
		"Link":        link,
	})
}

func (m *Mailer) send(to, subject, templateName string, data map[string]interface{}) error {
	raw, ok := emailTemplates[templateName]
	if !ok {
		return fmt.Errorf("unknown email template: %s", templateName)
	}

	tmpl, err := template.New(templateName).Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	data["Subject"] = subject
	data["AppName"] = m.fromName
	data["Year"] = time.Now().Year()

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
