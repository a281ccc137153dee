package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
)

// Config holds SMTP configuration
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Mailer handles sending emails
type Mailer struct {
	config Config
}

// New creates a new Mailer instance
func New(cfg Config) *Mailer {
	return &Mailer{config: cfg}
}

// SendClaimInvite emails a recipient their private view link and the claim
// code that upgrades them to a connected account
func (m *Mailer) SendClaimInvite(toEmail, recipientName, senderName, viewURL, claimCode string, memeCount int) error {
	subject := fmt.Sprintf("%s sent you a meme dump", senderName)

	body, err := m.renderClaimInviteTemplate(recipientName, senderName, viewURL, claimCode, memeCount)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return m.send(toEmail, subject, body)
}

// send delivers an email via SMTP
func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}

	var msg bytes.Buffer
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg.Bytes())
	if err != nil {
		log.Printf("❌ Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

// renderClaimInviteTemplate returns the HTML body for the claim invite email
func (m *Mailer) renderClaimInviteTemplate(recipientName, senderName, viewURL, claimCode string, memeCount int) (string, error) {
	tmpl := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0f0f23;font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;">
    <div style="max-width:500px;margin:40px auto;background:linear-gradient(135deg,#1a1a2e 0%,#16213e 100%);border-radius:16px;overflow:hidden;border:1px solid rgba(99,102,241,0.2);">
        <!-- Header -->
        <div style="background:linear-gradient(135deg,#6366f1 0%,#8b5cf6 100%);padding:32px;text-align:center;">
            <h1 style="color:#fff;margin:0;font-size:28px;font-weight:700;">😂 MemeDump</h1>
            <p style="color:rgba(255,255,255,0.85);margin:8px 0 0;font-size:14px;">You've got memes</p>
        </div>

        <!-- Body -->
        <div style="padding:32px;">
            <p style="color:#e2e8f0;font-size:16px;line-height:1.6;margin:0 0 24px;">
                Hi <strong style="color:#a78bfa;">{{.RecipientName}}</strong>,
            </p>
            <p style="color:#94a3b8;font-size:14px;line-height:1.6;margin:0 0 24px;">
                <strong style="color:#a78bfa;">{{.SenderName}}</strong> just dumped {{.MemeCount}} meme(s) on you:
            </p>

            <div style="text-align:center;margin:0 0 24px;">
                <a href="{{.ViewURL}}" style="display:inline-block;background:linear-gradient(135deg,#6366f1 0%,#8b5cf6 100%);color:#fff;text-decoration:none;padding:14px 32px;border-radius:10px;font-size:15px;font-weight:600;">View the dump</a>
            </div>

            <p style="color:#94a3b8;font-size:14px;line-height:1.6;margin:0 0 16px;">
                Want future dumps delivered straight to your phone? Enter this code in the app to connect:
            </p>

            <!-- Claim code -->
            <div style="background:rgba(99,102,241,0.1);border:2px dashed rgba(99,102,241,0.4);border-radius:12px;padding:24px;text-align:center;margin:0 0 24px;">
                <span style="font-size:36px;font-weight:800;letter-spacing:8px;color:#818cf8;font-family:'Courier New',monospace;">{{.ClaimCode}}</span>
            </div>

            <p style="color:#64748b;font-size:13px;line-height:1.5;margin:0;">
                If you don't know {{.SenderName}}, you can safely ignore this email.
            </p>
        </div>

        <!-- Footer -->
        <div style="padding:16px 32px;border-top:1px solid rgba(99,102,241,0.1);text-align:center;">
            <p style="color:#475569;font-size:12px;margin:0;">© 2026 MemeDump. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`

	t, err := template.New("claim_invite").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, map[string]interface{}{
		"RecipientName": recipientName,
		"SenderName":    senderName,
		"ViewURL":       viewURL,
		"ClaimCode":     claimCode,
		"MemeCount":     memeCount,
	})
	return buf.String(), err
}
