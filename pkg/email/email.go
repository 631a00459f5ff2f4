package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Attachment is a file carried by an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InvoiceMail describes the invoice share email.
type InvoiceMail struct {
	To         string
	ClinicName string
	Patient    string
	Total      string
	Currency   string
	Attachment Attachment
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Configured reports whether an SMTP host is set.
func (s *EmailService) Configured() bool {
	return s.config.SMTPHost != ""
}

// SendInvoice mails the invoice PDF to the given address.
func (s *EmailService) SendInvoice(mail InvoiceMail) error {
	htmlContent, err := s.renderInvoiceEmail(mail)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your invoice from %s", mail.ClinicName)
	message, err := s.buildMultipartEmail(mail.To, subject, htmlContent, mail.Attachment)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	return s.sendEmail(mail.To, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildMultipartEmail builds an HTML message with one base64 attachment
func (s *EmailService) buildMultipartEmail(to, subject, htmlBody string, att Attachment) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if len(att.Data) > 0 {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		filePart, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf(`attachment; filename="%s"`, att.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if _, err := filePart.Write([]byte(wrapBase64(att.Data))); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/mixed; boundary=%q\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
		mw.Boundary(),
	)

	return append([]byte(headers), body.Bytes()...), nil
}

// wrapBase64 encodes data in 76 character lines
func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.String()
}

// renderInvoiceEmail renders the invoice email template
func (s *EmailService) renderInvoiceEmail(mail InvoiceMail) (string, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, mail); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// invoiceTemplate is the HTML body of the invoice share email
const invoiceTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Invoice</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="background-color: #2b6cb0; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 26px;">{{.ClinicName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px;">
                <p style="color: #4a5568; font-size: 16px;">Hello{{if .Patient}} {{.Patient}}{{end}},</p>
                <p style="color: #4a5568; font-size: 16px;">
                    Please find your invoice attached. Total due: <strong>{{.Total}} {{.Currency}}</strong>.
                </p>
                <p style="color: #718096; font-size: 14px;">Thank you for visiting us.</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
