package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendInvoice(t *testing.T) {
	svc := NewEmailService(EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromName:  "Sunrise Dental",
		FromEmail: "billing@example.com",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := svc.SendInvoice(InvoiceMail{
		To:         "asha@example.com",
		ClinicName: "Sunrise Dental",
		Patient:    "Asha Rao",
		Total:      "270.00",
		Currency:   "INR",
		Attachment: Attachment{Filename: "invoice.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 test")},
	})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"asha@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: Sunrise Dental <billing@example.com>\r\n"))
	assert.Contains(t, gotMsg, "multipart/mixed")
	assert.Contains(t, gotMsg, `filename="invoice.pdf"`)
	assert.Contains(t, gotMsg, "Asha Rao")
	assert.Contains(t, gotMsg, "270.00 INR")
}

func TestWrapBase64(t *testing.T) {
	out := wrapBase64(make([]byte, 120))

	for _, line := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
