package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

type mailSender interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

var verificationEmail = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
  <p>Your verification code:</p>
  <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px">{{.Code}}</p>
  <p>It expires in {{.Minutes}} minutes.</p>
</body>
</html>`))

// EmailNotificationService sends account e-mails.
type EmailNotificationService struct {
	mailer     mailSender
	ttlMinutes int
}

func NewEmailNotificationService(mailer mailSender, ttlMinutes int) *EmailNotificationService {
	return &EmailNotificationService{mailer: mailer, ttlMinutes: ttlMinutes}
}

func (s *EmailNotificationService) SendVerificationCode(ctx context.Context, to string, code int) error {
	var html bytes.Buffer
	err := verificationEmail.Execute(&html, struct {
		Code    int
		Minutes int
	}{code, s.ttlMinutes})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Your verification code: %d. It expires in %d minutes.", code, s.ttlMinutes)
	return s.mailer.Send(ctx, to, "Verification code", html.String(), text)
}
