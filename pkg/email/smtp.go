package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/smtp"
	"text/template"
	"time"

	"github.com/taskflow/taskflow/internal/models"
)

// SMTPService implements Service using SMTP.
type SMTPService struct {
	config    *Config
	templates *Templates
	auth      smtp.Auth
}

// NewSMTPService creates a new SMTP email service.
func NewSMTPService(config *Config) *SMTPService {
	auth := smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPHost)

	return &SMTPService{
		config:    config,
		templates: NewTemplates(),
		auth:      auth,
	}
}

// SendTaskCreatedEmail notifies the assignee about a freshly created task.
func (s *SMTPService) SendTaskCreatedEmail(ctx context.Context, user *models.User, task *models.Task) error {
	data := &Data{
		User:    user,
		Task:    task,
		Status:  StatusText(task.Status),
		TaskURL: fmt.Sprintf("%s/tasks/%d", s.config.BaseURL, task.ID),
		AppName: s.config.AppName,
	}

	return s.sendEmail(ctx, user.Email, s.templates.TaskCreated, data)
}

// sendEmail renders the template and sends the message over SMTP.
func (s *SMTPService) sendEmail(ctx context.Context, to string, tmpl Template, data *Data) error {
	subject, err := s.render(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}

	htmlBody, err := s.render(tmpl.HTMLBody, data)
	if err != nil {
		return fmt.Errorf("render HTML body: %w", err)
	}

	textBody, err := s.render(tmpl.TextBody, data)
	if err != nil {
		return fmt.Errorf("render text body: %w", err)
	}

	boundary := s.generateBoundary()
	message := s.buildMIMEMessage(
		s.config.FromEmail,
		s.config.FromName,
		to,
		subject,
		textBody,
		htmlBody,
		boundary,
	)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	if err := smtp.SendMail(addr, s.auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (s *SMTPService) render(templateStr string, data *Data) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// generateBoundary generates a random boundary for MIME messages.
func (s *SMTPService) generateBoundary() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// buildMIMEMessage builds a MIME email message with both text and HTML parts.
func (s *SMTPService) buildMIMEMessage(from, fromName, to, subject, textBody, htmlBody, boundary string) []byte {
	message := fmt.Sprintf(`From: %s <%s>
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="%s"

--%s
Content-Type: text/plain; charset=UTF-8
Content-Transfer-Encoding: 7bit

%s

--%s
Content-Type: text/html; charset=UTF-8
Content-Transfer-Encoding: 7bit

%s

--%s--
`, fromName, from, to, subject, boundary, boundary, textBody, boundary, htmlBody, boundary)

	return []byte(message)
}

// MockService implements Service for development and testing.
type MockService struct {
	SentEmails []SentEmail
}

// SentEmail represents an email recorded by MockService.
type SentEmail struct {
	To     string
	TaskID uint
	SentAt time.Time
}

// NewMockService creates a new mock email service.
func NewMockService() *MockService {
	return &MockService{
		SentEmails: make([]SentEmail, 0),
	}
}

// SendTaskCreatedEmail mock implementation.
func (m *MockService) SendTaskCreatedEmail(ctx context.Context, user *models.User, task *models.Task) error {
	m.SentEmails = append(m.SentEmails, SentEmail{
		To:     user.Email,
		TaskID: task.ID,
		SentAt: time.Now(),
	})
	return nil
}

// GetLastSentEmail returns the last sent email (for testing).
func (m *MockService) GetLastSentEmail() *SentEmail {
	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// Clear clears all sent emails (for testing).
func (m *MockService) Clear() {
	m.SentEmails = make([]SentEmail, 0)
}
