// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// Configured reports whether an SMTP host is set.
func (s *Service) Configured() bool {
	return s.config != nil && s.config.Host != ""
}

const layoutHead = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f2937; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .card { background: white; border-radius: 8px; padding: 16px 20px; margin: 16px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.08); }
        .btn { display: inline-block; background: #b45309; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">`

const layoutFoot = `
    <div class="footer">
        ORA Interior • Design Marketplace
    </div>
</div>
</body>
</html>
`

func page(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(layoutHead + body + layoutFoot))
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	// Lead converted into a project (to the customer)
	s.templates["lead_converted"] = page("lead_converted", `
    <div class="header">
        <h2>🏡 Your project has started</h2>
    </div>
    <div class="content">
        <p>Hi {{.CustomerName}},</p>
        <p>Your designer has turned your consultation into a project.</p>
        <div class="card">
            <h3>{{.ProjectTitle}}</h3>
            <p><strong>Start:</strong> {{.StartDate}}</p>
            <p><strong>Target completion:</strong> {{.EndDate}}</p>
        </div>
        <a href="{{.ProjectURL}}" class="btn">Open Project</a>
    </div>`)

	// Lead cancelled by the designer (to the customer)
	s.templates["lead_rejected"] = page("lead_rejected", `
    <div class="header">
        <h2>Update on your consultation</h2>
    </div>
    <div class="content">
        <p>Hi {{.CustomerName}},</p>
        <p>Unfortunately your designer is unable to take on this request.</p>
        <div class="card">
            <p><strong>Reason:</strong> {{.Reason}}</p>
        </div>
        <p>You can browse other designs and request a new consultation at any time.</p>
    </div>`)

	// Quotation approved by an admin (to the designer)
	s.templates["quote_approved"] = page("quote_approved", `
    <div class="header">
        <h2>✅ Quotation approved</h2>
    </div>
    <div class="content">
        <p>Hi {{.DesignerName}},</p>
        <p>Version {{.Version}} of the quotation for <strong>{{.ProjectTitle}}</strong> was approved.</p>
        <div class="card">
            <p><strong>Total:</strong> {{.Total}}</p>
            {{if .Comments}}<p><strong>Comments:</strong> {{.Comments}}</p>{{end}}
        </div>
    </div>`)

	// Quotation rejected by an admin (to the designer)
	s.templates["quote_rejected"] = page("quote_rejected", `
    <div class="header">
        <h2>❌ Quotation needs changes</h2>
    </div>
    <div class="content">
        <p>Hi {{.DesignerName}},</p>
        <p>Version {{.Version}} of the quotation for <strong>{{.ProjectTitle}}</strong> was rejected.</p>
        <div class="card">
            <p><strong>Total:</strong> {{.Total}}</p>
            <p><strong>Comments:</strong> {{.Comments}}</p>
        </div>
        <p>Please revise the curated products and submit a new version.</p>
    </div>`)
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if !s.Configured() {
		log.Println("[Email] Not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	// Headers
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	// Build recipient list
	recipients := append([]string{}, email.To...)
	recipients = append(recipients, email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if !s.config.UseTLS {
		return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("TLS dial error: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("SMTP client error: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("auth error: %w", err)
	}
	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("mail error: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt error: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data error: %w", err)
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}
	return client.Quit()
}

// Render executes a named template.
func (s *Service) Render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	body, err := s.Render(templateName, data)
	if err != nil {
		return err
	}
	return s.Send(&Email{
		To:       to,
		Subject:  "[ORA Interior] " + subject,
		HTMLBody: body,
	})
}

// ============================================
// Async Email Queue (simple in-memory)
// ============================================

type sender interface {
	SendWithTemplate(to []string, subject, templateName string, data interface{}) error
}

// EmailQueue handles async email sending
type EmailQueue struct {
	service sender
	queue   chan *queuedEmail
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	backoff time.Duration
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

const maxEmailRetries = 3

// NewEmailQueue creates a new email queue
func NewEmailQueue(service *Service, workers int) *EmailQueue {
	return newQueue(service, workers, 2*time.Second)
}

func newQueue(service sender, workers int, backoff time.Duration) *EmailQueue {
	if workers < 1 {
		workers = 1
	}
	q := &EmailQueue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan struct{}),
		backoff: backoff,
	}

	// Start workers
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *EmailQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case email := <-q.queue:
			q.deliver(email)
		case <-q.done:
			return
		}
	}
}

func (q *EmailQueue) deliver(email *queuedEmail) {
	for {
		err := q.service.SendWithTemplate(email.to, email.subject, email.templateName, email.data)
		if err == nil {
			return
		}
		if email.retries >= maxEmailRetries {
			log.Printf("[Email] ❌ Giving up on %q to %v: %v", email.subject, email.to, err)
			return
		}
		email.retries++
		log.Printf("[Email] ⚠️ Send error (attempt %d): %v", email.retries, err)

		select {
		case <-time.After(q.backoff * time.Duration(email.retries)):
		case <-q.done:
			return
		}
	}
}

// Enqueue adds an email to the queue. It drops the email when the queue is
// full or stopped.
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.queue <- &queuedEmail{to: to, subject: subject, templateName: templateName, data: data}:
	default:
		log.Printf("[Email] ⚠️ Queue full, dropping %q", subject)
	}
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
