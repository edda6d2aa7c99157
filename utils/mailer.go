package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"agencysite/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Transport delivers composed messages. *gomail.Dialer satisfies it.
type Transport interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailerConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	Receiver  string // admin inbox for every notification except forwards
	SiteURL   string
}

// Mailer renders the notification templates and sends them over one shared
// SMTP dialer. There is no queue and no retry: a send either returns nil or
// the transport error.
type Mailer struct {
	cfg          MailerConfig
	once         sync.Once
	transport    Transport
	newTransport func() Transport
	templates    map[string]*template.Template
	log          *logrus.Entry
}

// NewMailer builds the dialer lazily on the first send and reuses it.
func NewMailer(cfg MailerConfig) *Mailer {
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.Username
	}
	m := &Mailer{
		cfg:       cfg,
		templates: parseMailTemplates(),
		log:       NewLogger("MAILER"),
	}
	m.newTransport = func() Transport {
		return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// NewMailerWithTransport is NewMailer with a caller-supplied transport.
func NewMailerWithTransport(cfg MailerConfig, transport Transport) *Mailer {
	m := NewMailer(cfg)
	m.newTransport = func() Transport { return transport }
	return m
}

func (m *Mailer) getTransport() Transport {
	m.once.Do(func() {
		m.transport = m.newTransport()
	})
	return m.transport
}

type ContactInquiryMail struct {
	Name       string
	Email      string
	Message    string
	ReceivedAt time.Time
}

type ForwardedInquiryMail struct {
	To         string
	Name       string
	Email      string
	Phone      string
	Company    string
	Message    string
	Status     string
	ReceivedAt time.Time
	Notes      []models.Note
}

type LeadInquiryMail struct {
	Channel     string // ATL, BTL or TTL
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

type BlogContactMail struct {
	Name              string
	Email             string
	Company           string
	Phone             string
	ServiceOfInterest string
	Message           string
}

type CallbackRequestMail struct {
	Name    string
	Phone   string
	Company string
}

type JobApplicationMail struct {
	JobTitle    string
	Name        string
	Email       string
	Phone       string
	CoverLetter string
	ResumeURL   string
}

func (m *Mailer) SendContactInquiry(data ContactInquiryMail) error {
	return m.send(outgoing{
		template: TemplateContactInquiry,
		subject:  "New contact inquiry from " + data.Name,
		to:       m.cfg.Receiver,
		replyTo:  data.Email,
		data:     data,
	})
}

func (m *Mailer) SendForwardedInquiry(data ForwardedInquiryMail) error {
	return m.send(outgoing{
		template: TemplateForwardedInquiry,
		subject:  "Forwarded inquiry from " + data.Name,
		to:       data.To,
		replyTo:  data.Email,
		data:     data,
	})
}

func (m *Mailer) SendLeadInquiry(data LeadInquiryMail) error {
	return m.send(outgoing{
		template: TemplateLeadInquiry,
		subject:  fmt.Sprintf("New %s inquiry from %s %s", strings.ToUpper(data.Channel), data.FirstName, data.LastName),
		to:       m.cfg.Receiver,
		replyTo:  data.Email,
		data:     data,
	})
}

func (m *Mailer) SendBlogContact(data BlogContactMail) error {
	return m.send(outgoing{
		template: TemplateBlogContact,
		subject:  "New blog contact from " + data.Name,
		to:       m.cfg.Receiver,
		replyTo:  data.Email,
		data:     data,
	})
}

func (m *Mailer) SendCallbackRequest(data CallbackRequestMail) error {
	return m.send(outgoing{
		template: TemplateCallbackRequest,
		subject:  "Callback requested by " + data.Name,
		to:       m.cfg.Receiver,
		data:     data,
	})
}

func (m *Mailer) SendJobApplication(data JobApplicationMail) error {
	return m.send(outgoing{
		template: TemplateJobApplication,
		subject:  fmt.Sprintf("Application for %s: %s", data.JobTitle, data.Name),
		to:       m.cfg.Receiver,
		replyTo:  data.Email,
		data:     data,
	})
}

type outgoing struct {
	template string
	subject  string
	to       string
	replyTo  string
	data     interface{}
}

// Render executes a template by name without sending it.
func (m *Mailer) Render(name, subject string, data interface{}) (string, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", name)
	}

	var body bytes.Buffer
	err := tmpl.Execute(&body, mailView{
		Subject: subject,
		Year:    time.Now().Year(),
		SiteURL: m.cfg.SiteURL,
		Data:    data,
	})
	if err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) send(out outgoing) error {
	if out.to == "" {
		MailSent.WithLabelValues(out.template, "skipped").Inc()
		return fmt.Errorf("no recipient configured for %s mail", out.template)
	}

	body, err := m.Render(out.template, out.subject, out.data)
	if err != nil {
		MailSent.WithLabelValues(out.template, "error").Inc()
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", out.to)
	if out.replyTo != "" {
		msg.SetHeader("Reply-To", out.replyTo)
	}
	msg.SetHeader("Subject", out.subject)
	msg.SetBody("text/html", body)

	start := time.Now()
	err = m.getTransport().DialAndSend(msg)
	MailDuration.WithLabelValues(out.template).Observe(time.Since(start).Seconds())
	if err != nil {
		MailSent.WithLabelValues(out.template, "error").Inc()
		return fmt.Errorf("error sending email: %w", err)
	}

	MailSent.WithLabelValues(out.template, "sent").Inc()
	m.log.WithFields(logrus.Fields{
		"template": out.template,
		"to":       out.to,
	}).Debug("Email sent")
	return nil
}
