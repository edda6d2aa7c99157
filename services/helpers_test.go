package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"agencysite/models"
	"agencysite/notifications"
	"agencysite/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Inquiry{}, &models.Note{}, &models.Admin{}, &models.Job{}, &models.Blog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// mockNotifier records calls; any nil func succeeds.
type mockNotifier struct {
	mu sync.Mutex

	ContactFn   func(utils.ContactInquiryMail) error
	ForwardFn   func(utils.ForwardedInquiryMail) error
	LeadFn      func(utils.LeadInquiryMail) error
	BlogFn      func(utils.BlogContactMail) error
	CallbackFn  func(utils.CallbackRequestMail) error
	JobAppFn    func(utils.JobApplicationMail) error
	calls       []string
	forwardedTo []string
}

func (m *mockNotifier) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockNotifier) SendContactInquiry(d utils.ContactInquiryMail) error {
	m.record("contact")
	if m.ContactFn != nil {
		return m.ContactFn(d)
	}
	return nil
}

func (m *mockNotifier) SendForwardedInquiry(d utils.ForwardedInquiryMail) error {
	m.record("forward")
	m.mu.Lock()
	m.forwardedTo = append(m.forwardedTo, d.To)
	m.mu.Unlock()
	if m.ForwardFn != nil {
		return m.ForwardFn(d)
	}
	return nil
}

func (m *mockNotifier) SendLeadInquiry(d utils.LeadInquiryMail) error {
	m.record("lead")
	if m.LeadFn != nil {
		return m.LeadFn(d)
	}
	return nil
}

func (m *mockNotifier) SendBlogContact(d utils.BlogContactMail) error {
	m.record("blog_contact")
	if m.BlogFn != nil {
		return m.BlogFn(d)
	}
	return nil
}

func (m *mockNotifier) SendCallbackRequest(d utils.CallbackRequestMail) error {
	m.record("callback")
	if m.CallbackFn != nil {
		return m.CallbackFn(d)
	}
	return nil
}

func (m *mockNotifier) SendJobApplication(d utils.JobApplicationMail) error {
	m.record("job_application")
	if m.JobAppFn != nil {
		return m.JobAppFn(d)
	}
	return nil
}

type capturePublisher struct {
	mu    sync.Mutex
	items []notifications.Item
}

func (p *capturePublisher) Publish(item notifications.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
