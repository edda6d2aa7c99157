package routes

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agencysite/config"
	"agencysite/notifications"
	"agencysite/utils"
	"agencysite/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type nopNotifier struct{}

func (nopNotifier) SendContactInquiry(utils.ContactInquiryMail) error     { return nil }
func (nopNotifier) SendForwardedInquiry(utils.ForwardedInquiryMail) error { return nil }
func (nopNotifier) SendLeadInquiry(utils.LeadInquiryMail) error           { return nil }
func (nopNotifier) SendBlogContact(utils.BlogContactMail) error           { return nil }
func (nopNotifier) SendCallbackRequest(utils.CallbackRequestMail) error   { return nil }
func (nopNotifier) SendJobApplication(utils.JobApplicationMail) error     { return nil }

func newApp(t *testing.T, limit int) *fiber.App {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	dsn := fmt.Sprintf("file:routes_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	quiet := logrus.New()
	quiet.SetLevel(logrus.PanicLevel)

	app := fiber.New()
	SetupRoutes(app, Dependencies{
		DB:                 db,
		Notifier:           nopNotifier{},
		Center:             notifications.NewCenter(notifications.NewMemoryCheckpointStore(nil), nil),
		Broadcaster:        worker.NewBroadcastWorker(logrus.NewEntry(quiet)),
		RateLimitInquiries: limit,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(out)
}

func TestSetupRoutes_HealthMetricsAndNotFound(t *testing.T) {
	app := newApp(t, 10)

	if code, body := do(t, app, http.MethodGet, "/health", ""); code != fiber.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("unexpected health response %d %s", code, body)
	}
	if code, _ := do(t, app, http.MethodGet, "/metrics", ""); code != fiber.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", code)
	}
	code, body := do(t, app, http.MethodGet, "/api/nothing-here", "")
	if code != fiber.StatusNotFound || !strings.Contains(body, "Not Found") {
		t.Errorf("expected JSON 404, got %d %s", code, body)
	}
}

func TestSetupRoutes_PublicFormAndProtectedPanel(t *testing.T) {
	app := newApp(t, 10)

	code, body := do(t, app, http.MethodPost, "/api/contact/inquiry", `{"name":"Jane Doe","email":"jane@x.com","message":"Hello"}`)
	if code != fiber.StatusCreated || !strings.Contains(body, `"status":"unread"`) {
		t.Errorf("expected 201 unread inquiry, got %d %s", code, body)
	}
	if code, _ := do(t, app, http.MethodGet, "/api/contact/inquiries", ""); code != fiber.StatusOK {
		t.Errorf("expected open list, got %d", code)
	}

	for _, path := range []string{"/api/admin/dashboard/stats", "/api/admin/notifications", "/api/admin/jobs", "/api/admins/me"} {
		if code, _ := do(t, app, http.MethodGet, path, ""); code != fiber.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, code)
		}
	}
}

func TestSetupRoutes_PublicFormsAreRateLimited(t *testing.T) {
	app := newApp(t, 2)
	payload := `{"name":"Jane","email":"jane@x.com","message":"Hi"}`

	for i := 0; i < 2; i++ {
		if code, _ := do(t, app, http.MethodPost, "/api/contact/inquiry", payload); code != fiber.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, code)
		}
	}
	if code, _ := do(t, app, http.MethodPost, "/api/contact/inquiry", payload); code != fiber.StatusTooManyRequests {
		t.Errorf("expected 429 after the limit, got %d", code)
	}
}
