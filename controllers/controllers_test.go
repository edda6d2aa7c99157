package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"agencysite/config"
	"agencysite/middleware"
	"agencysite/models"
	"agencysite/notifications"
	"agencysite/services"
	"agencysite/utils"
	"agencysite/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

type stubNotifier struct {
	mu      sync.Mutex
	err     error
	sent    []string
	lastJob utils.JobApplicationMail
}

func (s *stubNotifier) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, name)
	return s.err
}

func (s *stubNotifier) SendContactInquiry(utils.ContactInquiryMail) error { return s.record("contact") }
func (s *stubNotifier) SendForwardedInquiry(utils.ForwardedInquiryMail) error {
	return s.record("forward")
}
func (s *stubNotifier) SendLeadInquiry(utils.LeadInquiryMail) error { return s.record("lead") }
func (s *stubNotifier) SendBlogContact(utils.BlogContactMail) error { return s.record("blog_contact") }
func (s *stubNotifier) SendCallbackRequest(utils.CallbackRequestMail) error {
	return s.record("callback")
}
func (s *stubNotifier) SendJobApplication(d utils.JobApplicationMail) error {
	s.mu.Lock()
	s.lastJob = d
	s.mu.Unlock()
	return s.record("job_application")
}

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	notifier    *stubNotifier
	broadcaster *worker.BroadcastWorker
	token       string
}

// newTestEnv wires the controllers the same way the route table does, with
// one approved admin whose token is in env.token.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	db := openTestDB(t)
	notifier := &stubNotifier{}
	broadcaster := worker.NewBroadcastWorker(quietLogger())
	inquiries := services.NewInquiryService(db, notifier, broadcaster, quietLogger())
	center := notifications.NewCenter(notifications.NewMemoryCheckpointStore(nil), nil)

	ic := NewInquiryController(inquiries, quietLogger())
	jc := NewJobController(db, notifier, broadcaster, quietLogger())
	bc := NewBlogController(db, broadcaster, quietLogger())
	nc := NewNotificationController(db, inquiries, center, broadcaster, quietLogger())
	ac := NewAdminController(services.NewAuthService(db, quietLogger()), quietLogger(), false)
	dc := NewDashboardController(services.NewDashboardService(db), quietLogger())
	protected := middleware.Protected(db)

	app := fiber.New()
	app.Post("/login", ac.Login)
	app.Post("/api/admins/register", ac.Register)
	app.Get("/api/admins/me", protected, ac.Me)
	app.Delete("/api/admins/:id", protected, middleware.RequireSuperAdmin(), ac.DeleteAdmin)

	app.Post("/api/contact/inquiry", ic.Create(models.SourceContact))
	app.Post("/api/media/request-callback", ic.Create(models.SourceMedia))
	app.Post("/api/contact/inquiries", ic.Create(models.SourceBlogContact))
	app.Post("/api/ATL-inquiry", ic.Create(models.SourceATL))
	app.Get("/api/contact/inquiries", ic.List(models.SourceContact))
	app.Get("/api/media", ic.List(models.SourceMedia))
	app.Get("/api/leads/:source", ic.ListLeads)
	app.Get("/api/contact/inquiries/:id", ic.GetContactInquiry)
	app.Post("/api/contact/inquiries/:id/forward", ic.ForwardInquiry)
	app.Patch("/api/contact/inquiries/:id/status", ic.UpdateStatus)
	app.Post("/api/contact/inquiries/:id/status", ic.UpdateStatus)
	app.Post("/api/contact/inquiries/:id/toggle-read", ic.ToggleRead)
	app.Post("/api/contact/inquiries/:id/notes", ic.AddNote)
	app.Delete("/api/contact/inquiries/:id", protected, ic.DeleteInquiry)

	app.Get("/api/jobs", jc.ListJobs)
	app.Get("/api/jobs/:id", jc.GetJob)
	app.Post("/api/jobs", protected, jc.CreateJob)
	app.Post("/api/jobs/:id/apply", jc.Apply)
	app.Get("/api/blogs", bc.ListBlogs)
	app.Get("/api/blogs/:slug", bc.GetBlogBySlug)
	app.Post("/api/blogs", protected, bc.CreateBlog)

	app.Get("/api/admin/dashboard/stats", protected, dc.GetDashboardStats)
	app.Get("/api/admin/notifications", protected, nc.GetNotifications)
	app.Post("/api/admin/notifications/open", protected, nc.OpenNotifications)

	admin := models.Admin{Name: "Owner", Email: "owner@agency.test", PasswordHash: "x", IsAdmin: 1, IsSuperAdmin: 1, Status: models.AdminStatusActive}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, _, err := utils.GenerateJWTToken(&admin, admin.Role())
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	return &testEnv{app: app, db: db, notifier: notifier, broadcaster: broadcaster, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, auth bool) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.app.Test(req, int((5 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

type inquiryJSON struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Notes  []struct {
		Content string `json:"content"`
	} `json:"notes"`
}

func (e *testEnv) createContact(t *testing.T) inquiryJSON {
	t.Helper()
	code, body := e.request(t, http.MethodPost, "/api/contact/inquiry", fiber.Map{
		"name": "Jane Doe", "email": "jane@x.com", "message": "Hello",
	}, false)
	if code != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	return decode[inquiryJSON](t, body)
}

func TestInquiryController_CreateContact(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.request(t, http.MethodPost, "/api/contact/inquiry", fiber.Map{
		"name": "Jane Doe", "email": "jane@x.com", "message": "Hello",
	}, false)
	if code != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", code, body)
	}
	if !strings.Contains(string(body), `"notes":[]`) {
		t.Errorf("expected empty notes array in %s", body)
	}
	inq := decode[inquiryJSON](t, body)
	if inq.ID == "" || inq.Status != "unread" {
		t.Errorf("unexpected inquiry %+v", inq)
	}
}

func TestInquiryController_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.request(t, http.MethodPost, "/api/contact/inquiry", fiber.Map{"name": "Jane"}, false)
	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	resp := decode[map[string]interface{}](t, body)
	if resp["success"] != false || !strings.Contains(resp["error"].(string), "email is required") {
		t.Errorf("unexpected error body %v", resp)
	}
}

func TestInquiryController_MailFailureAsymmetry(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("smtp down")

	code, _ := env.request(t, http.MethodPost, "/api/media/request-callback", fiber.Map{"name": "Sam", "phone": "555"}, false)
	if code != fiber.StatusCreated {
		t.Errorf("expected 201 for callback despite mail failure, got %d", code)
	}
	code, _ = env.request(t, http.MethodPost, "/api/contact/inquiry", fiber.Map{"name": "J", "email": "j@x.com", "message": "m"}, false)
	if code != fiber.StatusCreated {
		t.Errorf("expected 201 for contact despite mail failure, got %d", code)
	}

	code, body := env.request(t, http.MethodPost, "/api/ATL-inquiry", fiber.Map{
		"firstName": "Ada", "lastName": "L", "email": "ada@x.com", "phoneNumber": "1",
	}, false)
	if code != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 for ATL mail failure, got %d: %s", code, body)
	}

	// The lead is kept even though the caller saw a failure.
	code, body = env.request(t, http.MethodGet, "/api/leads/atl", nil, false)
	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if leads := decode[[]inquiryJSON](t, body); len(leads) != 1 || leads[0].Name != "Ada L" {
		t.Errorf("unexpected leads %+v", leads)
	}
}

func TestInquiryController_LeadSuccessIs200(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.request(t, http.MethodPost, "/api/ATL-inquiry", fiber.Map{
		"firstName": "Ada", "lastName": "L", "email": "ada@x.com", "phoneNumber": "1",
	}, false)
	if code != fiber.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if code, _ := env.request(t, http.MethodGet, "/api/leads/fax", nil, false); code != fiber.StatusNotFound {
		t.Errorf("expected 404 for unknown lead source, got %d", code)
	}
}

func TestInquiryController_StatusViaPost(t *testing.T) {
	env := newTestEnv(t)
	inq := env.createContact(t)

	code, body := env.request(t, http.MethodPost, "/api/contact/inquiries/"+inq.ID+"/status", fiber.Map{"status": "read"}, false)
	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	if got := decode[inquiryJSON](t, body); got.Status != "read" {
		t.Errorf("expected read, got %q", got.Status)
	}

	code, _ = env.request(t, http.MethodPatch, "/api/contact/inquiries/"+inq.ID+"/status", fiber.Map{"status": "archived"}, false)
	if code != fiber.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", code)
	}
	code, _ = env.request(t, http.MethodPatch, "/api/contact/inquiries/nope/status", fiber.Map{"status": "read"}, false)
	if code != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing inquiry, got %d", code)
	}
}

func TestInquiryController_ForwardNotesAndToggle(t *testing.T) {
	env := newTestEnv(t)
	inq := env.createContact(t)
	base := "/api/contact/inquiries/" + inq.ID

	if code, _ := env.request(t, http.MethodPost, base+"/forward", fiber.Map{}, false); code != fiber.StatusBadRequest {
		t.Errorf("expected 400 without forwardingEmail, got %d", code)
	}
	if code, _ := env.request(t, http.MethodPost, "/api/contact/inquiries/missing/forward", fiber.Map{"forwardingEmail": "p@x.com"}, false); code != fiber.StatusNotFound {
		t.Errorf("expected 404 for missing inquiry, got %d", code)
	}

	code, body := env.request(t, http.MethodPost, base+"/forward", fiber.Map{"forwardingEmail": "partner@else.com"}, false)
	if code != fiber.StatusOK {
		t.Fatalf("forward: expected 200, got %d: %s", code, body)
	}
	fwd := decode[inquiryJSON](t, body)
	if fwd.Status != "unread" || len(fwd.Notes) != 1 || !strings.Contains(fwd.Notes[0].Content, "partner@else.com") {
		t.Errorf("unexpected forwarded inquiry %+v", fwd)
	}

	if code, _ := env.request(t, http.MethodPost, base+"/notes", fiber.Map{"content": "   "}, false); code != fiber.StatusBadRequest {
		t.Errorf("expected 400 for blank note, got %d", code)
	}
	code, body = env.request(t, http.MethodPost, base+"/notes", fiber.Map{"content": "called back"}, false)
	if code != fiber.StatusOK {
		t.Fatalf("note: expected 200, got %d", code)
	}
	if noted := decode[inquiryJSON](t, body); len(noted.Notes) != 2 || noted.Notes[1].Content != "called back" {
		t.Errorf("unexpected notes %+v", noted.Notes)
	}

	_, body = env.request(t, http.MethodPost, base+"/toggle-read", nil, false)
	if got := decode[inquiryJSON](t, body); got.Status != "read" {
		t.Errorf("expected read after first toggle, got %q", got.Status)
	}
	_, body = env.request(t, http.MethodPost, base+"/toggle-read", nil, false)
	if got := decode[inquiryJSON](t, body); got.Status != "unread" || len(got.Notes) != 2 {
		t.Errorf("expected unread with notes untouched, got %+v", got)
	}
}

func TestInquiryController_ForwardMailFailure(t *testing.T) {
	env := newTestEnv(t)
	inq := env.createContact(t)
	env.notifier.err = errors.New("smtp down")

	code, _ := env.request(t, http.MethodPost, "/api/contact/inquiries/"+inq.ID+"/forward", fiber.Map{"forwardingEmail": "p@x.com"}, false)
	if code != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	_, body := env.request(t, http.MethodGet, "/api/contact/inquiries/"+inq.ID, nil, false)
	if got := decode[inquiryJSON](t, body); len(got.Notes) != 0 {
		t.Errorf("expected no note after failed forward, got %+v", got.Notes)
	}
}

func TestInquiryController_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"second", "first", "third"} {
		offsets := []time.Duration{time.Minute, 0, 2 * time.Minute}
		row := models.Inquiry{Source: models.SourceContact, Name: name, Status: models.StatusUnread, CreatedAt: base.Add(offsets[i])}
		if err := env.db.Create(&row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	_, body := env.request(t, http.MethodGet, "/api/contact/inquiries", nil, false)
	list := decode[[]inquiryJSON](t, body)
	if len(list) != 3 || list[0].Name != "third" || list[2].Name != "first" {
		t.Errorf("unexpected order %+v", list)
	}

	_, body = env.request(t, http.MethodGet, "/api/media", nil, false)
	if string(body) != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestInquiryController_DeleteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	inq := env.createContact(t)

	if code, _ := env.request(t, http.MethodDelete, "/api/contact/inquiries/"+inq.ID, nil, false); code != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", code)
	}
	if code, _ := env.request(t, http.MethodDelete, "/api/contact/inquiries/"+inq.ID, nil, true); code != fiber.StatusOK {
		t.Errorf("expected 200 with token, got %d", code)
	}
	if code, _ := env.request(t, http.MethodGet, "/api/contact/inquiries/"+inq.ID, nil, false); code != fiber.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}
