package routes

import (
	controller "agencysite/controllers"
	"agencysite/middleware"
	"agencysite/models"
	"agencysite/notifications"
	"agencysite/services"
	"agencysite/utils"
	"agencysite/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies is everything the route table wires into controllers.
type Dependencies struct {
	DB                 *gorm.DB
	Notifier           services.Notifier
	Center             *notifications.Center
	Broadcaster        *worker.BroadcastWorker
	RateLimitStorage   fiber.Storage
	RateLimitInquiries int
	SecureCookies      bool
}

func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})
}

// SetupInquiryRoutes wires the public forms and the contact inquiry
// lifecycle. Reads and lifecycle writes are open; only delete needs a token.
func SetupInquiryRoutes(api fiber.Router, deps Dependencies, inquiries *services.InquiryService) {
	ic := controller.NewInquiryController(inquiries, utils.NewLogger("INQUIRY"))
	limit := middleware.InquiryRateLimiter(deps.RateLimitInquiries, deps.RateLimitStorage, utils.NewLogger("RATELIMIT"))
	protected := middleware.Protected(deps.DB)

	// Public forms
	api.Post("/contact/inquiry", limit, ic.Create(models.SourceContact))
	api.Post("/media/request-callback", limit, ic.Create(models.SourceMedia))
	api.Post("/contact/inquiries", limit, ic.Create(models.SourceBlogContact))
	api.Post("/ATL-inquiry", limit, ic.Create(models.SourceATL))
	api.Post("/BTL-inquiry", limit, ic.Create(models.SourceBTL))
	api.Post("/TTL-inquiry", limit, ic.Create(models.SourceTTL))

	// Lists
	api.Get("/contact/inquiries", ic.List(models.SourceContact))
	api.Get("/media", ic.List(models.SourceMedia))
	api.Get("/blog-contact/inquiries", ic.List(models.SourceBlogContact))
	api.Get("/leads/:source", ic.ListLeads)

	// Contact inquiry lifecycle
	contact := api.Group("/contact/inquiries")
	contact.Get("/:id", ic.GetContactInquiry)
	contact.Post("/:id/forward", ic.ForwardInquiry)
	contact.Patch("/:id/status", ic.UpdateStatus)
	contact.Post("/:id/status", ic.UpdateStatus)
	contact.Post("/:id/toggle-read", ic.ToggleRead)
	contact.Post("/:id/notes", ic.AddNote)
	contact.Delete("/:id", protected, ic.DeleteInquiry)
}

func SetupAdminRoutes(app *fiber.App, api fiber.Router, deps Dependencies) {
	auth := services.NewAuthService(deps.DB, utils.NewLogger("AUTH"))
	ac := controller.NewAdminController(auth, utils.NewLogger("ADMIN"), deps.SecureCookies)
	protected := middleware.Protected(deps.DB)

	app.Post("/login", requestLogger(), ac.Login)

	admins := api.Group("/admins")
	admins.Post("/register", ac.Register)
	admins.Get("/", protected, ac.ListAdmins)
	admins.Get("/me", protected, ac.Me)
	admins.Put("/:id", protected, middleware.RequireSuperAdmin(), ac.UpdateAdmin)
	admins.Delete("/:id", protected, middleware.RequireSuperAdmin(), ac.DeleteAdmin)
}

func SetupContentRoutes(api fiber.Router, deps Dependencies) {
	jc := controller.NewJobController(deps.DB, deps.Notifier, deps.Broadcaster, utils.NewLogger("JOBS"))
	bc := controller.NewBlogController(deps.DB, deps.Broadcaster, utils.NewLogger("BLOGS"))
	protected := middleware.Protected(deps.DB)
	limit := middleware.InquiryRateLimiter(deps.RateLimitInquiries, deps.RateLimitStorage, utils.NewLogger("RATELIMIT"))

	jobs := api.Group("/jobs")
	jobs.Get("/", jc.ListJobs)
	jobs.Get("/:id", jc.GetJob)
	jobs.Post("/:id/apply", limit, jc.Apply)
	jobs.Post("/", protected, jc.CreateJob)
	jobs.Put("/:id", protected, jc.UpdateJob)
	jobs.Delete("/:id", protected, jc.DeleteJob)

	blogs := api.Group("/blogs")
	blogs.Get("/", bc.ListBlogs)
	blogs.Get("/:slug", bc.GetBlogBySlug)
	blogs.Post("/", protected, bc.CreateBlog)
	blogs.Put("/:id", protected, bc.UpdateBlog)
	blogs.Delete("/:id", protected, bc.DeleteBlog)

	api.Get("/admin/jobs", protected, jc.ListAllJobs)
	api.Get("/admin/blogs", protected, bc.ListAllBlogs)
}

func SetupAdminPanelRoutes(api fiber.Router, deps Dependencies, inquiries *services.InquiryService) {
	dc := controller.NewDashboardController(services.NewDashboardService(deps.DB), utils.NewLogger("DASHBOARD"))
	nc := controller.NewNotificationController(deps.DB, inquiries, deps.Center, deps.Broadcaster, utils.NewLogger("NOTIFICATIONS"))

	protected := middleware.Protected(deps.DB)

	api.Get("/admin/dashboard/stats", protected, dc.GetDashboardStats)
	api.Get("/admin/notifications", protected, nc.GetNotifications)
	api.Post("/admin/notifications/open", protected, nc.OpenNotifications)
	api.Get("/admin/notifications/ws", protected, nc.UpgradeCheck, websocket.New(nc.Stream))
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	inquiries := services.NewInquiryService(deps.DB, deps.Notifier, deps.Broadcaster, utils.NewLogger("INQUIRIES"))
	api := app.Group("/api", requestLogger())

	SetupInquiryRoutes(api, deps, inquiries)
	SetupAdminRoutes(app, api, deps)
	SetupContentRoutes(api, deps)
	SetupAdminPanelRoutes(api, deps, inquiries)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
