package controller

import (
	"context"
	"fmt"
	"time"

	"agencysite/middleware"
	"agencysite/models"
	"agencysite/notifications"
	"agencysite/services"
	"agencysite/utils"
	"agencysite/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB          *gorm.DB
	Inquiries   *services.InquiryService
	Center      *notifications.Center
	Broadcaster *worker.BroadcastWorker
	Logger      *logrus.Entry
}

func NewNotificationController(db *gorm.DB, inquiries *services.InquiryService, center *notifications.Center, broadcaster *worker.BroadcastWorker, logger *logrus.Entry) *NotificationController {
	return &NotificationController{
		DB:          db,
		Inquiries:   inquiries,
		Center:      center,
		Broadcaster: broadcaster,
		Logger:      logger,
	}
}

func feedKey(admin *models.Admin) string {
	return fmt.Sprintf("admin:%d", admin.ID)
}

// collect loads every job, blog and inquiry created after since.
func (nc *NotificationController) collect(ctx context.Context, since time.Time) ([]notifications.Item, error) {
	var jobs []models.Job
	if err := nc.DB.WithContext(ctx).Where("created_at > ?", since).Find(&jobs).Error; err != nil {
		return nil, err
	}
	var blogs []models.Blog
	if err := nc.DB.WithContext(ctx).Where("created_at > ?", since).Find(&blogs).Error; err != nil {
		return nil, err
	}
	inquiries, err := nc.Inquiries.Since(ctx, since)
	if err != nil {
		return nil, err
	}

	items := make([]notifications.Item, 0, len(jobs)+len(blogs)+len(inquiries))
	for i := range jobs {
		items = append(items, notifications.ItemFromJob(&jobs[i]))
	}
	for i := range blogs {
		items = append(items, notifications.ItemFromBlog(&blogs[i]))
	}
	for i := range inquiries {
		items = append(items, notifications.ItemFromInquiry(&inquiries[i]))
	}
	return items, nil
}

// GetNotifications refreshes the caller's feed and returns it.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	feed := nc.Center.FeedFor(feedKey(middleware.CurrentAdmin(c)))

	checkpoint, err := feed.Checkpoint(ctx)
	if err != nil {
		return nc.feedError(c, err)
	}
	items, err := nc.collect(ctx, checkpoint)
	if err != nil {
		return nc.feedError(c, err)
	}
	if _, err := feed.Refresh(ctx, items); err != nil {
		return nc.feedError(c, err)
	}

	snapshot, err := feed.Snapshot(ctx)
	if err != nil {
		return nc.feedError(c, err)
	}
	return c.JSON(snapshot)
}

// OpenNotifications is called when the admin opens the bell dropdown.
func (nc *NotificationController) OpenNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	feed := nc.Center.FeedFor(feedKey(middleware.CurrentAdmin(c)))

	if err := feed.Open(ctx); err != nil {
		return nc.feedError(c, err)
	}
	snapshot, err := feed.Snapshot(ctx)
	if err != nil {
		return nc.feedError(c, err)
	}
	return c.JSON(snapshot)
}

// UpgradeCheck rejects plain HTTP requests to the websocket endpoint.
func (nc *NotificationController) UpgradeCheck(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("feedKey", feedKey(middleware.CurrentAdmin(c)))
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type pushMessage struct {
	Type         string                     `json:"type"`
	Notification notifications.Notification `json:"notification"`
}

// Stream pushes every newly created item to the connected admin. The client
// still calls GetNotifications to fold it into its feed.
func (nc *NotificationController) Stream(conn *websocket.Conn) {
	defer conn.Close()

	key, _ := conn.Locals("feedKey").(string)
	id, events := nc.Broadcaster.Subscribe()
	defer nc.Broadcaster.Unsubscribe(id)

	nc.Logger.WithField("feed", key).Debug("Notification stream opened")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case item, ok := <-events:
			if !ok {
				return
			}
			msg := pushMessage{Type: "new_item", Notification: notifications.Decorate(item)}
			if err := conn.WriteJSON(msg); err != nil {
				nc.Logger.WithError(err).WithField("feed", key).Debug("Notification stream write failed")
				return
			}
		}
	}
}

func (nc *NotificationController) feedError(c *fiber.Ctx, err error) error {
	utils.LogError(nc.Logger, "notification_feed_failed", err, map[string]interface{}{
		"path": c.Path(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load notifications", nil)
}
