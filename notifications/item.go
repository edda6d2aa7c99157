package notifications

import (
	"fmt"
	"strings"
	"time"

	"agencysite/models"
)

// Kind is the admin-facing category of a notification.
type Kind string

const (
	KindJob         Kind = "job"
	KindBlog        Kind = "blog"
	KindInquiry     Kind = "inquiry"
	KindCallback    Kind = "callback"
	KindBlogContact Kind = "blog_contact"
	KindLead        Kind = "lead"
)

// Item is anything with a creation time the admin should hear about.
type Item struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is an Item decorated for the bell dropdown.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Icon      string    `json:"icon"`
	Link      string    `json:"link"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type presentation struct {
	icon   string
	link   string
	format func(Item) string
}

var presentations = map[Kind]presentation{
	KindJob: {"briefcase", "/admin/jobs", func(it Item) string {
		return "New job posted: " + it.Title
	}},
	KindBlog: {"file-text", "/admin/blogs", func(it Item) string {
		return "New blog published: " + it.Title
	}},
	KindInquiry: {"mail", "/admin/inquiries", func(it Item) string {
		return "New inquiry from " + it.Title
	}},
	KindCallback: {"phone", "/admin/media", func(it Item) string {
		return "New callback request from " + it.Title
	}},
	KindBlogContact: {"message-square", "/admin/blog-inquiries", func(it Item) string {
		return "New blog contact from " + it.Title
	}},
	KindLead: {"target", "/admin/leads", func(it Item) string {
		return fmt.Sprintf("New %s lead from %s", strings.ToUpper(it.Detail), it.Title)
	}},
}

// Decorate turns an Item into a Notification using its kind's icon, link and message.
func Decorate(it Item) Notification {
	p, ok := presentations[it.Kind]
	if !ok {
		p = presentation{"bell", "/admin", func(it Item) string { return it.Title }}
	}
	return Notification{
		ID:        it.ID,
		Kind:      it.Kind,
		Icon:      p.icon,
		Link:      p.link,
		Message:   p.format(it),
		CreatedAt: it.CreatedAt,
	}
}

func ItemFromJob(job *models.Job) Item {
	return Item{
		ID:        fmt.Sprintf("job:%d", job.ID),
		Kind:      KindJob,
		Title:     job.Title,
		CreatedAt: job.CreatedAt,
	}
}

func ItemFromBlog(blog *models.Blog) Item {
	return Item{
		ID:        fmt.Sprintf("blog:%d", blog.ID),
		Kind:      KindBlog,
		Title:     blog.Title,
		CreatedAt: blog.CreatedAt,
	}
}

func ItemFromInquiry(inq *models.Inquiry) Item {
	item := Item{
		ID:        "inquiry:" + inq.ID,
		Title:     inq.Name,
		CreatedAt: inq.CreatedAt,
	}
	switch inq.Source {
	case models.SourceMedia:
		item.Kind = KindCallback
	case models.SourceBlogContact:
		item.Kind = KindBlogContact
	case models.SourceATL, models.SourceBTL, models.SourceTTL:
		item.Kind = KindLead
		item.Detail = string(inq.Source)
	default:
		item.Kind = KindInquiry
	}
	return item
}
