package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquirySource tags which public form an inquiry came from.
type InquirySource string

const (
	SourceContact     InquirySource = "contact"
	SourceMedia       InquirySource = "media"
	SourceBlogContact InquirySource = "blog_contact"
	SourceATL         InquirySource = "atl"
	SourceBTL         InquirySource = "btl"
	SourceTTL         InquirySource = "ttl"
)

// Contact inquiry lifecycle states.
const (
	StatusUnread     = "unread"
	StatusRead       = "read"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// InquiryStatuses lists every status a contact inquiry may hold.
var InquiryStatuses = []string{StatusUnread, StatusRead, StatusInProgress, StatusResolved, StatusClosed}

// IsValidStatus reports whether s is one of InquiryStatuses.
func IsValidStatus(s string) bool {
	for _, status := range InquiryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Note is an admin remark on an inquiry. Rows are only ever inserted, so
// concurrent appends never overwrite each other.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	InquiryID string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Note) TableName() string {
	return "inquiry_notes"
}

// Inquiry is an inbound lead from any of the public forms.
// Status and Notes are only meaningful for sources with a lifecycle.
type Inquiry struct {
	ID                string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	Source            InquirySource `gorm:"type:varchar(32);not null;index:idx_inquiries_source_created,priority:1" json:"source"`
	Name              string        `gorm:"not null" json:"name"`
	Email             string        `gorm:"index" json:"email,omitempty"`
	Phone             string        `json:"phone,omitempty"`
	Company           string        `json:"company,omitempty"`
	ServiceOfInterest string        `json:"serviceOfInterest,omitempty"`
	Message           string        `gorm:"type:text" json:"message,omitempty"`
	Status            string        `gorm:"type:varchar(32)" json:"status,omitempty"`
	Notes             []Note        `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE" json:"notes"`
	CreatedAt         time.Time     `gorm:"index:idx_inquiries_source_created,priority:2" json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// BeforeCreate assigns the id and makes sure notes serialise as an array.
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Notes == nil {
		i.Notes = []Note{}
	}
	return nil
}

// AfterFind keeps notes an array when they were not preloaded.
func (i *Inquiry) AfterFind(tx *gorm.DB) error {
	if i.Notes == nil {
		i.Notes = []Note{}
	}
	return nil
}

// OrderedNotes preloads notes oldest first.
func OrderedNotes(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}
