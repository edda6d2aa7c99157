package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencysite/models"
	"agencysite/notifications"
	"agencysite/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInquiryNotFound        = errors.New("inquiry not found")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrEmptyNote              = errors.New("note content is required")
	ErrInvalidForwardingEmail = errors.New("a valid forwarding email is required")
	ErrMailDelivery           = errors.New("failed to send email")
	ErrUnknownSource          = errors.New("unknown inquiry source")
	ErrNoLifecycle            = errors.New("inquiry source has no lifecycle")
)

// ValidationError carries the flattened validator message of a rejected form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Notifier is the admin-mail side of the Mailer.
type Notifier interface {
	SendContactInquiry(data utils.ContactInquiryMail) error
	SendForwardedInquiry(data utils.ForwardedInquiryMail) error
	SendLeadInquiry(data utils.LeadInquiryMail) error
	SendBlogContact(data utils.BlogContactMail) error
	SendCallbackRequest(data utils.CallbackRequestMail) error
	SendJobApplication(data utils.JobApplicationMail) error
}

// Publisher receives every newly stored item for realtime delivery.
type Publisher interface {
	Publish(item notifications.Item)
}

type InquiryService struct {
	db        *gorm.DB
	notifier  Notifier
	publisher Publisher
	log       *logrus.Entry
	now       func() time.Time
}

func NewInquiryService(db *gorm.DB, notifier Notifier, publisher Publisher, logger *logrus.Entry) *InquiryService {
	if logger == nil {
		logger = utils.NewLogger("INQUIRIES")
	}
	return &InquiryService{
		db:        db,
		notifier:  notifier,
		publisher: publisher,
		log:       logger,
		now:       time.Now,
	}
}

// Create validates and stores an inquiry for source, then notifies the
// admin inbox. The record is persisted before the mail is attempted, so a
// fatal mail failure returns the stored inquiry together with ErrMailDelivery.
func (s *InquiryService) Create(ctx context.Context, source models.InquirySource, in InquiryInput) (*models.Inquiry, error) {
	rule, ok := RuleFor(source)
	if !ok {
		return nil, ErrUnknownSource
	}

	in = trimmed(in)
	if err := rule.validate(in); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	inquiry := rule.build(in)
	inquiry.Source = source
	if rule.HasLifecycle {
		inquiry.Status = models.StatusUnread
	}

	if err := s.db.WithContext(ctx).Create(&inquiry).Error; err != nil {
		return nil, fmt.Errorf("failed to store inquiry: %w", err)
	}

	utils.InquiriesCreated.WithLabelValues(string(source)).Inc()
	utils.LogEvent(s.log, "inquiry_created", map[string]interface{}{
		"inquiry_id": inquiry.ID,
		"source":     source,
	})
	if s.publisher != nil {
		s.publisher.Publish(notifications.ItemFromInquiry(&inquiry))
	}

	if s.notifier == nil {
		return &inquiry, nil
	}
	if err := rule.notify(s.notifier, &inquiry, in); err != nil {
		utils.LogError(s.log, "inquiry_mail_failed", err, map[string]interface{}{
			"inquiry_id": inquiry.ID,
			"source":     source,
			"fatal":      rule.MailFailureFatal,
		})
		if rule.MailFailureFatal {
			return &inquiry, fmt.Errorf("%w: %v", ErrMailDelivery, err)
		}
	}

	return &inquiry, nil
}

// List returns every inquiry of source, newest first.
func (s *InquiryService) List(ctx context.Context, source models.InquirySource) ([]models.Inquiry, error) {
	if _, ok := RuleFor(source); !ok {
		return nil, ErrUnknownSource
	}

	inquiries := []models.Inquiry{}
	err := s.db.WithContext(ctx).
		Preload("Notes", models.OrderedNotes).
		Where("source = ?", source).
		Order("created_at DESC").
		Find(&inquiries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, nil
}

// Since returns inquiries of every source created strictly after t.
func (s *InquiryService) Since(ctx context.Context, t time.Time) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := s.db.WithContext(ctx).
		Where("created_at > ?", t).
		Order("created_at ASC").
		Find(&inquiries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent inquiries: %w", err)
	}
	return inquiries, nil
}

// Get loads one inquiry of source.
func (s *InquiryService) Get(ctx context.Context, source models.InquirySource, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.WithContext(ctx).
		Preload("Notes", models.OrderedNotes).
		Where("id = ? AND source = ?", id, source).
		First(&inquiry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("failed to load inquiry: %w", err)
	}
	return &inquiry, nil
}

func (s *InquiryService) getWithLifecycle(ctx context.Context, source models.InquirySource, id string) (*models.Inquiry, error) {
	rule, ok := RuleFor(source)
	if !ok {
		return nil, ErrUnknownSource
	}
	if !rule.HasLifecycle {
		return nil, ErrNoLifecycle
	}
	return s.Get(ctx, source, id)
}

// Forward mails the full inquiry to email and, only once the mail went out,
// records the action as a note. Status is left as it was.
func (s *InquiryService) Forward(ctx context.Context, source models.InquirySource, id, email string) (*models.Inquiry, error) {
	email = strings.TrimSpace(email)
	if email == "" || !utils.IsValidEmail(email) {
		return nil, ErrInvalidForwardingEmail
	}

	inquiry, err := s.getWithLifecycle(ctx, source, id)
	if err != nil {
		return nil, err
	}

	if s.notifier == nil {
		return nil, ErrMailDelivery
	}
	err = s.notifier.SendForwardedInquiry(utils.ForwardedInquiryMail{
		To:         email,
		Name:       inquiry.Name,
		Email:      inquiry.Email,
		Phone:      inquiry.Phone,
		Company:    inquiry.Company,
		Message:    inquiry.Message,
		Status:     inquiry.Status,
		ReceivedAt: inquiry.CreatedAt,
		Notes:      inquiry.Notes,
	})
	if err != nil {
		utils.LogError(s.log, "inquiry_forward_failed", err, map[string]interface{}{
			"inquiry_id": inquiry.ID,
			"to":         email,
		})
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	inquiry, err = s.appendNote(ctx, source, id, "Inquiry forwarded to "+email)
	if err != nil {
		return nil, err
	}

	utils.LogEvent(s.log, "inquiry_forwarded", map[string]interface{}{
		"inquiry_id": inquiry.ID,
		"to":         email,
	})
	return inquiry, nil
}

// UpdateStatus overwrites the status with any value of models.InquiryStatuses.
// Transitions are not restricted.
func (s *InquiryService) UpdateStatus(ctx context.Context, source models.InquirySource, id, status string) (*models.Inquiry, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	inquiry, err := s.getWithLifecycle(ctx, source, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveStatus(ctx, inquiry, status); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// ToggleRead flips unread to read and every other status back to unread.
func (s *InquiryService) ToggleRead(ctx context.Context, source models.InquirySource, id string) (*models.Inquiry, error) {
	inquiry, err := s.getWithLifecycle(ctx, source, id)
	if err != nil {
		return nil, err
	}

	next := models.StatusUnread
	if inquiry.Status == models.StatusUnread {
		next = models.StatusRead
	}
	if err := s.saveStatus(ctx, inquiry, next); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// AddNote appends a note and returns the whole updated inquiry.
func (s *InquiryService) AddNote(ctx context.Context, source models.InquirySource, id, content string) (*models.Inquiry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	if _, err := s.getWithLifecycle(ctx, source, id); err != nil {
		return nil, err
	}
	return s.appendNote(ctx, source, id, content)
}

func (s *InquiryService) Delete(ctx context.Context, source models.InquirySource, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND source = ?", id, source).Delete(&models.Inquiry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInquiryNotFound
		}
		return tx.Where("inquiry_id = ?", id).Delete(&models.Note{}).Error
	})
	if err != nil && !errors.Is(err, ErrInquiryNotFound) {
		return fmt.Errorf("failed to delete inquiry: %w", err)
	}
	return err
}

func (s *InquiryService) saveStatus(ctx context.Context, inquiry *models.Inquiry, status string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.Inquiry{}).
		Where("id = ?", inquiry.ID).
		Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	inquiry.Status = status
	inquiry.UpdatedAt = now
	return nil
}

// appendNote inserts a single note row and reloads the inquiry, so the
// result also carries notes other requests added in the meantime.
func (s *InquiryService) appendNote(ctx context.Context, source models.InquirySource, id, content string) (*models.Inquiry, error) {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Inquiry{}).
			Where("id = ? AND source = ?", id, source).
			Update("updated_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInquiryNotFound
		}
		return tx.Create(&models.Note{InquiryID: id, Content: content, CreatedAt: now}).Error
	})
	if err != nil {
		if errors.Is(err, ErrInquiryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return s.Get(ctx, source, id)
}
