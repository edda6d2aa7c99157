package services

import (
	"strings"

	"agencysite/models"
	"agencysite/utils"
)

// InquiryInput is the union of every public form's fields. Each source
// validates and keeps only the fields it knows.
type InquiryInput struct {
	Name              string `json:"name"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	PhoneNumber       string `json:"phoneNumber"`
	Company           string `json:"company"`
	ServiceOfInterest string `json:"serviceOfInterest"`
	Message           string `json:"message"`
}

type contactForm struct {
	Name    string `validate:"notblank,max=200"`
	Email   string `validate:"notblank,mailaddr"`
	Message string `validate:"notblank,max=5000"`
}

type callbackForm struct {
	Name    string `validate:"notblank,max=200"`
	Phone   string `validate:"notblank,max=40"`
	Company string `validate:"max=200"`
}

type blogContactForm struct {
	Name              string `validate:"notblank,max=200"`
	Email             string `validate:"notblank,mailaddr"`
	Company           string `validate:"max=200"`
	Phone             string `validate:"max=40"`
	ServiceOfInterest string `validate:"max=200"`
	Message           string `validate:"notblank,max=5000"`
}

type leadForm struct {
	FirstName   string `validate:"notblank,max=100"`
	LastName    string `validate:"notblank,max=100"`
	Email       string `validate:"notblank,mailaddr"`
	PhoneNumber string `validate:"notblank,max=40"`
}

// SourceRule is everything that differs between inquiry sources.
type SourceRule struct {
	Source models.InquirySource
	// HasLifecycle sources carry a status and notes and can be forwarded.
	HasLifecycle bool
	// MailFailureFatal makes a failed admin mail fail the request. The
	// record is stored either way.
	MailFailureFatal bool

	validate func(in InquiryInput) error
	build    func(in InquiryInput) models.Inquiry
	notify   func(n Notifier, inq *models.Inquiry, in InquiryInput) error
}

func trimmed(in InquiryInput) InquiryInput {
	return InquiryInput{
		Name:              strings.TrimSpace(in.Name),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:             strings.TrimSpace(in.Phone),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		Company:           strings.TrimSpace(in.Company),
		ServiceOfInterest: strings.TrimSpace(in.ServiceOfInterest),
		Message:           strings.TrimSpace(in.Message),
	}
}

func leadRule(source models.InquirySource) SourceRule {
	return SourceRule{
		Source:           source,
		MailFailureFatal: true,
		validate: func(in InquiryInput) error {
			return utils.ValidateStruct(leadForm{
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       in.Email,
				PhoneNumber: in.PhoneNumber,
			})
		},
		build: func(in InquiryInput) models.Inquiry {
			return models.Inquiry{
				Name:  in.FirstName + " " + in.LastName,
				Email: in.Email,
				Phone: in.PhoneNumber,
			}
		},
		notify: func(n Notifier, inq *models.Inquiry, in InquiryInput) error {
			return n.SendLeadInquiry(utils.LeadInquiryMail{
				Channel:     strings.ToUpper(string(source)),
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       inq.Email,
				PhoneNumber: inq.Phone,
			})
		},
	}
}

var sourceRules = map[models.InquirySource]SourceRule{
	models.SourceContact: {
		Source:       models.SourceContact,
		HasLifecycle: true,
		validate: func(in InquiryInput) error {
			return utils.ValidateStruct(contactForm{Name: in.Name, Email: in.Email, Message: in.Message})
		},
		build: func(in InquiryInput) models.Inquiry {
			return models.Inquiry{Name: in.Name, Email: in.Email, Message: in.Message}
		},
		notify: func(n Notifier, inq *models.Inquiry, in InquiryInput) error {
			return n.SendContactInquiry(utils.ContactInquiryMail{
				Name:       inq.Name,
				Email:      inq.Email,
				Message:    inq.Message,
				ReceivedAt: inq.CreatedAt,
			})
		},
	},
	models.SourceMedia: {
		Source: models.SourceMedia,
		validate: func(in InquiryInput) error {
			return utils.ValidateStruct(callbackForm{Name: in.Name, Phone: in.Phone, Company: in.Company})
		},
		build: func(in InquiryInput) models.Inquiry {
			return models.Inquiry{Name: in.Name, Phone: in.Phone, Company: in.Company}
		},
		notify: func(n Notifier, inq *models.Inquiry, in InquiryInput) error {
			return n.SendCallbackRequest(utils.CallbackRequestMail{
				Name:    inq.Name,
				Phone:   inq.Phone,
				Company: inq.Company,
			})
		},
	},
	models.SourceBlogContact: {
		Source: models.SourceBlogContact,
		validate: func(in InquiryInput) error {
			return utils.ValidateStruct(blogContactForm{
				Name:              in.Name,
				Email:             in.Email,
				Company:           in.Company,
				Phone:             in.Phone,
				ServiceOfInterest: in.ServiceOfInterest,
				Message:           in.Message,
			})
		},
		build: func(in InquiryInput) models.Inquiry {
			return models.Inquiry{
				Name:              in.Name,
				Email:             in.Email,
				Company:           in.Company,
				Phone:             in.Phone,
				ServiceOfInterest: in.ServiceOfInterest,
				Message:           in.Message,
			}
		},
		notify: func(n Notifier, inq *models.Inquiry, in InquiryInput) error {
			return n.SendBlogContact(utils.BlogContactMail{
				Name:              inq.Name,
				Email:             inq.Email,
				Company:           inq.Company,
				Phone:             inq.Phone,
				ServiceOfInterest: inq.ServiceOfInterest,
				Message:           inq.Message,
			})
		},
	},
	models.SourceATL: leadRule(models.SourceATL),
	models.SourceBTL: leadRule(models.SourceBTL),
	models.SourceTTL: leadRule(models.SourceTTL),
}

// RuleFor returns the rule of a known source.
func RuleFor(source models.InquirySource) (SourceRule, bool) {
	rule, ok := sourceRules[source]
	return rule, ok
}

// ParseLeadSource maps the ATL/BTL/TTL path segment to its source.
func ParseLeadSource(s string) (models.InquirySource, bool) {
	switch models.InquirySource(strings.ToLower(s)) {
	case models.SourceATL:
		return models.SourceATL, true
	case models.SourceBTL:
		return models.SourceBTL, true
	case models.SourceTTL:
		return models.SourceTTL, true
	}
	return "", false
}
