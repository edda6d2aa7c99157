package controller

import (
	"errors"
	"strings"

	"agencysite/models"
	"agencysite/notifications"
	"agencysite/services"
	"agencysite/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobController struct {
	DB        *gorm.DB
	Notifier  services.Notifier
	Publisher services.Publisher
	Logger    *logrus.Entry
}

func NewJobController(db *gorm.DB, notifier services.Notifier, publisher services.Publisher, logger *logrus.Entry) *JobController {
	return &JobController{
		DB:        db,
		Notifier:  notifier,
		Publisher: publisher,
		Logger:    logger,
	}
}

type jobRequest struct {
	Title          string   `json:"title" validate:"notblank,max=200"`
	Department     string   `json:"department" validate:"max=100"`
	Location       string   `json:"location" validate:"max=100"`
	EmploymentType string   `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	IsActive       *bool    `json:"isActive"`
}

// listJobs returns positions newest first; the public view hides closed ones.
func (jc *JobController) listJobs(c *fiber.Ctx, includeInactive bool) error {
	jobs := []models.Job{}
	query := jc.DB.WithContext(c.UserContext()).Order("created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch jobs", err)
	}
	return c.JSON(jobs)
}

func (jc *JobController) ListJobs(c *fiber.Ctx) error {
	return jc.listJobs(c, false)
}

func (jc *JobController) ListAllJobs(c *fiber.Ctx) error {
	return jc.listJobs(c, true)
}

func (jc *JobController) GetJob(c *fiber.Ctx) error {
	job, err := jc.findJob(c)
	if err != nil {
		return lookupError(c, err, "Job")
	}
	return c.JSON(job)
}

func (jc *JobController) CreateJob(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	job := models.Job{
		Title:          strings.TrimSpace(req.Title),
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    req.Description,
		Requirements:   datatypes.JSONSlice[string](nonNilStrings(req.Requirements)),
		IsActive:       true,
	}
	if err := jc.DB.WithContext(c.UserContext()).Create(&job).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create job", err)
	}
	// default:true swallows an explicit false on insert.
	if req.IsActive != nil && !*req.IsActive {
		if err := jc.DB.WithContext(c.UserContext()).Model(&job).Update("is_active", false).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create job", err)
		}
		job.IsActive = false
	}

	if jc.Publisher != nil {
		jc.Publisher.Publish(notifications.ItemFromJob(&job))
	}
	utils.LogEvent(jc.Logger, "job_created", map[string]interface{}{"job_id": job.ID})
	return c.Status(fiber.StatusCreated).JSON(job)
}

func (jc *JobController) UpdateJob(c *fiber.Ctx) error {
	job, err := jc.findJob(c)
	if err != nil {
		return lookupError(c, err, "Job")
	}

	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	updates := map[string]interface{}{
		"title":           strings.TrimSpace(req.Title),
		"department":      req.Department,
		"location":        req.Location,
		"employment_type": req.EmploymentType,
		"description":     req.Description,
		"requirements":    datatypes.JSONSlice[string](nonNilStrings(req.Requirements)),
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := jc.DB.WithContext(c.UserContext()).Model(job).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update job", err)
	}

	if err := jc.DB.WithContext(c.UserContext()).First(job, job.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload job", err)
	}
	return c.JSON(job)
}

func (jc *JobController) DeleteJob(c *fiber.Ctx) error {
	job, err := jc.findJob(c)
	if err != nil {
		return lookupError(c, err, "Job")
	}
	if err := jc.DB.WithContext(c.UserContext()).Delete(job).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete job", err)
	}
	return c.JSON(utils.MessageResponse("Job deleted successfully"))
}

// Apply mails the application to the admin inbox. Nothing is stored, so a
// failed send fails the request.
func (jc *JobController) Apply(c *fiber.Ctx) error {
	job, err := jc.findJob(c)
	if err != nil {
		return lookupError(c, err, "Job")
	}
	if !job.IsActive {
		return utils.ErrorResponse(c, fiber.StatusGone, "This position is no longer open", nil)
	}

	var req struct {
		Name        string `json:"name" validate:"notblank,max=200"`
		Email       string `json:"email" validate:"notblank,mailaddr"`
		Phone       string `json:"phone" validate:"max=40"`
		CoverLetter string `json:"coverLetter" validate:"max=10000"`
		ResumeURL   string `json:"resumeUrl" validate:"omitempty,url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	err = jc.Notifier.SendJobApplication(utils.JobApplicationMail{
		JobTitle:    job.Title,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		ResumeURL:   strings.TrimSpace(req.ResumeURL),
	})
	if err != nil {
		utils.LogError(jc.Logger, "job_application_mail_failed", err, map[string]interface{}{
			"job_id": job.ID,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send application", err)
	}

	return c.JSON(utils.MessageResponse("Application submitted successfully"))
}

func (jc *JobController) findJob(c *fiber.Ctx) (*models.Job, error) {
	id, ok := utils.ParseUint(c.Params("id"))
	if !ok {
		return nil, errInvalidID
	}
	var job models.Job
	if err := jc.DB.WithContext(c.UserContext()).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

var errInvalidID = errors.New("invalid id")

// lookupError answers a failed load of a single resource.
func lookupError(c *fiber.Ctx, err error, resource string) error {
	switch {
	case errors.Is(err, errInvalidID):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid "+strings.ToLower(resource)+" ID", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, resource+" not found", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch "+strings.ToLower(resource), err)
	}
}

func nonNilStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
