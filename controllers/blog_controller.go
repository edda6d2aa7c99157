package controller

import (
	"regexp"
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

type BlogController struct {
	DB        *gorm.DB
	Publisher services.Publisher
	Logger    *logrus.Entry
}

func NewBlogController(db *gorm.DB, publisher services.Publisher, logger *logrus.Entry) *BlogController {
	return &BlogController{
		DB:        db,
		Publisher: publisher,
		Logger:    logger,
	}
}

type blogRequest struct {
	Title         string   `json:"title" validate:"notblank,max=300"`
	Slug          string   `json:"slug" validate:"max=300"`
	Author        string   `json:"author" validate:"max=100"`
	Excerpt       string   `json:"excerpt" validate:"max=1000"`
	Content       string   `json:"content" validate:"notblank"`
	Tags          []string `json:"tags"`
	CoverImageURL string   `json:"coverImageUrl" validate:"omitempty,url"`
	Published     *bool    `json:"published"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (bc *BlogController) listBlogs(c *fiber.Ctx, includeDrafts bool) error {
	blogs := []models.Blog{}
	query := bc.DB.WithContext(c.UserContext()).Order("created_at DESC")
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&blogs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch blogs", err)
	}
	return c.JSON(blogs)
}

func (bc *BlogController) ListBlogs(c *fiber.Ctx) error {
	return bc.listBlogs(c, false)
}

func (bc *BlogController) ListAllBlogs(c *fiber.Ctx) error {
	return bc.listBlogs(c, true)
}

func (bc *BlogController) GetBlogBySlug(c *fiber.Ctx) error {
	var blog models.Blog
	err := bc.DB.WithContext(c.UserContext()).
		Where("slug = ? AND published = ?", c.Params("slug"), true).
		First(&blog).Error
	if err != nil {
		return lookupError(c, err, "Blog")
	}
	return c.JSON(blog)
}

func (bc *BlogController) CreateBlog(c *fiber.Ctx) error {
	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "slug is required", nil)
	}
	if taken, err := bc.slugTaken(c, slug, 0); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create blog", err)
	} else if taken {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A blog with this slug already exists", nil)
	}

	blog := models.Blog{
		Title:         strings.TrimSpace(req.Title),
		Slug:          slug,
		Author:        strings.TrimSpace(req.Author),
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Tags:          datatypes.JSONSlice[string](nonNilStrings(req.Tags)),
		CoverImageURL: req.CoverImageURL,
		Published:     true,
	}
	if err := bc.DB.WithContext(c.UserContext()).Create(&blog).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create blog", err)
	}
	if req.Published != nil && !*req.Published {
		if err := bc.DB.WithContext(c.UserContext()).Model(&blog).Update("published", false).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create blog", err)
		}
		blog.Published = false
	}

	if bc.Publisher != nil {
		bc.Publisher.Publish(notifications.ItemFromBlog(&blog))
	}
	utils.LogEvent(bc.Logger, "blog_created", map[string]interface{}{"blog_id": blog.ID, "slug": blog.Slug})
	return c.Status(fiber.StatusCreated).JSON(blog)
}

func (bc *BlogController) UpdateBlog(c *fiber.Ctx) error {
	blog, err := bc.findBlog(c)
	if err != nil {
		return lookupError(c, err, "Blog")
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	updates := map[string]interface{}{
		"title":           strings.TrimSpace(req.Title),
		"author":          strings.TrimSpace(req.Author),
		"excerpt":         req.Excerpt,
		"content":         req.Content,
		"tags":            datatypes.JSONSlice[string](nonNilStrings(req.Tags)),
		"cover_image_url": req.CoverImageURL,
	}
	if slug := Slugify(req.Slug); slug != "" && slug != blog.Slug {
		taken, err := bc.slugTaken(c, slug, blog.ID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update blog", err)
		}
		if taken {
			return utils.ErrorResponse(c, fiber.StatusConflict, "A blog with this slug already exists", nil)
		}
		updates["slug"] = slug
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if err := bc.DB.WithContext(c.UserContext()).Model(blog).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update blog", err)
	}
	if err := bc.DB.WithContext(c.UserContext()).First(blog, blog.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload blog", err)
	}
	return c.JSON(blog)
}

func (bc *BlogController) DeleteBlog(c *fiber.Ctx) error {
	blog, err := bc.findBlog(c)
	if err != nil {
		return lookupError(c, err, "Blog")
	}
	// Hard delete frees the slug for reuse.
	if err := bc.DB.WithContext(c.UserContext()).Unscoped().Delete(blog).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete blog", err)
	}
	return c.JSON(utils.MessageResponse("Blog deleted successfully"))
}

func (bc *BlogController) findBlog(c *fiber.Ctx) (*models.Blog, error) {
	id, ok := utils.ParseUint(c.Params("id"))
	if !ok {
		return nil, errInvalidID
	}
	var blog models.Blog
	if err := bc.DB.WithContext(c.UserContext()).First(&blog, id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (bc *BlogController) slugTaken(c *fiber.Ctx, slug string, exceptID uint) (bool, error) {
	var count int64
	err := bc.DB.WithContext(c.UserContext()).Unscoped().Model(&models.Blog{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	return count > 0, err
}
