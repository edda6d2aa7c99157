package services

import (
	"context"
	"fmt"
	"time"

	"agencysite/models"

	"gorm.io/gorm"
)

const chartMonths = 6

type TimeSeriesData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
}

type DashboardStats struct {
	InquiriesBySource map[models.InquirySource]int64 `json:"inquiriesBySource"`
	ContactByStatus   map[string]int64               `json:"contactByStatus"`
	UnreadInquiries   int64                          `json:"unreadInquiries"`
	TotalInquiries    int64                          `json:"totalInquiries"`
	Jobs              int64                          `json:"jobs"`
	ActiveJobs        int64                          `json:"activeJobs"`
	Blogs             int64                          `json:"blogs"`
	Monthly           TimeSeriesData                 `json:"monthly"`
}

var chartColors = map[models.InquirySource]string{
	models.SourceContact:     "#3498db",
	models.SourceMedia:       "#e67e22",
	models.SourceBlogContact: "#9b59b6",
	models.SourceATL:         "#2ecc71",
	models.SourceBTL:         "#e74c3c",
	models.SourceTTL:         "#1abc9c",
}

var chartOrder = []models.InquirySource{
	models.SourceContact,
	models.SourceMedia,
	models.SourceBlogContact,
	models.SourceATL,
	models.SourceBTL,
	models.SourceTTL,
}

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// Stats is a read-only view over the stored inquiries, jobs and blogs.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{
		InquiriesBySource: make(map[models.InquirySource]int64, len(chartOrder)),
		ContactByStatus:   make(map[string]int64, len(models.InquiryStatuses)),
	}

	var bySource []struct {
		Source models.InquirySource
		Count  int64
	}
	if err := db.Model(&models.Inquiry{}).Select("source, COUNT(*) AS count").Group("source").Scan(&bySource).Error; err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}
	for _, src := range chartOrder {
		stats.InquiriesBySource[src] = 0
	}
	for _, row := range bySource {
		stats.InquiriesBySource[row.Source] = row.Count
		stats.TotalInquiries += row.Count
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.Inquiry{}).
		Select("status, COUNT(*) AS count").
		Where("source = ?", models.SourceContact).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	for _, status := range models.InquiryStatuses {
		stats.ContactByStatus[status] = 0
	}
	for _, row := range byStatus {
		stats.ContactByStatus[row.Status] = row.Count
	}
	stats.UnreadInquiries = stats.ContactByStatus[models.StatusUnread]

	if err := db.Model(&models.Job{}).Count(&stats.Jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if err := db.Model(&models.Job{}).Where("is_active = ?", true).Count(&stats.ActiveJobs).Error; err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}
	if err := db.Model(&models.Blog{}).Count(&stats.Blogs).Error; err != nil {
		return nil, fmt.Errorf("failed to count blogs: %w", err)
	}

	monthly, err := s.monthly(db)
	if err != nil {
		return nil, err
	}
	stats.Monthly = monthly
	return stats, nil
}

// monthly buckets the last chartMonths calendar months, oldest first, with
// one dataset per source. Bucketing happens here so the query stays portable
// between postgres and sqlite.
func (s *DashboardService) monthly(db *gorm.DB) (TimeSeriesData, error) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(chartMonths - 1), 0)

	var rows []struct {
		Source    models.InquirySource
		CreatedAt time.Time
	}
	err := db.Model(&models.Inquiry{}).
		Select("source, created_at").
		Where("created_at >= ?", first).
		Scan(&rows).Error
	if err != nil {
		return TimeSeriesData{}, fmt.Errorf("failed to load monthly inquiries: %w", err)
	}

	labels := make([]string, chartMonths)
	index := make(map[string]int, chartMonths)
	for i := 0; i < chartMonths; i++ {
		month := first.AddDate(0, i, 0)
		labels[i] = month.Format("Jan 2006")
		index[month.Format("2006-01")] = i
	}

	counts := make(map[models.InquirySource][]float64, len(chartOrder))
	for _, src := range chartOrder {
		counts[src] = make([]float64, chartMonths)
	}
	for _, row := range rows {
		i, ok := index[row.CreatedAt.In(now.Location()).Format("2006-01")]
		if !ok {
			continue
		}
		if _, known := counts[row.Source]; known {
			counts[row.Source][i]++
		}
	}

	datasets := make([]Dataset, 0, len(chartOrder))
	for _, src := range chartOrder {
		datasets = append(datasets, Dataset{
			Label:           string(src),
			Data:            counts[src],
			BorderColor:     chartColors[src],
			BackgroundColor: chartColors[src] + "33",
		})
	}
	return TimeSeriesData{Labels: labels, Datasets: datasets}, nil
}
