package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job is an open position shown on the careers page.
type Job struct {
	gorm.Model
	Title          string                      `gorm:"not null" json:"title"`
	Department     string                      `json:"department"`
	Location       string                      `json:"location"`
	EmploymentType string                      `json:"employmentType"` // full-time, part-time, contract, internship
	Description    string                      `gorm:"type:text" json:"description"`
	Requirements   datatypes.JSONSlice[string] `json:"requirements"`
	IsActive       bool                        `gorm:"default:true" json:"isActive"`
}

// Blog is a published article.
type Blog struct {
	gorm.Model
	Title         string                      `gorm:"not null" json:"title"`
	Slug          string                      `gorm:"uniqueIndex;not null" json:"slug"`
	Author        string                      `json:"author"`
	Excerpt       string                      `json:"excerpt"`
	Content       string                      `gorm:"type:text" json:"content"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	CoverImageURL string                      `json:"coverImageUrl"`
	Published     bool                        `gorm:"default:true" json:"published"`
}
