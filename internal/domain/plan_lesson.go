package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson status transitions are monotonic forward, except the explicit
// retry reset (skipped -> pending).
const (
	LessonStatusPending    = "pending"
	LessonStatusInProgress = "in_progress"
	LessonStatusCompleted  = "completed"
	LessonStatusSkipped    = "skipped"
)

type PlanLesson struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"plan_id"`
	Plan         *Plan          `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	DayIndex     int            `gorm:"column:day_index;not null" json:"day_index"`
	Date         time.Time      `gorm:"column:date;type:date;not null;index" json:"date"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Description  string         `gorm:"column:description" json:"description"`
	PrimaryTopic string         `gorm:"column:primary_topic" json:"primary_topic"`
	Status       string         `gorm:"column:status;not null;index" json:"status"` // pending|in_progress|completed|skipped
	Tags         datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	Meta         datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlanLesson) TableName() string { return "plan_lesson" }
