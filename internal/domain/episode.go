package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Episode rows are append-only per lesson. A retry regenerates the whole
// lesson and supersedes prior episodes rather than rewriting them.
type Episode struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LessonID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson          *PlanLesson    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderIndex      int            `gorm:"column:order_index;not null" json:"order_index"`
	Type            string         `gorm:"column:type" json:"type"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Body            string         `gorm:"column:body" json:"body"`
	AudioRef        *string        `gorm:"column:audio_ref" json:"audio_ref,omitempty"`
	DurationSeconds *int           `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Meta            datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Episode) TableName() string { return "episode" }
