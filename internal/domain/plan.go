package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusPaused    = "paused"
	PlanStatusCancelled = "cancelled"
)

type Plan struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	StartDate   time.Time      `gorm:"column:start_date;type:date;not null" json:"start_date"`
	EndDate     time.Time      `gorm:"column:end_date;type:date;not null" json:"end_date"`
	LessonsGoal int            `gorm:"column:lessons_goal;not null" json:"lessons_goal"`
	MinutesGoal int            `gorm:"column:minutes_goal;not null" json:"minutes_goal"`
	Status      string         `gorm:"column:status;not null;index" json:"status"` // active|completed|paused|cancelled
	Source      string         `gorm:"column:source" json:"source"`
	Meta        datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "plan" }
