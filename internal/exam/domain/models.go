// Package domain contains the exam session state machine models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SessionStatus is the lifecycle state of an exam session.
// Transitions: ASSIGNED -> IN_PROGRESS -> COMPLETED. COMPLETED is terminal.
type SessionStatus string

const (
	StatusAssigned   SessionStatus = "ASSIGNED"
	StatusInProgress SessionStatus = "IN_PROGRESS"
	StatusCompleted  SessionStatus = "COMPLETED"
)

// ExamSession is one candidate attempt. Score, EstimatedLevel, ResultHash
// and CompletedAt are set together, exactly once, when the session reaches
// COMPLETED; they are never mutated afterwards.
type ExamSession struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID  `gorm:"not null;index" json:"user_id"`
	OrgID          snowflake.ID  `gorm:"not null;index" json:"org_id"`
	Status         SessionStatus `gorm:"type:text;not null" json:"status"`
	Score          *int          `gorm:"" json:"score,omitempty"`
	EstimatedLevel *string       `gorm:"type:text" json:"estimated_level,omitempty"`
	ResultHash     *string       `gorm:"type:text;uniqueIndex:ux_exam_sessions_result_hash" json:"result_hash,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt    *time.Time    `gorm:"" json:"completed_at,omitempty"`
}

// TableName sets the database table name.
func (ExamSession) TableName() string { return "exam_sessions" }

// Answer is one graded response. Grading itself belongs to the question
// bank collaborator; the core only consumes correctness.
type Answer struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}
