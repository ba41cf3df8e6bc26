package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record of a state-changing action.
type AuditLog struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID      `gorm:"not null;index" json:"org_id"`
	ActorUserID *snowflake.ID     `gorm:"index" json:"actor_user_id,omitempty"`
	Action      string            `gorm:"type:text;not null;index" json:"action"`
	Resource    string            `gorm:"type:text;not null" json:"resource"`
	ResourceID  string            `gorm:"type:text;not null" json:"resource_id"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
