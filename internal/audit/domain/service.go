package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// WithTx returns a service bound to an open transaction so a trail entry
	// commits or rolls back with the state change it records.
	WithTx(tx *gorm.DB) Service

	AuditLog(ctx context.Context, orgID snowflake.ID, actorUserID *snowflake.ID, action, resource, resourceID string, metadata map[string]any) error
}
