package service

import (
	"context"

	"github.com/astauriabidco-maker/fle-expert/internal/audit/domain"
	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) WithTx(tx *gorm.DB) domain.Service {
	clone := *s
	clone.db = tx
	return &clone
}

// AuditLog appends a record. Failures are surfaced to the caller, which may
// choose to log-and-continue; the trail itself is never updated or deleted.
func (s *Service) AuditLog(ctx context.Context, orgID snowflake.ID, actorUserID *snowflake.ID, action, resource, resourceID string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	record := domain.AuditLog{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		ActorUserID: actorUserID,
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		Metadata:    datatypes.JSONMap(metadata),
		CreatedAt:   s.clock.Now(),
	}
	return s.db.WithContext(ctx).Create(&record).Error
}
