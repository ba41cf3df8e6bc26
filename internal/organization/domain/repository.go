package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error)
}
