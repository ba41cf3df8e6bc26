// Package seed bootstraps the default tenant so a fresh install is usable
// without manual SQL.
package seed

import (
	"context"
	"errors"
	"time"

	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureDefaultOrg creates the default organization when none exists.
func EnsureDefaultOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing orgdomain.Organization
		err := tx.WithContext(ctx).
			Where("slug = ?", defaultOrgSlug).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&orgdomain.Organization{
			ID:        node.Generate(),
			Name:      defaultOrgName,
			Slug:      defaultOrgSlug,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
