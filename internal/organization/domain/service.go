package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
}

type CreateOrganizationRequest struct {
	Name           string
	InitialCredits int64
}

type CreateUserRequest struct {
	OrgID    snowflake.ID
	FullName string
	Email    string
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("organization_not_found")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrSlugTaken           = errors.New("organization_slug_taken")
	ErrEmailTaken          = errors.New("email_taken")
)
