// Package app wires the HTTP handlers and persistence for the coaching API.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/marvinrgb/argue-well-api/app/models"
)

var (
	// ErrUserNotFound is returned when no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrArgumentNotFound is returned when no argument exists for the id.
	ErrArgumentNotFound = errors.New("argument not found")
	// ErrNotOwner is returned when the argument exists but belongs to another
	// user. Existence is checked before ownership, so callers can map the two
	// cases to distinct responses.
	ErrNotOwner = errors.New("argument owned by another user")
)

// Store is the persistence surface the handlers depend on. Production runs
// against Postgres; tests run against an in-memory implementation.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUserUsage(ctx context.Context, userID string, count int, last time.Time) error
	UpdateUserTier(ctx context.Context, userID string, tier models.Tier) error
	UpdateUserTierByStripeCustomer(ctx context.Context, stripeCustomerID string, tier models.Tier) error
	SetStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error

	CreateArgument(ctx context.Context, userID, topic string) (models.Argument, error)
	ListArguments(ctx context.Context, userID string) ([]models.ArgumentSummary, error)
	GetArgument(ctx context.Context, userID, argumentID string) (models.Argument, error)
	UpdateArgument(ctx context.Context, userID, argumentID string, fields models.ArgumentUpdate) (models.Argument, error)
	AppendAnalysis(ctx context.Context, argumentID string, analysis models.Analysis) (models.Analysis, error)
}

var store Store
