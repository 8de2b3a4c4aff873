package store

import (
	"context"
	"time"
)

// User is a local identity record derived from an external identity
// assertion. ExternalID is the provider's stable subject key.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Username   *string   `json:"username,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateUserParams struct {
	ExternalID string
	Email      string
}

// UpdateUserParams applies partial profile updates; AvatarURL carries
// the absent/null distinction so a null clears the stored value.
type UpdateUserParams struct {
	Username  *string
	AvatarURL Optional[string]
}

// UserStore persists users under unique external_id, email and
// username constraints. Create returns ErrConflict on any of them.
type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, p CreateUserParams) (User, error)
	Update(ctx context.Context, id string, p UpdateUserParams) (User, error)
}
