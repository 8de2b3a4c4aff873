// Package identity maps external identity assertions to local user
// records, tolerating concurrent first-contact races.
package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/store"
)

type Service struct {
	users store.UserStore
	log   *zap.Logger
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(users store.UserStore, opts ...Option) *Service {
	s := &Service{users: users, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindOrCreate resolves an external identity to a local user, creating
// one on first sight. First-write-wins: a later call with a different
// email does not touch the stored row. A unique-violation on create
// means a concurrent caller won the race; one re-lookup resolves it.
func (s *Service) FindOrCreate(ctx context.Context, externalID, email string) (store.User, error) {
	u, err := s.users.GetByExternalID(ctx, externalID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, err
	}

	u, err = s.users.Create(ctx, store.CreateUserParams{ExternalID: externalID, Email: email})
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return store.User{}, err
	}

	// Single retry, not a loop. A miss here means the store lost a row
	// it just refused to duplicate.
	u, err = s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Error("user missing after create conflict",
				zap.String("external_id", externalID), zap.String("email", email))
			return store.User{}, fmt.Errorf("identity store inconsistent for external id %q", externalID)
		}
		return store.User{}, err
	}
	return u, nil
}

type UpdateProfileParams struct {
	Username  *string
	AvatarURL store.Optional[string]
}

// UpdateProfile applies the supplied profile fields. Usernames are
// claimed first-come: a name held by another user is a validation
// failure, with the store's unique constraint as the race backstop.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p UpdateProfileParams) (store.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return store.User{}, err
	}

	if p.Username != nil {
		other, err := s.users.GetByUsername(ctx, *p.Username)
		if err == nil && other.ID != userID {
			return store.User{}, store.Validationf("username %q is already taken", *p.Username)
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return store.User{}, err
		}
	}

	u, err := s.users.Update(ctx, userID, store.UpdateUserParams{
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.User{}, store.Validationf("username is already taken")
		}
		return store.User{}, err
	}
	return u, nil
}
