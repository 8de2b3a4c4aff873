package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/movie-platform/internal/store"
)

func TestFindOrCreate_CreatesOnFirstSight(t *testing.T) {
	svc := NewService(store.NewInMemoryUserStore())
	ctx := context.Background()

	u, err := svc.FindOrCreate(ctx, "auth0|abc", "a@example.com")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty user id")
	}
	if u.ExternalID != "auth0|abc" {
		t.Fatalf("expected external id kept, got %q", u.ExternalID)
	}

	again, err := svc.FindOrCreate(ctx, "auth0|abc", "a@example.com")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if again.ID != u.ID {
		t.Fatalf("expected same user on repeat, got %s vs %s", again.ID, u.ID)
	}
}

func TestFindOrCreate_FirstWriteWinsOnEmail(t *testing.T) {
	svc := NewService(store.NewInMemoryUserStore())
	ctx := context.Background()

	u, _ := svc.FindOrCreate(ctx, "auth0|abc", "a@example.com")
	again, err := svc.FindOrCreate(ctx, "auth0|abc", "changed@example.com")
	if err != nil {
		t.Fatalf("repeat with new email: %v", err)
	}
	if again.Email != u.Email {
		t.Fatalf("expected stored email untouched, got %q", again.Email)
	}
}

func TestFindOrCreate_ConcurrentFirstContact(t *testing.T) {
	users := store.NewInMemoryUserStore()
	svc := NewService(users)
	ctx := context.Background()

	const callers = 8
	results := make([]store.User, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.FindOrCreate(ctx, "auth0|race", "race@example.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Fatalf("expected all callers to resolve the same user, got %s vs %s", results[i].ID, results[0].ID)
		}
	}
}

// vanishingStore loses the row between the conflict and the re-lookup,
// simulating storage inconsistency.
type vanishingStore struct {
	store.UserStore
}

func (v vanishingStore) GetByExternalID(context.Context, string) (store.User, error) {
	return store.User{}, store.ErrNotFound
}

func (v vanishingStore) Create(context.Context, store.CreateUserParams) (store.User, error) {
	return store.User{}, store.ErrConflict
}

func TestFindOrCreate_RetryMissIsFatal(t *testing.T) {
	svc := NewService(vanishingStore{UserStore: store.NewInMemoryUserStore()})

	_, err := svc.FindOrCreate(context.Background(), "auth0|ghost", "g@example.com")
	if err == nil {
		t.Fatal("expected error for inconsistent store")
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected a distinct fatal error, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	users := store.NewInMemoryUserStore()
	svc := NewService(users)
	ctx := context.Background()

	a, _ := svc.FindOrCreate(ctx, "auth0|a", "a@example.com")
	b, _ := svc.FindOrCreate(ctx, "auth0|b", "b@example.com")

	name := "moviefan"
	updated, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileParams{Username: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Username == nil || *updated.Username != name {
		t.Fatalf("expected username set, got %v", updated.Username)
	}

	if _, err := svc.UpdateProfile(ctx, b.ID, UpdateProfileParams{Username: &name}); !store.IsValidation(err) {
		t.Fatalf("expected validation error for taken username, got %v", err)
	}

	// Re-claiming your own username is not a conflict.
	if _, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileParams{Username: &name}); err != nil {
		t.Fatalf("self re-claim: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, "missing", UpdateProfileParams{Username: &name}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	url := "https://cdn.example.com/a.png"
	withAvatar, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileParams{AvatarURL: store.Some(url)})
	if err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if withAvatar.AvatarURL == nil || *withAvatar.AvatarURL != url {
		t.Fatalf("expected avatar set, got %v", withAvatar.AvatarURL)
	}
	cleared, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileParams{AvatarURL: store.Null[string]()})
	if err != nil {
		t.Fatalf("clear avatar: %v", err)
	}
	if cleared.AvatarURL != nil {
		t.Fatalf("expected avatar cleared, got %q", *cleared.AvatarURL)
	}
}
