// Package storetest is a behavioural test suite every store driver runs.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated, empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the store.Accounts contract against a driver.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("create and get", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("duplicate username or email", func(t *testing.T) { testDuplicates(t, newStore(t)) })
	t.Run("lookup by username or email", func(t *testing.T) { testLookup(t, newStore(t)) })
	t.Run("updates", func(t *testing.T) { testUpdates(t, newStore(t)) })
	t.Run("missing account", func(t *testing.T) { testMissing(t, newStore(t)) })
	t.Run("refresh slot", func(t *testing.T) { testRefreshSlot(t, newStore(t)) })
	t.Run("concurrent swaps", func(t *testing.T) { testConcurrentSwap(t, newStore(t)) })
}

func seed(t *testing.T, s store.Store, username, email string) domain.Account {
	t.Helper()

	a, err := s.Accounts().Create(context.Background(), domain.Account{
		Username:     username,
		Email:        email,
		FullName:     "Test " + username,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpla",
		AvatarURL:    "http://media.test/" + username + ".png",
	})
	require.NoError(t, err)
	return a
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.Accounts().Create(ctx, domain.Account{
		Username:      "alice",
		Email:         "alice@example.com",
		FullName:      "Alice Liddell",
		PasswordHash:  "hash",
		AvatarURL:     "http://media.test/a.png",
		CoverImageURL: "http://media.test/c.png",
		WatchHistory:  []string{"video-1", "video-2"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := s.Accounts().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, "Alice Liddell", got.FullName)
	require.Equal(t, "hash", got.PasswordHash)
	require.Equal(t, "http://media.test/a.png", got.AvatarURL)
	require.Equal(t, "http://media.test/c.png", got.CoverImageURL)
	require.Empty(t, got.RefreshTokenHash)
	require.Equal(t, []string{"video-1", "video-2"}, got.WatchHistory)
	require.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)

	byName, err := s.Accounts().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	empty := seed(t, s, "bob", "bob@example.com")
	got, err = s.Accounts().GetByID(ctx, empty.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WatchHistory)
	require.Empty(t, got.WatchHistory)
}

func testDuplicates(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s, "alice", "alice@example.com")

	_, err := s.Accounts().Create(ctx, domain.Account{
		Username: "alice", Email: "other@example.com", FullName: "x", PasswordHash: "x", AvatarURL: "x",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Accounts().Create(ctx, domain.Account{
		Username: "other", Email: "alice@example.com", FullName: "x", PasswordHash: "x", AvatarURL: "x",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	bob := seed(t, s, "bob", "bob@example.com")
	err = s.Accounts().UpdateDetails(ctx, bob.ID, "Bob", "alice@example.com")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := seed(t, s, "alice", "alice@example.com")
	bob := seed(t, s, "bob", "bob@example.com")

	got, err := s.Accounts().GetByUsernameOrEmail(ctx, "alice", "")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	got, err = s.Accounts().GetByUsernameOrEmail(ctx, "", "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, bob.ID, got.ID)

	got, err = s.Accounts().GetByUsernameOrEmail(ctx, "nobody", "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, bob.ID, got.ID)

	_, err = s.Accounts().GetByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetByUsernameOrEmail(ctx, "", "")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seed(t, s, "alice", "alice@example.com")

	require.NoError(t, s.Accounts().UpdateDetails(ctx, a.ID, "Alice L", "liddell@example.com"))
	require.NoError(t, s.Accounts().UpdateAvatar(ctx, a.ID, "http://media.test/new.png"))
	require.NoError(t, s.Accounts().UpdateCoverImage(ctx, a.ID, "http://media.test/cover.png"))
	require.NoError(t, s.Accounts().UpdatePasswordHash(ctx, a.ID, "new-hash"))

	got, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice L", got.FullName)
	require.Equal(t, "liddell@example.com", got.Email)
	require.Equal(t, "http://media.test/new.png", got.AvatarURL)
	require.Equal(t, "http://media.test/cover.png", got.CoverImageURL)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Equal(t, "alice", got.Username)
	require.False(t, got.UpdatedAt.Before(a.UpdatedAt))
}

func testMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	const id = "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"

	_, err := s.Accounts().GetByID(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Accounts().UpdateAvatar(ctx, id, "x"), store.ErrNotFound)
	require.ErrorIs(t, s.Accounts().UpdateDetails(ctx, id, "x", "x@example.com"), store.ErrNotFound)
	require.ErrorIs(t, s.Accounts().SetRefreshToken(ctx, id, "x"), store.ErrNotFound)
	require.ErrorIs(t, s.Accounts().SwapRefreshToken(ctx, id, "x", "y"), store.ErrStale)
}

func testRefreshSlot(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seed(t, s, "alice", "alice@example.com")

	// Nothing to swap from an empty slot.
	require.ErrorIs(t, s.Accounts().SwapRefreshToken(ctx, a.ID, "", "first"), store.ErrStale)

	require.NoError(t, s.Accounts().SetRefreshToken(ctx, a.ID, "first"))
	require.ErrorIs(t, s.Accounts().SwapRefreshToken(ctx, a.ID, "wrong", "second"), store.ErrStale)
	require.NoError(t, s.Accounts().SwapRefreshToken(ctx, a.ID, "first", "second"))
	require.ErrorIs(t, s.Accounts().SwapRefreshToken(ctx, a.ID, "first", "third"), store.ErrStale)

	got, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "second", got.RefreshTokenHash)

	require.NoError(t, s.Accounts().SetRefreshToken(ctx, a.ID, ""))
	got, err = s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, got.RefreshTokenHash)
}

func testConcurrentSwap(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seed(t, s, "alice", "alice@example.com")
	require.NoError(t, s.Accounts().SetRefreshToken(ctx, a.ID, "current"))

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Accounts().SwapRefreshToken(ctx, a.ID, "current", string(rune('a'+i)))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, store.ErrStale)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}
