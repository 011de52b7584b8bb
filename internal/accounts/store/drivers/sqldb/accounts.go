package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/pkg/idx"
)

const accountColumns = "id, username, email, full_name, password_hash, avatar_url, " +
	"cover_image_url, refresh_token_hash, watch_history, created_at, updated_at"

// Accounts implements store.Accounts over database/sql.
type Accounts struct {
	db *sql.DB
	d  Dialect

	now func() time.Time
}

func NewAccounts(db *sql.DB, d Dialect) *Accounts {
	return &Accounts{db: db, d: d, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

var _ store.Accounts = (*Accounts)(nil)

func (r *Accounts) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.ID == "" {
		a.ID = idx.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	if a.WatchHistory == nil {
		a.WatchHistory = []string{}
	}

	history, err := json.Marshal(a.WatchHistory)
	if err != nil {
		return domain.Account{}, fmt.Errorf("encode watch history: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.d.Rebind(`INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.Username, a.Email, a.FullName, a.PasswordHash, a.AvatarURL,
		a.CoverImageURL, a.RefreshTokenHash, string(history), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, r.d.mapWriteErr(err)
	}
	return a, nil
}

func (r *Accounts) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *Accounts) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getOne(ctx, `WHERE username = ?`, username)
}

func (r *Accounts) GetByUsernameOrEmail(ctx context.Context, username, email string) (domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	if username != "" {
		conds = append(conds, "username = ?")
		args = append(args, username)
	}
	if email != "" {
		conds = append(conds, "email = ?")
		args = append(args, email)
	}
	if len(conds) == 0 {
		return domain.Account{}, store.ErrNotFound
	}

	return r.getOne(ctx, `WHERE `+strings.Join(conds, " OR ")+` ORDER BY created_at LIMIT 1`, args...)
}

func (r *Accounts) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(
		`UPDATE accounts SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`),
		fullName, email, r.now(), id,
	)
	if err != nil {
		return r.d.mapWriteErr(err)
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *Accounts) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.setColumn(ctx, "avatar_url", id, url)
}

func (r *Accounts) UpdateCoverImage(ctx context.Context, id, url string) error {
	return r.setColumn(ctx, "cover_image_url", id, url)
}

func (r *Accounts) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.setColumn(ctx, "password_hash", id, hash)
}

func (r *Accounts) SetRefreshToken(ctx context.Context, id, hash string) error {
	return r.setColumn(ctx, "refresh_token_hash", id, hash)
}

func (r *Accounts) SwapRefreshToken(ctx context.Context, id, expected, next string) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(
		`UPDATE accounts SET refresh_token_hash = ?, updated_at = ?
		WHERE id = ? AND refresh_token_hash = ? AND refresh_token_hash <> ''`),
		next, r.now(), id, expected,
	)
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrStale)
}

// setColumn only ever receives column names from this file.
func (r *Accounts) setColumn(ctx context.Context, column, id, value string) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(
		`UPDATE accounts SET `+column+` = ?, updated_at = ? WHERE id = ?`),
		value, r.now(), id,
	)
	if err != nil {
		return r.d.mapWriteErr(err)
	}
	return expectOne(res, store.ErrNotFound)
}

func (r *Accounts) getOne(ctx context.Context, where string, args ...any) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT `+accountColumns+` FROM accounts `+where), args...)

	var (
		a       domain.Account
		history []byte
	)
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.FullName, &a.PasswordHash, &a.AvatarURL,
		&a.CoverImageURL, &a.RefreshTokenHash, &history, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.WatchHistory = []string{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.WatchHistory); err != nil {
			return domain.Account{}, fmt.Errorf("decode watch history for %s: %w", a.ID, err)
		}
	}
	return a, nil
}
