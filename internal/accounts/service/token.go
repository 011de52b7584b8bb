package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/pkg/cryptox"
	"github.com/aussiebroadwan/vidtab/pkg/jwtx"
)

var (
	// ErrRefreshReused means the presented refresh token verified but is no
	// longer the one in the account's slot, or lost a concurrent rotation.
	ErrRefreshReused = fmt.Errorf("%w: refresh token is expired or used", jwtx.ErrInvalidToken)

	// ErrUnknownAccount means a well-formed token names an account that no
	// longer exists.
	ErrUnknownAccount = fmt.Errorf("%w: account does not exist", jwtx.ErrInvalidToken)
)

// TokenConfig holds the key material and lifetimes for both token kinds.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService mints, verifies and rotates access/refresh pairs. Access and
// refresh tokens are signed with different secrets so one can never be passed
// off as the other.
type TokenService struct {
	Store store.Store

	AccessSigner    jwtx.Signer
	AccessVerifier  jwtx.Verifier
	RefreshSigner   jwtx.Signer
	RefreshVerifier jwtx.Verifier

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Now func() time.Time
}

// NewTokenService builds HS256 signers and verifiers from cfg.
func NewTokenService(st store.Store, cfg TokenConfig) (*TokenService, error) {
	accessSigner, err := jwtx.NewSignerHS256(cfg.AccessSecret, jwtx.TypeAccess)
	if err != nil {
		return nil, fmt.Errorf("access token signer: %w", err)
	}
	accessVerifier, err := jwtx.NewVerifierHS256(cfg.AccessSecret, cfg.Issuer, jwtx.TypeAccess)
	if err != nil {
		return nil, fmt.Errorf("access token verifier: %w", err)
	}
	refreshSigner, err := jwtx.NewSignerHS256(cfg.RefreshSecret, jwtx.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("refresh token signer: %w", err)
	}
	refreshVerifier, err := jwtx.NewVerifierHS256(cfg.RefreshSecret, cfg.Issuer, jwtx.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("refresh token verifier: %w", err)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	return &TokenService{
		Store:           st,
		AccessSigner:    accessSigner,
		AccessVerifier:  accessVerifier,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier.WithLeeway(5 * time.Second),
		Issuer:          cfg.Issuer,
		AccessTTL:       accessTTL,
		RefreshTTL:      refreshTTL,
		Now:             time.Now,
	}, nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueAccessToken signs a short-lived token carrying the account's profile.
func (s *TokenService) IssueAccessToken(a domain.Account) (string, error) {
	return s.AccessSigner.Sign(jwtx.NewAccessClaims(a.ID, a.Email, a.Username, a.FullName, s.Issuer, s.AccessTTL, s.now()))
}

// IssueRefreshToken signs a long-lived token carrying only the account id.
func (s *TokenService) IssueRefreshToken(a domain.Account) (string, error) {
	return s.RefreshSigner.Sign(jwtx.NewRefreshClaims(a.ID, s.Issuer, s.RefreshTTL, s.now()))
}

// IssuePair mints both tokens and makes the new refresh token the only one
// that can rotate, replacing whatever the slot held before.
func (s *TokenService) IssuePair(ctx context.Context, a domain.Account) (domain.TokenPair, error) {
	pair, err := s.mint(a)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Store.Accounts().SetRefreshToken(ctx, a.ID, cryptox.FingerprintToken(pair.RefreshToken)); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// VerifyAccess checks an access token. Errors match jwtx.ErrExpired or
// jwtx.ErrInvalidToken.
func (s *TokenService) VerifyAccess(token string) (jwtx.Claims, error) {
	return s.AccessVerifier.Verify(token)
}

// VerifyRefresh checks a refresh token's signature and claims only. It does
// not consult the account's slot.
func (s *TokenService) VerifyRefresh(token string) (jwtx.Claims, error) {
	return s.RefreshVerifier.Verify(token)
}

// Rotate exchanges a refresh token for a fresh pair. The presented token must
// verify and must be the one currently in the account's slot. The slot is
// swapped atomically, so when the same token is presented twice at once only
// one caller gets a pair; the other gets ErrRefreshReused.
func (s *TokenService) Rotate(ctx context.Context, presented string) (domain.TokenPair, domain.Account, error) {
	claims, err := s.VerifyRefresh(presented)
	if err != nil {
		return domain.TokenPair{}, domain.Account{}, err
	}

	account, err := s.Store.Accounts().GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, domain.Account{}, ErrUnknownAccount
		}
		return domain.TokenPair{}, domain.Account{}, err
	}

	if !cryptox.FingerprintMatches(presented, account.RefreshTokenHash) {
		return domain.TokenPair{}, domain.Account{}, ErrRefreshReused
	}

	pair, err := s.mint(account)
	if err != nil {
		return domain.TokenPair{}, domain.Account{}, err
	}

	err = s.Store.Accounts().SwapRefreshToken(ctx, account.ID, account.RefreshTokenHash, cryptox.FingerprintToken(pair.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrStale) {
			return domain.TokenPair{}, domain.Account{}, ErrRefreshReused
		}
		return domain.TokenPair{}, domain.Account{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	return pair, account, nil
}

func (s *TokenService) mint(a domain.Account) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(a)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(a)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  s.AccessTTL,
		RefreshExpiresIn: s.RefreshTTL,
	}, nil
}
