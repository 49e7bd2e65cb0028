// Package services contains the server's business logic: registration,
// authentication, token rotation, sign-out and profile lookup.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/shiftdesk/internal/common"
	"github.com/dmitrijs2005/shiftdesk/internal/cryptox"
	"github.com/dmitrijs2005/shiftdesk/internal/dbx"
	"github.com/dmitrijs2005/shiftdesk/internal/logging"
	"github.com/dmitrijs2005/shiftdesk/internal/models"
	"github.com/dmitrijs2005/shiftdesk/internal/server/auth"
	"github.com/dmitrijs2005/shiftdesk/internal/server/config"
	servermodels "github.com/dmitrijs2005/shiftdesk/internal/server/models"
	"github.com/dmitrijs2005/shiftdesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	minPasswordLen = 6
	maxUsernameLen = 64
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is what a successful login, signup or refresh yields.
type AuthResult struct {
	UID string
	TokenPair
}

// RegisterInput is a self-registration. The account is always created as
// staff; supervisors are provisioned in the profile store by an operator.
type RegisterInput struct {
	Username    string
	Password    []byte
	DisplayName string
	Attributes  map[string]string
}

// IdentityService is the remote authentication backend and profile store.
type IdentityService struct {
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewIdentityService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		repomanager:                  m,
		logger:                       logger.With("module", "identity_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates the account and its profile in one transaction and signs
// the new user in. The role defaults to staff.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	profile, err := validateRegistration(in)
	if err != nil {
		return nil, err
	}

	user := &servermodels.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: cryptox.HashPassword(in.Password),
	}
	profile.UID = user.ID

	var pair *TokenPair
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		if err := s.repomanager.Profiles(tx).Create(ctx, profile); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user.ID, tx)
		return genErr
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "registration failed", "username", in.Username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "uid", user.ID, "role", string(profile.Role))
	return &AuthResult{UID: user.ID, TokenPair: *pair}, nil
}

func validateRegistration(in RegisterInput) (*models.Profile, error) {
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "" || username != in.Username:
		return nil, fmt.Errorf("%w: username must be non-empty without surrounding spaces", common.ErrorValidation)
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return nil, fmt.Errorf("%w: username is longer than %d characters", common.ErrorValidation, maxUsernameLen)
	case len(in.Password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d bytes", common.ErrorValidation, minPasswordLen)
	case strings.TrimSpace(in.DisplayName) == "":
		return nil, fmt.Errorf("%w: display name is required", common.ErrorValidation)
	}

	var attrs map[string]string
	if len(in.Attributes) > 0 {
		attrs = make(map[string]string, len(in.Attributes))
		for k, v := range in.Attributes {
			attrs[k] = v
		}
	}
	return &models.Profile{DisplayName: strings.TrimSpace(in.DisplayName), Role: models.RoleStaff, Attributes: attrs}, nil
}

// dummyHash is verified against when the username is unknown so that both
// paths cost one argon2 derivation.
var dummyHash = sync.OnceValue(func() string {
	return cryptox.HashPassword([]byte("shiftdesk-dummy"))
})

// Authenticate verifies the password and returns a fresh token pair.
// Unknown users and wrong passwords both yield common.ErrorUnauthorized.
func (s *IdentityService) Authenticate(ctx context.Context, username string, password []byte) (*AuthResult, error) {
	db := s.repomanager.DB()
	user, err := s.repomanager.Users(db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(dummyHash(), password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unusable", "uid", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, db)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UID: user.ID, TokenPair: *pair}, nil
}

// RefreshToken rotates a refresh token. Unknown tokens yield
// common.ErrorUnauthorized, expired ones common.ErrRefreshTokenExpired.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	db := s.repomanager.DB()
	repo := s.repomanager.RefreshTokens(db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(s.now()) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			s.logger.Warn(ctx, "failed to drop expired refresh token", "error", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return &AuthResult{UID: token.UserID, TokenPair: *pair}, nil
}

// SignOut revokes refreshToken when it belongs to userID, leaving the
// user's other sessions alone. An empty refreshToken revokes every session
// of userID. Unknown or foreign tokens are ignored.
func (s *IdentityService) SignOut(ctx context.Context, userID, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.repomanager.DB())

	if refreshToken == "" {
		n, err := repo.DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error revoking refresh tokens: %w", err)
		}
		s.logger.Info(ctx, "signed out everywhere", "uid", userID, "revoked", n)
		return nil
	}

	rt, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error looking up refresh token: %w", err)
	}
	if rt.UserID != userID {
		s.logger.Warn(ctx, "sign-out with another user's refresh token", "uid", userID)
		return nil
	}
	if err := repo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	s.logger.Info(ctx, "signed out", "uid", userID)
	return nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be redeemed.
func (s *IdentityService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.DB()).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	return n, nil
}

// GetProfile returns common.ErrorNotFound when uid has no profile.
func (s *IdentityService) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", common.ErrorValidation)
	}
	p, err := s.repomanager.Profiles(s.repomanager.DB()).Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return p, nil
}

func (s *IdentityService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
