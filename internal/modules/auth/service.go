package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"devplan/internal/domain"
	"devplan/internal/pkg/apperr"
	"devplan/internal/pkg/password"
	"devplan/internal/repository"

	"go.uber.org/zap"
)

// DefaultRefreshTTL is how long a refresh token stays usable.
const DefaultRefreshTTL = 7 * 24 * time.Hour

const (
	opLogin   = "login"
	opRefresh = "refresh"
	opLogout  = "logout"
)

// Service owns the session lifecycle: login, refresh-token rotation, logout
// and the expiry sweep.
type Service struct {
	users      UserReader
	tokens     RefreshTokenStore
	codec      TokenCodec
	hasher     password.Hasher
	events     EventRecorder
	log        *zap.Logger
	pepper     string
	refreshTTL time.Duration
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithEventRecorder(r EventRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.events = r
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(
	users UserReader,
	tokens RefreshTokenStore,
	codec TokenCodec,
	hasher password.Hasher,
	refreshTokenPepper string,
	refreshTTL time.Duration,
	opts ...Option,
) *Service {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	s := &Service{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		hasher:     hasher,
		events:     nopRecorder{},
		log:        zap.NewNop(),
		pepper:     refreshTokenPepper,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and opens a new session. Any session the user
// already had is closed in the same transaction.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same bcrypt time as a real comparison.
			s.hasher.Compare(req.Password, s.dummyPasswordHash())
			s.events.RecordAuth(opLogin, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}

	if !user.IsActive {
		s.events.RecordAuth(opLogin, "inactive")
		return nil, ErrAccountInactive
	}
	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		s.events.RecordAuth(opLogin, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	var pair TokenPair
	err = s.tokens.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.tokens.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		var err error
		pair, err = s.openSession(ctx, user)
		return err
	})
	if err != nil {
		return nil, internal(err)
	}

	s.events.RecordAuth(opLogin, "success")
	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return &LoginResult{User: user, TokenPair: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed: a second use of the same value fails, including when two
// requests race on it.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*TokenPair, error) {
	if strings.TrimSpace(refreshRaw) == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := hashTokenWithPepper(refreshRaw, s.pepper)
	now := s.now()

	var (
		pair    TokenPair
		outcome error
	)
	err := s.tokens.Transaction(ctx, func(ctx context.Context) error {
		current, err := s.tokens.GetByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		// Expired and inactive cases still commit their deletions.
		if current.IsExpired(now) {
			if _, err := s.tokens.DeleteByHash(ctx, hash); err != nil {
				return err
			}
			outcome = ErrRefreshTokenExpired
			return nil
		}
		if !current.User.IsActive {
			if _, err := s.tokens.DeleteByUser(ctx, current.UserID); err != nil {
				return err
			}
			outcome = ErrAccountInactive
			return nil
		}

		deleted, err := s.tokens.DeleteByHash(ctx, hash)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrInvalidRefreshToken
		}

		pair, err = s.openSession(ctx, current.User)
		return err
	})
	if err != nil {
		s.events.RecordAuth(opRefresh, outcomeLabel(err))
		return nil, internal(err)
	}
	if outcome != nil {
		s.events.RecordAuth(opRefresh, outcomeLabel(outcome))
		return nil, outcome
	}

	s.events.RecordAuth(opRefresh, "success")
	return &pair, nil
}

// Logout forgets the given refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	if strings.TrimSpace(refreshRaw) == "" {
		return nil
	}
	if _, err := s.tokens.DeleteByHash(ctx, hashTokenWithPepper(refreshRaw, s.pepper)); err != nil {
		return apperr.Internal(err)
	}
	s.events.RecordAuth(opLogout, "success")
	return nil
}

// LogoutAll ends every session of userID. Callers may only end their own.
func (s *Service) LogoutAll(ctx context.Context, caller domain.Identity, userID string) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID {
		return ErrForbidden
	}
	n, err := s.tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	s.events.RecordAuth("logout_all", "success")
	s.log.Info("user sessions closed", zap.String("user_id", userID), zap.Int64("count", n))
	return nil
}

// CleanupExpiredTokens deletes refresh tokens that expired before now.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RunCleanup sweeps expired tokens every interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpiredTokens(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("refresh token cleanup failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				s.log.Info("expired refresh tokens removed", zap.Int64("count", n))
			}
		}
	}
}

// openSession issues an access token and persists a fresh refresh token.
// It must run inside the caller's transaction.
func (s *Service) openSession(ctx context.Context, user *domain.User) (TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refreshRaw, err := s.codec.IssueRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	now := s.now().UTC()
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashTokenWithPepper(refreshRaw, s.pepper),
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshRaw}, nil
}

// fallbackDummyHash is a well-formed cost-10 bcrypt hash, used when the
// hasher cannot produce one.
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("devplan-timing-equalizer")
		if err != nil || hash == "" {
			s.log.Error("dummy password hash failed, using fallback", zap.Error(err))
			hash = fallbackDummyHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

// internal keeps typed errors and hides everything else behind a 500.
func internal(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrRefreshTokenExpired):
		return "expired"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	case errors.Is(err, ErrInvalidRefreshToken):
		return "invalid"
	default:
		return "error"
	}
}
