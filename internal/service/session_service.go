package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

const sessionIssuer = "fomo-portal"

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type userFetcher interface {
	Me(ctx context.Context, src cms.TokenSource) (*models.User, error)
}

// SessionConfig configures session lifetime and cookie signing.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionService owns the server-side visitor session and its signed cookie.
type SessionService struct {
	store     sessionStore
	users     userFetcher
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(store sessionStore, users userFetcher, cfg SessionConfig, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		store:     store,
		users:     users,
		validator: validate,
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TTL,
		logger:    logger,
		now:       time.Now,
	}
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Start stores the CMS token for a visitor. The user is always looked up with
// the token; a supplied user must match it. An existing session is reused and
// reset.
func (s *SessionService) Start(ctx context.Context, existing *models.Session, in models.SessionInput) (*models.Session, error) {
	in.JWT = strings.TrimSpace(in.JWT)
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "jwt is required")
	}

	user, err := s.users.Me(ctx, cms.StaticToken(in.JWT))
	if err != nil {
		return nil, err
	}
	if in.User != nil && in.User.ID != 0 && in.User.ID != user.ID {
		s.logger.Warn("login user does not match token", zap.Int64("claimed_id", in.User.ID), zap.Int64("user_id", user.ID))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user does not match token")
	}

	now := s.now().UTC()
	session := &models.Session{ID: uuid.NewString(), CreatedAt: now}
	if existing != nil && existing.ID != "" {
		session.ID = existing.ID
		session.CreatedAt = existing.CreatedAt
	}
	session.Token = in.JWT
	session.User = user
	session.UpdatedAt = now

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, err
	}
	s.logger.Info("session started", zap.String("session_id", session.ID), zap.Int64("user_id", user.ID))
	return session, nil
}

// Anonymous returns a fresh unsaved session for visitors without a cookie.
func (s *SessionService) Anonymous() *models.Session {
	now := s.now().UTC()
	return &models.Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Load returns the stored session for id.
func (s *SessionService) Load(ctx context.Context, id string) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return s.store.Get(ctx, id)
}

// Save persists session and extends its lifetime.
func (s *SessionService) Save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = s.now().UTC()
	return s.store.Save(ctx, session, s.ttl)
}

// End removes the session.
func (s *SessionService) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.store.Delete(ctx, id)
}

// Viewer summarises the session user for the home page.
func (s *SessionService) Viewer(session *models.Session) models.Viewer {
	if !session.Authenticated() {
		return models.NewViewer(nil)
	}
	user := session.User
	if user == nil {
		user = &models.User{}
	}
	return models.NewViewer(user)
}

// IssueCookie signs a cookie value carrying the session id.
func (s *SessionService) IssueCookie(session *models.Session) (string, error) {
	now := s.now()
	claims := models.SessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session cookie")
	}
	return signed, nil
}

// ParseCookie verifies a cookie value and returns the session id it carries.
func (s *SessionService) ParseCookie(raw string) (string, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		if err == nil {
			err = errors.New("invalid session cookie")
		}
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session cookie")
	}
	if claims.SessionID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "session cookie carries no session")
	}
	return claims.SessionID, nil
}
