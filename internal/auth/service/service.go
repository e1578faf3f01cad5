package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"changepoint/internal/auth/models"
	jwttoken "changepoint/internal/jwt_token"
	"changepoint/internal/platform/metrics"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/sentinel"
	"changepoint/pkg/requestcontext"
)

const (
	minPasswordLength = 8
	tokenTypeBearer   = "Bearer"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, userID id.UserID, role id.Role, companyID *id.CompanyID) (*models.User, error)
}

// TokenRevocationList records revoked token IDs until they expire.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenIssuer signs and validates access and refresh tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, role id.Role, companyID id.CompanyID, expiresIn time.Duration) (jwttoken.IssuedToken, error)
	GenerateRefreshToken(userID id.UserID, expiresIn time.Duration) (jwttoken.IssuedToken, error)
	ValidateRefreshToken(tokenString string) (*jwttoken.Claims, error)
}

// CompanyLookup answers whether a company exists.
type CompanyLookup interface {
	Exists(ctx context.Context, companyID id.CompanyID) (bool, error)
}

type Service struct {
	users      UserStore
	trl        TokenRevocationList
	tokens     TokenIssuer
	companies  CompanyLookup
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

type Option func(*Service)

func WithAuditor(emitter audit.Emitter) Option {
	return func(s *Service) { s.auditor = emitter }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTokenTTLs(access, refresh time.Duration) Option {
	return func(s *Service) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(users UserStore, trl TokenRevocationList, tokens TokenIssuer, companies CompanyLookup, opts ...Option) *Service {
	s := &Service{
		users:      users,
		trl:        trl,
		tokens:     tokens,
		companies:  companies,
		logger:     slog.Default(),
		accessTTL:  time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a TIER2_EDITOR account attached to an existing company
// and signs it in.
func (s *Service) Register(ctx context.Context, req models.Registration) (*models.TokenPair, error) {
	if len(req.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	exists, err := s.companies.Exists(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeValidation, "company not found")
	}

	companyID := req.CompanyID
	u, err := s.newUser(ctx, req.Email, req.Password, req.Name, id.RoleTier2Editor, &companyID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.emit(ctx, audit.Event{Action: audit.EventUserRegistered, ActorID: u.ID, ActorRole: u.Role, Subject: u.ID.String()})
	return s.issue(u)
}

// Login verifies credentials. Unknown email and wrong password fail
// identically.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.metrics.IncAuthFailure("invalid_credentials")
		s.emit(ctx, audit.Event{Action: audit.EventAuthFailed, Subject: models.NormalizeEmail(email), Reason: "invalid_credentials"})
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	s.emit(ctx, audit.Event{Action: audit.EventUserLoggedIn, ActorID: u.ID, ActorRole: u.Role, Subject: u.ID.String()})
	return s.issue(u)
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.metrics.IncAuthFailure("invalid_refresh_token")
		return nil, err
	}
	revoked, err := s.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		s.metrics.IncAuthFailure("revoked_refresh_token")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := s.revoke(ctx, claims.ID, remaining(ctx, claims)); err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{Action: audit.EventTokenRefreshed, ActorID: u.ID, ActorRole: u.Role, Subject: u.ID.String()})
	return s.issue(u)
}

// Logout revokes the caller's access token and, when given, its refresh
// token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if jti := requestcontext.TokenID(ctx); jti != "" {
		if err := s.revoke(ctx, jti, s.accessTTL); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		claims, err := s.tokens.ValidateRefreshToken(refreshToken)
		if err != nil {
			return err
		}
		if claims.UserID != requestcontext.UserID(ctx).String() {
			return dErrors.New(dErrors.CodeForbidden, "refresh token belongs to another user")
		}
		if err := s.revoke(ctx, claims.ID, remaining(ctx, claims)); err != nil {
			return err
		}
	}
	s.emit(ctx, audit.Event{Action: audit.EventTokenRevoked, Subject: requestcontext.UserID(ctx).String(), Reason: "logout"})
	return nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	u, err := s.users.FindByID(ctx, requestcontext.UserID(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

// SetRole assigns a role and optionally moves the user to another company.
// Company-bound roles need a company.
func (s *Service) SetRole(ctx context.Context, userID id.UserID, role id.Role, companyID *id.CompanyID) (*models.User, error) {
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if companyID != nil {
		exists, err := s.companies.Exists(ctx, *companyID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, dErrors.New(dErrors.CodeValidation, "company not found")
		}
	} else if role == id.RoleTier2Editor && current.CompanyID == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "companyId is required for TIER2_EDITOR")
	}

	updated, err := s.users.UpdateRole(ctx, userID, role, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}
	s.emit(ctx, audit.Event{
		Action:    audit.EventRoleChanged,
		ActorID:   requestcontext.UserID(ctx),
		ActorRole: requestcontext.Role(ctx),
		Subject:   userID.String(),
		From:      string(current.Role),
		To:        string(role),
	})
	return updated, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already taken. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if len(password) < minPasswordLength {
		return false, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	u, err := s.newUser(ctx, email, password, name, id.RoleAdmin, nil)
	if err != nil {
		return false, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
	}
	return true, nil
}

// IsTokenRevoked adapts the revocation list to the auth middleware.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}

func (s *Service) newUser(ctx context.Context, email, password, name string, role id.Role, companyID *id.CompanyID) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return models.NewUser(id.UserID(uuid.New()), email, name, string(hash), role, companyID, requestcontext.Now(ctx))
}

func (s *Service) issue(u *models.User) (*models.TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(u.ID, u.Role, u.CompanyOrNil(), s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	refresh, err := s.tokens.GenerateRefreshToken(u.ID, s.refreshTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign refresh token")
	}
	return &models.TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         u,
	}, nil
}

func (s *Service) revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

// remaining is how long the token stays valid, which is how long its
// revocation must be remembered.
func remaining(ctx context.Context, claims *jwttoken.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(requestcontext.Now(ctx))
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.metrics.IncAuditPublishErrors()
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
}
