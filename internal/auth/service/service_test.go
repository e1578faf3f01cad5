package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"changepoint/internal/auth/models"
	"changepoint/internal/auth/store/revocation"
	userstore "changepoint/internal/auth/store/user"
	jwttoken "changepoint/internal/jwt_token"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/audit"
	"changepoint/pkg/platform/audit/publisher"
	auditmemory "changepoint/pkg/platform/audit/store/memory"
	"changepoint/pkg/requestcontext"
	"changepoint/pkg/testutil"
)

type stubCompanies map[id.CompanyID]bool

func (c stubCompanies) Exists(_ context.Context, companyID id.CompanyID) (bool, error) {
	return c[companyID], nil
}

type AuthServiceSuite struct {
	suite.Suite
	ctx       context.Context
	users     *userstore.InMemoryUserStore
	trl       *revocation.InMemoryTRL
	jwt       *jwttoken.JWTService
	audit     *auditmemory.InMemoryStore
	companyID id.CompanyID
	service   *Service
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = userstore.NewInMemoryUserStore()
	s.trl = revocation.NewInMemoryTRL()
	s.jwt = jwttoken.NewJWTService("test-key", "changepoint", "changepoint-api")
	s.audit = auditmemory.NewInMemoryStore()
	s.companyID = testutil.NewCompanyID()
	s.service = New(s.users, s.trl, s.jwt, stubCompanies{s.companyID: true},
		WithAuditor(publisher.NewPublisher(s.audit)),
		WithTokenTTLs(15*time.Minute, time.Hour),
		WithBcryptCost(bcrypt.MinCost),
	)
}

func (s *AuthServiceSuite) register(email string) *models.Registration {
	return &models.Registration{Email: email, Password: "password1", Name: "Supplier User", CompanyID: s.companyID}
}

func (s *AuthServiceSuite) TestRegister() {
	s.Run("creates a tier 2 editor in the given company", func() {
		pair, err := s.service.Register(s.ctx, *s.register("new@supplier.test"))
		s.Require().NoError(err)
		s.Equal("Bearer", pair.TokenType)
		s.Equal(int64(900), pair.ExpiresIn)
		s.Equal(id.RoleTier2Editor, pair.User.Role)
		s.Require().NotNil(pair.User.CompanyID)
		s.Equal(s.companyID, *pair.User.CompanyID)

		claims, err := s.jwt.ValidateToken(pair.AccessToken)
		s.Require().NoError(err)
		s.Equal(s.companyID.String(), claims.CompanyID)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.Register(s.ctx, *s.register("dup@supplier.test"))
		s.Require().NoError(err)
		_, err = s.service.Register(s.ctx, *s.register("DUP@supplier.test"))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown company is rejected", func() {
		req := s.register("orphan@supplier.test")
		req.CompanyID = testutil.NewCompanyID()
		_, err := s.service.Register(s.ctx, *req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("short password is rejected", func() {
		req := s.register("short@supplier.test")
		req.Password = "short"
		_, err := s.service.Register(s.ctx, *req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthServiceSuite) TestLogin() {
	_, err := s.service.Register(s.ctx, *s.register("login@supplier.test"))
	s.Require().NoError(err)

	s.Run("valid credentials", func() {
		pair, err := s.service.Login(s.ctx, " Login@Supplier.test ", "password1")
		s.Require().NoError(err)
		s.NotEmpty(pair.AccessToken)
		s.NotEmpty(pair.RefreshToken)
	})

	s.Run("wrong password and unknown email fail identically", func() {
		_, errWrong := s.service.Login(s.ctx, "login@supplier.test", "wrong-pass")
		_, errUnknown := s.service.Login(s.ctx, "nobody@supplier.test", "password1")
		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.Equal(errWrong.Error(), errUnknown.Error())
	})

	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	var failures int
	for _, e := range events {
		if e.Action == audit.EventAuthFailed {
			failures++
		}
	}
	s.Equal(2, failures)
}

func (s *AuthServiceSuite) TestRefreshRotatesToken() {
	pair, err := s.service.Register(s.ctx, *s.register("refresh@supplier.test"))
	s.Require().NoError(err)

	next, err := s.service.Refresh(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)
	s.NotEqual(pair.RefreshToken, next.RefreshToken)

	_, err = s.service.Refresh(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "replayed refresh token must fail")

	_, err = s.service.Refresh(s.ctx, pair.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "access token cannot refresh")
}

func (s *AuthServiceSuite) TestRefreshPicksUpRoleChange() {
	pair, err := s.service.Register(s.ctx, *s.register("promote@supplier.test"))
	s.Require().NoError(err)
	_, err = s.service.SetRole(s.ctx, pair.User.ID, id.RoleTier1Reviewer, nil)
	s.Require().NoError(err)

	next, err := s.service.Refresh(s.ctx, pair.RefreshToken)
	s.Require().NoError(err)
	claims, err := s.jwt.ValidateToken(next.AccessToken)
	s.Require().NoError(err)
	s.Equal(string(id.RoleTier1Reviewer), claims.Role)
}

func (s *AuthServiceSuite) TestLogoutRevokesTokens() {
	pair, err := s.service.Register(s.ctx, *s.register("logout@supplier.test"))
	s.Require().NoError(err)
	accessClaims, err := s.jwt.ValidateToken(pair.AccessToken)
	s.Require().NoError(err)

	ctx := requestcontext.WithActor(s.ctx, pair.User.ID, pair.User.Role, s.companyID)
	ctx = requestcontext.WithTokenID(ctx, accessClaims.ID)
	s.Require().NoError(s.service.Logout(ctx, pair.RefreshToken))

	revoked, err := s.service.IsTokenRevoked(s.ctx, accessClaims.ID)
	s.Require().NoError(err)
	s.True(revoked)

	_, err = s.service.Refresh(s.ctx, pair.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AuthServiceSuite) TestLogoutRejectsForeignRefreshToken() {
	mine, err := s.service.Register(s.ctx, *s.register("mine@supplier.test"))
	s.Require().NoError(err)
	theirs, err := s.service.Register(s.ctx, *s.register("theirs@supplier.test"))
	s.Require().NoError(err)

	ctx := requestcontext.WithActor(s.ctx, mine.User.ID, mine.User.Role, s.companyID)
	err = s.service.Logout(ctx, theirs.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *AuthServiceSuite) TestMe() {
	pair, err := s.service.Register(s.ctx, *s.register("me@supplier.test"))
	s.Require().NoError(err)

	u, err := s.service.Me(requestcontext.WithUserID(s.ctx, pair.User.ID))
	s.Require().NoError(err)
	s.Equal("me@supplier.test", u.Email)

	_, err = s.service.Me(requestcontext.WithUserID(s.ctx, testutil.NewUserID()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AuthServiceSuite) TestSetRole() {
	admin := testutil.NewUserID()
	ctx := requestcontext.WithActor(s.ctx, admin, id.RoleAdmin, id.CompanyID{})

	created, err := s.service.EnsureAdmin(s.ctx, "root@changepoint.test", "password1", "Root")
	s.Require().NoError(err)
	s.True(created)
	rootUser, err := s.users.FindByEmail(s.ctx, "root@changepoint.test")
	s.Require().NoError(err)

	s.Run("tier 2 role needs a company", func() {
		_, err := s.service.SetRole(ctx, rootUser.ID, id.RoleTier2Editor, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("assigns role and company and audits", func() {
		companyID := s.companyID
		updated, err := s.service.SetRole(ctx, rootUser.ID, id.RoleTier2Editor, &companyID)
		s.Require().NoError(err)
		s.Equal(id.RoleTier2Editor, updated.Role)

		events, err := s.audit.ListBySubject(s.ctx, rootUser.ID.String())
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.EventRoleChanged, last.Action)
		s.Equal(string(id.RoleAdmin), last.From)
		s.Equal(string(id.RoleTier2Editor), last.To)
	})

	s.Run("unknown user", func() {
		_, err := s.service.SetRole(ctx, testutil.NewUserID(), id.RoleAdmin, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AuthServiceSuite) TestEnsureAdminIsIdempotent() {
	created, err := s.service.EnsureAdmin(s.ctx, "admin@changepoint.test", "password1", "Admin")
	s.Require().NoError(err)
	s.True(created)

	created, err = s.service.EnsureAdmin(s.ctx, "admin@changepoint.test", "password1", "Admin")
	s.Require().NoError(err)
	s.False(created)
}
