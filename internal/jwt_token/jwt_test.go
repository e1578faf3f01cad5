package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var userID = id.UserID(uuid.New())
var companyID = id.CompanyID(uuid.New())
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(userID, id.RoleTier2Editor, companyID, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, string(id.RoleTier2Editor), claims.Role)
	assert.Equal(t, companyID.String(), claims.CompanyID)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(userID, id.RoleAdmin, id.CompanyID{}, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	issued, err := other.GenerateAccessToken(userID, id.RoleAdmin, companyID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_RefreshTokenCannotAuthenticate(t *testing.T) {
	refresh, err := jwtService.GenerateRefreshToken(userID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(refresh.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token type"))

	claims, err := jwtService.ValidateRefreshToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Empty(t, claims.Role)
}

func Test_AccessTokenCannotRefresh(t *testing.T) {
	access, err := jwtService.GenerateAccessToken(userID, id.RoleAdmin, companyID, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateRefreshToken(access.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token type"))
}

func Test_AdapterMapsClaims(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(userID, id.RoleExecApprover, id.CompanyID{}, expiresIn)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, string(id.RoleExecApprover), claims.Role)
	assert.Empty(t, claims.CompanyID)
	assert.Equal(t, issued.JTI, claims.JTI)
}
