package models

import (
	"net/mail"
	"strings"
	"time"

	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
)

// User is an account that can authenticate against the API.
//
// Invariants:
//   - Email is a syntactically valid address, stored lowercased
//   - Role is one of the known roles
//   - PasswordHash is a bcrypt hash and never serialized
type User struct {
	ID           id.UserID     `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	Role         id.Role       `json:"role"`
	CompanyID    *id.CompanyID `json:"companyId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func NewUser(userID id.UserID, email, name, passwordHash string, role id.Role, companyID *id.CompanyID, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "email must be a valid email")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	return &User{
		ID:           userID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyID:    companyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CompanyOrNil returns the company ID, or the nil ID when unattached.
func (u *User) CompanyOrNil() id.CompanyID {
	if u.CompanyID == nil {
		return id.CompanyID{}
	}
	return *u.CompanyID
}

// TokenPair is returned by login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         *User  `json:"user"`
}

// Registration carries the fields of a self-service sign-up.
type Registration struct {
	Email     string
	Password  string
	Name      string
	CompanyID id.CompanyID
}
