// internal/app/services/accounts/service.go
package accounts

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/apperr"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgBadCredentials  = "Invalid email or password"
	msgEmailTaken      = "An account with this email already exists"
	msgUserNotFound    = "User not found"
	msgCurrentRequired = "Current password is required."
	msgCurrentWrong    = "Current password is incorrect"
)

// Failure reasons carried by LoginFailure.
const (
	ReasonUnknownEmail  = "user_not_found"
	ReasonWrongPassword = "wrong_password"
)

type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
}

// Credentials hashes passwords and issues bearer tokens.
type Credentials interface {
	HashPassword(pw string) (string, error)
	CheckPassword(hash, pw string) bool
	Issue(userID primitive.ObjectID) (string, error)
}

type Service struct {
	users UserStore
	creds Credentials
}

func New(users UserStore, creds Credentials) *Service {
	return &Service{users: users, creds: creds}
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// LoginFailure is returned by Login for bad credentials. It unwraps to an
// Auth error with a single message for both reasons.
type LoginFailure struct {
	Reason string
	Email  string
	UserID primitive.ObjectID
}

func (f *LoginFailure) Error() string { return "login failed: " + f.Reason }
func (f *LoginFailure) Unwrap() error { return apperr.AuthErr(msgBadCredentials) }

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
}

// Signup creates an account and returns a token for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Email = normalize.Email(in.Email)
	if err := inputval.Validate(in).Err(); err != nil {
		return AuthResult{}, err
	}
	hash, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, models.User{Name: in.Name, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return AuthResult{}, apperr.ConflictErr(msgEmailTaken)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(u)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// Login verifies credentials. Bad credentials yield a *LoginFailure.
func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalize.Email(in.Email)
	if err := inputval.Validate(in).Err(); err != nil {
		return AuthResult{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return AuthResult{}, &LoginFailure{Reason: ReasonUnknownEmail, Email: in.Email}
		}
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !s.creds.CheckPassword(u.PasswordHash, in.Password) {
		return AuthResult{}, &LoginFailure{Reason: ReasonWrongPassword, Email: in.Email, UserID: u.ID}
	}
	return s.issue(u)
}

func (s *Service) issue(u models.User) (AuthResult, error) {
	tok, err := s.creds.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Token: tok, User: u.Summary()}, nil
}

// Profile returns the caller's public identity.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (models.UserSummary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.UserSummary{}, apperr.NotFoundErr(msgUserNotFound)
		}
		return models.UserSummary{}, fmt.Errorf("load user: %w", err)
	}
	return u.Summary(), nil
}

// UpdateProfileInput changes the name and/or password. A new password
// requires the current one.
type UpdateProfileInput struct {
	Name            *string `json:"name" validate:"omitempty,max=100" label:"Name"`
	CurrentPassword string  `json:"currentPassword" label:"Current password"`
	NewPassword     string  `json:"newPassword" validate:"omitempty,min=6,max=72" label:"New password"`
}

// UpdateProfile applies in and reports whether the password changed.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (models.UserSummary, bool, error) {
	if in.Name != nil {
		n := normalize.Name(htmlsanitize.PlainText(*in.Name))
		if n == "" {
			return models.UserSummary{}, false, apperr.ValidationErr("Name is required.")
		}
		in.Name = &n
	}
	if err := inputval.Validate(in).Err(); err != nil {
		return models.UserSummary{}, false, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.UserSummary{}, false, apperr.NotFoundErr(msgUserNotFound)
		}
		return models.UserSummary{}, false, fmt.Errorf("load user: %w", err)
	}

	changedPassword := false
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return models.UserSummary{}, false, apperr.ValidationErr(msgCurrentRequired)
		}
		if !s.creds.CheckPassword(u.PasswordHash, in.CurrentPassword) {
			return models.UserSummary{}, false, apperr.AuthErr(msgCurrentWrong)
		}
		hash, err := s.creds.HashPassword(in.NewPassword)
		if err != nil {
			return models.UserSummary{}, false, fmt.Errorf("hash password: %w", err)
		}
		if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
			return models.UserSummary{}, false, fmt.Errorf("update password: %w", err)
		}
		changedPassword = true
	}
	if in.Name != nil && *in.Name != u.Name {
		if err := s.users.UpdateName(ctx, userID, *in.Name); err != nil {
			return models.UserSummary{}, false, fmt.Errorf("update name: %w", err)
		}
		u.Name = *in.Name
	}
	return u.Summary(), changedPassword, nil
}
