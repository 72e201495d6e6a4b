package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

// Credentials hashes passwords and issues and verifies bearer tokens.
type Credentials interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	Issue(email string, role model.Role) (string, error)
	Parse(raw string) (model.Identity, error)
}

var ErrBadToken = &Error{KindUnauthorized, "invalid token"}

// Accounts runs signup and login.
type Accounts struct {
	users store.Users
	creds Credentials
}

func NewAccounts(users store.Users, creds Credentials) *Accounts {
	return &Accounts{users: users, creds: creds}
}

type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type LoginResult struct {
	Token string     `json:"token"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (a *Accounts) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("email and password required")
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("role must be USER or ADMIN")
	}

	if _, err := a.users.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user by email: %w", err)
	}

	hash, err := a.creds.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		// unique index caught a concurrent signup
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (a *Accounts) Login(ctx context.Context, email, pw string) (*LoginResult, error) {
	u, err := a.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	if !a.creds.Verify(u.PasswordHash, pw) {
		return nil, ErrInvalidCredentials
	}

	tok, err := a.creds.Issue(u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, Email: u.Email, Role: u.Role}, nil
}

// EnsureAdmin registers an ADMIN account unless the email is already taken.
// It reports whether an account was created.
func (a *Accounts) EnsureAdmin(ctx context.Context, email, pw, name string) (bool, error) {
	_, err := a.Signup(ctx, SignupRequest{Name: name, Email: email, Password: pw, Role: model.RoleAdmin})
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Identify resolves a bearer token to the caller's identity.
func (a *Accounts) Identify(raw string) (model.Identity, error) {
	if raw == "" {
		return model.Identity{}, ErrBadToken
	}
	id, err := a.creds.Parse(raw)
	if err != nil {
		return model.Identity{}, ErrBadToken
	}
	return id, nil
}
