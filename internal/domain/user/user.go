package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired       = errors.New("user: id is required")
	ErrEmailRequired    = errors.New("user: email is required")
	ErrCredentials      = errors.New("user: password hash or google id is required")
	ErrNameRequired     = errors.New("user: name is required")
	ErrInvalidRole      = errors.New("user: invalid role")
	ErrEmailAlreadyUsed = errors.New("user: email already used")
	ErrNotFound         = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           ID
	Email        string
	PasswordHash string
	GoogleID     string
	FirstName    string
	LastName     string
	Avatar       string
	Roles        []Role
	Superhost    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByGoogleID(ctx context.Context, googleID string) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	PasswordHash string
	GoogleID     string
	FirstName    string
	LastName     string
	Avatar       string
	Roles        []Role
	CreatedAt    time.Time
}

// NewUser creates an account backed by a password hash, a Google id, or both.
func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" && strings.TrimSpace(params.GoogleID) == "" {
		return nil, ErrCredentials
	}
	first := strings.TrimSpace(params.FirstName)
	last := strings.TrimSpace(params.LastName)
	if first == "" && last == "" {
		return nil, ErrNameRequired
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	roles, err := normalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleGuest}
	}

	return &User{
		ID:           ID(id),
		Email:        email,
		PasswordHash: params.PasswordHash,
		GoogleID:     strings.TrimSpace(params.GoogleID),
		FirstName:    first,
		LastName:     last,
		Avatar:       strings.TrimSpace(params.Avatar),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Name is the display name used on listings, bookings and messages.
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) LinkGoogle(googleID string, now time.Time) {
	u.GoogleID = strings.TrimSpace(googleID)
	u.touch(now)
}

func (u *User) EnsureRole(role Role, now time.Time) error {
	role = normalizeRole(role)
	if role == "" {
		return ErrInvalidRole
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	u.touch(now)
	return nil
}

func (u *User) HasRole(role Role) bool {
	role = normalizeRole(role)
	if role == "" {
		return false
	}
	for _, current := range u.Roles {
		if normalizeRole(current) == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// JoinYear is the year shown on the host card.
func (u *User) JoinYear() int {
	return u.CreatedAt.Year()
}

func (u *User) Clone() *User {
	cp := *u
	cp.Roles = append([]Role(nil), u.Roles...)
	return &cp
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func normalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		normalizedRole := normalizeRole(role)
		if normalizedRole == "" {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[normalizedRole]; ok {
			continue
		}
		seen[normalizedRole] = struct{}{}
		normalized = append(normalized, normalizedRole)
	}
	return normalized, nil
}

func normalizeRole(role Role) Role {
	switch strings.ToLower(strings.TrimSpace(string(role))) {
	case "guest":
		return RoleGuest
	case "host":
		return RoleHost
	case "admin":
		return RoleAdmin
	default:
		return ""
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
