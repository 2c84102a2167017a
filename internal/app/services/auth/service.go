package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"rara/internal/app/uow"
	domainuser "rara/internal/domain/user"
)

var (
	ErrEmailExists        = errors.New("auth: email already exists")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrTokenRequired      = errors.New("auth: no token")
)

const minPasswordLength = 8

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Claims is what a bearer token asserts about its holder.
type Claims struct {
	UserID string
	Email  string
}

type TokenIssuer interface {
	Issue(claims Claims) (string, error)
	Parse(token string) (Claims, error)
}

// GoogleProfile is the subset of the Google userinfo response used for sign-in.
type GoogleProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Avatar    string
}

type Service struct {
	UoWFactory  uow.UoWFactory
	Passwords   PasswordHasher
	Tokens      TokenIssuer
	AdminEmails []string
	Clock       func() time.Time
	Logger      *slog.Logger
}

type SignupParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginParams struct {
	Email    string
	Password string
}

type Result struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Signup(ctx context.Context, params SignupParams) (*Result, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if utf8.RuneCountInString(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	var created *domainuser.User
	err = uow.Run(ctx, s.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Users().ByEmail(ctx, email); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, domainuser.ErrNotFound) {
			return err
		}
		first, last := strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName)
		if first == "" && last == "" {
			first = strings.SplitN(email, "@", 2)[0]
		}
		user, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(uuid.NewString()),
			Email:        email,
			PasswordHash: hash,
			FirstName:    first,
			LastName:     last,
			Roles:        s.rolesFor(email),
			CreatedAt:    s.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Users().Save(ctx, user); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", created.ID, "roles", created.Roles)
	}
	return s.issue(created)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*Result, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	var found *domainuser.User
	err := uow.Run(ctx, s.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		user, err := unit.Users().ByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if user.PasswordHash == "" {
			return ErrInvalidCredentials
		}
		if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
			return ErrInvalidCredentials
		}
		if err := s.grantAdmin(ctx, unit, user); err != nil {
			return err
		}
		found = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", found.ID)
	}
	return s.issue(found)
}

// GoogleSignIn finds the account linked to the Google id, links an existing
// account with the same email, or creates a new one.
func (s *Service) GoogleSignIn(ctx context.Context, profile GoogleProfile) (*Result, error) {
	if strings.TrimSpace(profile.ID) == "" {
		return nil, ErrInvalidCredentials
	}
	email := domainuser.NormalizeEmail(profile.Email)
	var resolved *domainuser.User
	err := uow.Run(ctx, s.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := s.now()
		user, err := unit.Users().ByGoogleID(ctx, profile.ID)
		switch {
		case err == nil:
		case errors.Is(err, domainuser.ErrNotFound) && email != "":
			user, err = unit.Users().ByEmail(ctx, email)
			if err == nil {
				user.LinkGoogle(profile.ID, now)
				if err := unit.Users().Save(ctx, user); err != nil {
					return err
				}
				break
			}
			if !errors.Is(err, domainuser.ErrNotFound) {
				return err
			}
			user, err = domainuser.NewUser(domainuser.CreateParams{
				ID:        domainuser.ID(uuid.NewString()),
				Email:     email,
				GoogleID:  profile.ID,
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Avatar:    profile.Avatar,
				Roles:     s.rolesFor(email),
				CreatedAt: now,
			})
			if err != nil {
				return err
			}
			if err := unit.Users().Save(ctx, user); err != nil {
				return err
			}
		default:
			return err
		}
		if err := s.grantAdmin(ctx, unit, user); err != nil {
			return err
		}
		resolved = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issue(resolved)
}

// Authenticate resolves a bearer token to the current account.
func (s *Service) Authenticate(ctx context.Context, token string) (*domainuser.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	var user *domainuser.User
	err = uow.Run(ctx, s.UoWFactory, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		u, err := unit.Users().ByID(ctx, domainuser.ID(claims.UserID))
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *domainuser.User) (*Result, error) {
	token, err := s.Tokens.Issue(Claims{UserID: string(user.ID), Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Token: token}, nil
}

func (s *Service) grantAdmin(ctx context.Context, unit uow.UnitOfWork, user *domainuser.User) error {
	if !s.isAdminEmail(user.Email) || user.IsAdmin() {
		return nil
	}
	if err := user.EnsureRole(domainuser.RoleAdmin, s.now()); err != nil {
		return err
	}
	return unit.Users().Save(ctx, user)
}

func (s *Service) rolesFor(email string) []domainuser.Role {
	roles := []domainuser.Role{domainuser.RoleGuest}
	if s.isAdminEmail(email) {
		roles = append(roles, domainuser.RoleAdmin)
	}
	return roles
}

func (s *Service) isAdminEmail(email string) bool {
	for _, admin := range s.AdminEmails {
		if domainuser.NormalizeEmail(admin) == email {
			return true
		}
	}
	return false
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
