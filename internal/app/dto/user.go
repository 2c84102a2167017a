package dto

import (
	"time"

	domainuser "rara/internal/domain/user"
)

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar,omitempty"`
	Roles       []string  `json:"roles"`
	IsSuperhost bool      `json:"isSuperhost"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func MapUser(u *domainuser.User) User {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return User{
		ID:          string(u.ID),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Name:        u.Name(),
		Avatar:      u.Avatar,
		Roles:       roles,
		IsSuperhost: u.Superhost,
		CreatedAt:   u.CreatedAt,
	}
}
