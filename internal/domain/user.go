package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleWorker      Role = "Worker"
	RoleTaskCreator Role = "TaskCreator"
	RoleAdmin       Role = "Admin"
)

// AllRoles lists every role a user can hold.
var AllRoles = []Role{RoleWorker, RoleTaskCreator, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleTaskCreator, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts the canonical role names case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", InvalidInput("unknown role %q", s)
}

type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	PhotoURL             string    `json:"photoUrl,omitempty"`
	Role                 Role      `json:"role"`
	TotalCoin            int64     `json:"totalCoin"`
	TotalTaskCompletions int64     `json:"totalTaskCompletions"`
	CreatedAt            time.Time `json:"createdAt"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs a shallow shape check; delivery is never attempted.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if email == "" || at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return InvalidInput("email %q is not valid", email)
	}
	return nil
}
