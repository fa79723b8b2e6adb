package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. The zero value is not a valid
// role; use ParseRole to convert untrusted input.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleUser, RoleAdmin, RoleOwner}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User mirrors the `users` table.
//
// Fields:
//
//	ID           – primary key.
//	Name         – display name, 4 to 60 characters.
//	Email        – unique, stored lower-cased.
//	PasswordHash – bcrypt hash, never the plaintext.
//	Address      – optional postal address.
//	Role         – USER, ADMIN or OWNER.
//	CreatedAt    – row creation time.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Address      *string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the authenticated principal decoded from a bearer token.
type Identity struct {
	UserID uint64
	Role   Role
}
