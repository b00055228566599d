package models

import (
	"fmt"
	"time"
)

// Permission is the access policy of one side (read or write) of a rule.
type Permission uint8

const (
	PermissionPublic Permission = iota
	PermissionPrivate
	PermissionManaged
	PermissionControllers
)

func (p Permission) String() string {
	switch p {
	case PermissionPublic:
		return "public"
	case PermissionPrivate:
		return "private"
	case PermissionManaged:
		return "managed"
	case PermissionControllers:
		return "controllers"
	default:
		return fmt.Sprintf("permission(%d)", uint8(p))
	}
}

// ParsePermission maps a textual permission to its value.
func ParsePermission(s string) (Permission, error) {
	switch s {
	case "public":
		return PermissionPublic, nil
	case "private":
		return PermissionPrivate, nil
	case "managed":
		return PermissionManaged, nil
	case "controllers":
		return PermissionControllers, nil
	}
	return 0, fmt.Errorf("unknown permission %q", s)
}

// RulesType selects the store a rule applies to.
type RulesType string

const (
	RulesDB      RulesType = "db"
	RulesStorage RulesType = "storage"
)

// Valid reports whether t names a known store.
func (t RulesType) Valid() bool {
	return t == RulesDB || t == RulesStorage
}

// Rule is the authorization policy of a collection.
type Rule struct {
	Kind               RulesType
	Collection         string
	Read               Permission
	Write              Permission
	MaxSize            *uint64
	MutablePermissions bool
	MaxChangesPerUser  *uint32
	CreatedAt          time.Time
	UpdatedAt          time.Time
	// Version is zero for system defaults that were never stored.
	Version uint64
}

// SetRule is the payload of a rule change. A nil MutablePermissions keeps
// the permissions mutable.
type SetRule struct {
	Read               Permission
	Write              Permission
	MaxSize            *uint64
	MutablePermissions *bool
	MaxChangesPerUser  *uint32
	Version            *uint64
}
