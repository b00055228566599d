package models

import (
	"fmt"
	"time"
)

// ControllerScope is the privilege level of a controller.
type ControllerScope uint8

const (
	ControllerScopeWrite ControllerScope = iota
	ControllerScopeAdmin
)

func (s ControllerScope) String() string {
	switch s {
	case ControllerScopeAdmin:
		return "admin"
	case ControllerScopeWrite:
		return "write"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// ParseControllerScope maps a textual scope to its value.
func ParseControllerScope(s string) (ControllerScope, error) {
	switch s {
	case "admin":
		return ControllerScopeAdmin, nil
	case "write":
		return ControllerScopeWrite, nil
	}
	return 0, fmt.Errorf("unknown controller scope %q", s)
}

// Controller is a privileged principal of the satellite.
type Controller struct {
	ID        string
	Scope     ControllerScope
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the controller is no longer valid at now.
func (c *Controller) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// SetController is the payload used to add or update controllers.
type SetController struct {
	Scope     ControllerScope
	Metadata  map[string]string
	ExpiresAt *time.Time
}
