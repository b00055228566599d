// Package authz evaluates collection rules against a caller. Every decision
// is a pure function of its inputs; the controller roster is resolved by the
// caller beforehand.
package authz

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// DefaultHostingCollection is the asset collection served when a request
// host has no custom domain.
const DefaultHostingCollection = "#dapp"

// Operation is the kind of access being evaluated.
type Operation uint8

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", uint8(o))
	}
}

// Decision is the outcome of Authorize.
type Decision uint8

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Caller is an identified principal with its roster status resolved.
type Caller struct {
	Principal  string
	Controller bool
}

// Anonymous reports whether the caller presented no identity.
func (c Caller) Anonymous() bool {
	return common.IsAnonymous(c.Principal)
}

// Subject describes the ownership of an existing record.
type Subject struct {
	Owner     string
	Delegates []string
}

// DocSubject returns the Subject of d, or nil when d is nil.
func DocSubject(d *models.Doc) *Subject {
	if d == nil {
		return nil
	}
	return &Subject{Owner: d.Owner, Delegates: d.Delegates}
}

// AssetSubject returns the Subject of a, or nil when a is nil.
func AssetSubject(a *models.Asset) *Subject {
	if a == nil {
		return nil
	}
	return &Subject{Owner: a.Key.Owner, Delegates: a.Delegates}
}

// Roster answers whether a principal is a controller.
type Roster interface {
	IsController(ctx context.Context, principal string) (bool, error)
}

// ResolveCaller looks the principal up in the roster. Anonymous callers are
// never controllers.
func ResolveCaller(ctx context.Context, roster Roster, principal string) (Caller, error) {
	if common.IsAnonymous(principal) {
		return Caller{Principal: common.AnonymousPrincipal}, nil
	}
	ok, err := roster.IsController(ctx, principal)
	if err != nil {
		return Caller{}, err
	}
	return Caller{Principal: principal, Controller: ok}, nil
}

// Default returns the rule used for a collection with no stored rule.
func Default(kind models.RulesType, collection string) models.Rule {
	r := models.Rule{
		Kind:               kind,
		Collection:         collection,
		Read:               models.PermissionPrivate,
		Write:              models.PermissionPrivate,
		MutablePermissions: true,
	}
	if kind == models.RulesStorage {
		r.Read = models.PermissionPublic
		r.Write = models.PermissionControllers
	}
	return r
}

// PermissionFor picks the side of the rule that governs op.
func PermissionFor(rule models.Rule, op Operation) models.Permission {
	if op == OpRead {
		return rule.Read
	}
	return rule.Write
}

// Authorize decides whether caller may perform op under perm. existing is
// nil when the record does not exist yet.
func Authorize(caller Caller, perm models.Permission, op Operation, existing *Subject) Decision {
	if perm == models.PermissionPublic {
		return Allow
	}
	if caller.Anonymous() {
		return Deny
	}

	switch perm {
	case models.PermissionControllers:
		return decide(caller.Controller)
	case models.PermissionPrivate:
		if existing == nil {
			return Allow
		}
		return decide(caller.Controller || existing.Owner == caller.Principal)
	case models.PermissionManaged:
		if existing == nil {
			return Allow
		}
		return decide(caller.Controller ||
			existing.Owner == caller.Principal ||
			slices.Contains(existing.Delegates, caller.Principal))
	}
	return Deny
}

func decide(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}

// OwnerFor returns the owner a written record carries: the existing owner
// on update, the caller on create.
func OwnerFor(caller Caller, existing *Subject) string {
	if existing != nil {
		return existing.Owner
	}
	return caller.Principal
}

// PermissionError reports a denied operation.
type PermissionError struct {
	Collection string
	Op         Operation
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s on collection %q: %v", e.Op, e.Collection, common.ErrPermissionDenied)
}

func (e *PermissionError) Unwrap() error {
	return common.ErrPermissionDenied
}

// Check is Authorize against rule, returning a *PermissionError on Deny.
func Check(caller Caller, rule models.Rule, op Operation, existing *Subject) error {
	if Authorize(caller, PermissionFor(rule, op), op, existing) == Allow {
		return nil
	}
	return &PermissionError{Collection: rule.Collection, Op: op}
}

// CanRead is the list filter: unreadable records are skipped, not reported.
func CanRead(caller Caller, rule models.Rule, existing *Subject) bool {
	return Authorize(caller, rule.Read, OpRead, existing) == Allow
}

// WriteOp returns OpUpdate when a record exists and OpCreate otherwise.
func WriteOp(existing *Subject) Operation {
	if existing == nil {
		return OpCreate
	}
	return OpUpdate
}

// CheckMaxChanges enforces MaxChangesPerUser for a create by a non-controller
// that already owns owned records in the collection.
func CheckMaxChanges(caller Caller, rule models.Rule, op Operation, owned int) error {
	if op != OpCreate || caller.Controller || rule.MaxChangesPerUser == nil {
		return nil
	}
	if owned >= int(*rule.MaxChangesPerUser) {
		return fmt.Errorf("collection %q allows %d records per user: %w", rule.Collection, *rule.MaxChangesPerUser, common.ErrMaxChangesExceeded)
	}
	return nil
}

// CheckSize enforces MaxSize.
func CheckSize(rule models.Rule, size uint64) error {
	if rule.MaxSize != nil && size > *rule.MaxSize {
		return fmt.Errorf("%d bytes exceed the %d bytes limit of collection %q: %w", size, *rule.MaxSize, rule.Collection, common.ErrSizeLimitExceeded)
	}
	return nil
}
