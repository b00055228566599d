// Package models defines server-side data models persisted by the
// repositories and exchanged with the transport layer.
package models

import "time"

// Doc is a versioned record of the document store.
type Doc struct {
	Collection  string
	Key         string
	Owner       string
	Data        []byte
	Description string
	// Delegates are principals the owner grants access to under Managed rules.
	Delegates []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint64
}

// SetDoc is the caller's write payload. Version, when present, must equal
// the stored version.
type SetDoc struct {
	Data        []byte
	Description string
	Delegates   []string
	Version     *uint64
}

// DelDoc carries the optional expected version of a delete.
type DelDoc struct {
	Version *uint64
}

// DocContext describes one document mutation for hook notifiers.
type DocContext struct {
	Collection string
	Key        string
	Before     *Doc
	After      *Doc
}

func (d *Doc) ListKey() string          { return d.Key }
func (d *Doc) ListOwner() string        { return d.Owner }
func (d *Doc) ListDescription() string  { return d.Description }
func (d *Doc) ListCreatedAt() time.Time { return d.CreatedAt }
func (d *Doc) ListUpdatedAt() time.Time { return d.UpdatedAt }
func (d *Doc) ListDelegates() []string  { return d.Delegates }
