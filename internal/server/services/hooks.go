package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/satellite/internal/logging"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// EventKind names a committed mutation.
type EventKind uint8

const (
	EventDocSet EventKind = iota
	EventDocDeleted
	EventAssetCommitted
	EventAssetDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventDocSet:
		return "doc_set"
	case EventDocDeleted:
		return "doc_deleted"
	case EventAssetCommitted:
		return "asset_committed"
	case EventAssetDeleted:
		return "asset_deleted"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is delivered to notifiers after a mutation committed.
type Event struct {
	Kind   EventKind
	Caller string
	Doc    *models.DocContext
	Asset  *models.AssetContext
}

// Collection returns the collection the event belongs to.
func (e Event) Collection() string {
	switch {
	case e.Doc != nil:
		return e.Doc.Collection
	case e.Asset != nil:
		return e.Asset.Collection
	}
	return ""
}

// Key returns the document key or asset full path of the event.
func (e Event) Key() string {
	switch {
	case e.Doc != nil:
		return e.Doc.Key
	case e.Asset != nil:
		return e.Asset.FullPath
	}
	return ""
}

// Notifier reacts to committed mutations. Errors are logged, never returned
// to the caller of the mutation.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Hooks fans events out to notifiers on their own goroutines.
type Hooks struct {
	notifiers []Notifier
	logger    logging.Logger
	wg        sync.WaitGroup
}

// NewHooks returns a dispatcher over notifiers.
func NewHooks(l logging.Logger, notifiers ...Notifier) *Hooks {
	return &Hooks{notifiers: notifiers, logger: l.With("module", "hooks")}
}

// Dispatch runs every notifier asynchronously. Cancellation of ctx does not
// reach the notifiers. A nil *Hooks drops the event.
func (h *Hooks) Dispatch(ctx context.Context, ev Event) {
	if h == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, n := range h.notifiers {
		h.wg.Add(1)
		go func(n Notifier) {
			defer h.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					h.logger.Error(ctx, "Hook panicked", "event", ev.Kind.String(), "panic", fmt.Sprint(p))
				}
			}()
			if err := n.Notify(ctx, ev); err != nil {
				h.logger.Warn(ctx, "Hook failed", "event", ev.Kind.String(), "error", err.Error())
			}
		}(n)
	}
}

// Wait blocks until every dispatched notifier returned.
func (h *Hooks) Wait() {
	if h == nil {
		return
	}
	h.wg.Wait()
}

// LogNotifier writes one log line per event.
type LogNotifier struct {
	Logger logging.Logger
}

func (n LogNotifier) Notify(ctx context.Context, ev Event) error {
	n.Logger.Info(ctx, "Mutation committed",
		"event", ev.Kind.String(), "caller", ev.Caller, "collection", ev.Collection(), "key", ev.Key())
	return nil
}
