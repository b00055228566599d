package models

import "time"

// Listable is implemented by records the list helper can filter and order.
type Listable interface {
	ListKey() string
	ListOwner() string
	ListDescription() string
	ListCreatedAt() time.Time
	ListUpdatedAt() time.Time
	ListDelegates() []string
}

// ListOrderField selects the ordering of a listing.
type ListOrderField uint8

const (
	OrderByKey ListOrderField = iota
	// OrderByCreatedAt is insertion order.
	OrderByCreatedAt
	OrderByUpdatedAt
)

// ListMatcher narrows a listing. Empty fields match everything.
type ListMatcher struct {
	Key         string
	KeyPrefix   string
	Description string
}

// ListPaginate bounds a listing. Cursor is the NextCursor of a previous page.
type ListPaginate struct {
	Cursor string
	Limit  int
}

// ListOrder orders a listing.
type ListOrder struct {
	Field ListOrderField
	Desc  bool
}

// ListParams combines the listing options.
type ListParams struct {
	Matcher  *ListMatcher
	Paginate *ListPaginate
	Order    *ListOrder
	// Owner, when set, restricts results to records owned by that principal.
	Owner string
}

// ListResults is one page of a listing.
type ListResults[T any] struct {
	Items         []T
	ItemsLength   int
	MatchesLength int
	ItemsPage     *int
	MatchesPages  *int
	// NextCursor is empty when no further page exists.
	NextCursor string
}
