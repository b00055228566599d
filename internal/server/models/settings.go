package models

import "time"

// IframeOption controls the X-Frame-Options header of delivered assets.
type IframeOption uint8

const (
	IframeDeny IframeOption = iota
	IframeSameOrigin
	IframeAllowAny
)

// Redirect is a configured redirection target.
type Redirect struct {
	Location   string
	StatusCode int
}

// StorageConfig is the hosting configuration consumed by delivery.
// Map keys are path globs.
type StorageConfig struct {
	Headers   map[string][]HeaderField
	Rewrites  map[string]string
	Redirects map[string]Redirect
	Iframe    IframeOption
}

// CustomDomain maps a host name to the collection it serves.
type CustomDomain struct {
	Domain     string
	Collection string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
