package services

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/dbx"
	"github.com/dmitrijs2005/satellite/internal/server/authz"
	"github.com/dmitrijs2005/satellite/internal/server/glob"
	"github.com/dmitrijs2005/satellite/internal/server/models"
	"github.com/dmitrijs2005/satellite/internal/timex"
)

// SettingsService holds the hosting configuration and the custom domains.
type SettingsService struct {
	*Store
}

// NewSettingsService returns a SettingsService over store.
func NewSettingsService(store *Store) *SettingsService {
	return &SettingsService{Store: store}
}

func validateConfig(cfg *models.StorageConfig) error {
	for src := range cfg.Headers {
		if _, err := glob.Compile(src); err != nil {
			return fmt.Errorf("headers: %v: %w", err, common.ErrInvalidInput)
		}
	}
	for src, dst := range cfg.Rewrites {
		if _, err := glob.Compile(src); err != nil {
			return fmt.Errorf("rewrites: %v: %w", err, common.ErrInvalidInput)
		}
		if !strings.HasPrefix(dst, "/") {
			return fmt.Errorf("rewrite destination %q must start with /: %w", dst, common.ErrInvalidInput)
		}
	}
	for src, r := range cfg.Redirects {
		if _, err := glob.Compile(src); err != nil {
			return fmt.Errorf("redirects: %v: %w", err, common.ErrInvalidInput)
		}
		switch r.StatusCode {
		case 301, 302, 303, 307, 308:
		default:
			return fmt.Errorf("redirect status %d: %w", r.StatusCode, common.ErrInvalidInput)
		}
		if r.Location == "" {
			return fmt.Errorf("redirect of %q has no location: %w", src, common.ErrInvalidInput)
		}
	}
	switch cfg.Iframe {
	case models.IframeDeny, models.IframeSameOrigin, models.IframeAllowAny:
	default:
		return fmt.Errorf("iframe option %d: %w", cfg.Iframe, common.ErrInvalidInput)
	}
	return nil
}

// GetConfig returns the storage configuration. Anyone may read it.
func (s *SettingsService) GetConfig(ctx context.Context) (*models.StorageConfig, error) {
	var out *models.StorageConfig
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		out, err = s.Repos.Settings(db).GetConfig(ctx)
		return err
	})
	return out, err
}

// SetConfig replaces the storage configuration. Admin only.
func (s *SettingsService) SetConfig(ctx context.Context, principal string, cfg *models.StorageConfig) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		return s.Repos.Settings(db).SetConfig(ctx, cfg)
	})
	if err != nil {
		return err
	}
	s.Logger.Info(ctx, "Storage config set",
		"headers", len(cfg.Headers), "rewrites", len(cfg.Rewrites), "redirects", len(cfg.Redirects))
	return nil
}

// ListCustomDomains returns every custom domain.
func (s *SettingsService) ListCustomDomains(ctx context.Context) ([]*models.CustomDomain, error) {
	var out []*models.CustomDomain
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		var err error
		out, err = s.Repos.Settings(db).ListCustomDomains(ctx)
		return err
	})
	return out, err
}

// SetCustomDomain maps domain to a collection, the hosting collection when
// collection is empty. Admin only.
func (s *SettingsService) SetCustomDomain(ctx context.Context, principal, domain, collection string) (*models.CustomDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.ContainsAny(domain, "/: ") {
		return nil, fmt.Errorf("invalid domain %q: %w", domain, common.ErrInvalidInput)
	}
	if collection == "" {
		collection = authz.DefaultHostingCollection
	}

	var out *models.CustomDomain
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		repo := s.Repos.Settings(db)
		existing, err := notFoundAsNil(repo.GetCustomDomain(ctx, domain))
		if err != nil {
			return err
		}
		now := s.now()
		d := &models.CustomDomain{Domain: domain, Collection: collection, CreatedAt: now, UpdatedAt: now}
		if existing != nil {
			d.CreatedAt = existing.CreatedAt
			d.UpdatedAt = timex.Later(existing.UpdatedAt, now)
		}
		if err := repo.SetCustomDomain(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// DelCustomDomain removes a custom domain. Admin only.
func (s *SettingsService) DelCustomDomain(ctx context.Context, principal, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		if err := s.requireAdmin(ctx, db, principal); err != nil {
			return err
		}
		return s.Repos.Settings(db).DeleteCustomDomain(ctx, domain)
	})
}

// HostingFor returns the storage configuration together with the collection
// that serves host. Unknown hosts map to the hosting collection.
func (s *SettingsService) HostingFor(ctx context.Context, host string) (*models.StorageConfig, string, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	var (
		cfg        *models.StorageConfig
		collection = authz.DefaultHostingCollection
	)
	err := s.Tx.WithTx(ctx, func(ctx context.Context, db dbx.DBTX) error {
		repo := s.Repos.Settings(db)
		var err error
		if cfg, err = repo.GetConfig(ctx); err != nil {
			return err
		}
		if host == "" {
			return nil
		}
		d, err := notFoundAsNil(repo.GetCustomDomain(ctx, host))
		if err != nil {
			return err
		}
		if d != nil && d.Collection != "" {
			collection = d.Collection
		}
		return nil
	})
	return cfg, collection, err
}
