package storage

import (
	"context"
	"errors"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// ErrNotFound is returned by update/delete operations targeting a
// missing record.
var ErrNotFound = errors.New("record not found")

// Store persists the user-authored pieces of the offer pipeline:
// transformation rules, announcement templates and per-retailer
// affiliate integrations. The offer builder only reads; the admin API
// also writes.
type Store interface {
	// Rules, returned by ListRules in creation order.
	ListRules(ctx context.Context) ([]types.Rule, error)
	GetRule(ctx context.Context, id string) (types.Rule, bool, error)
	CreateRule(ctx context.Context, rule types.Rule) (types.Rule, error)
	UpdateRule(ctx context.Context, rule types.Rule) (types.Rule, error)
	DeleteRule(ctx context.Context, id string) error

	// Templates. At most one template is flagged default; creating or
	// updating a template with IsDefault set clears the flag elsewhere.
	ListTemplates(ctx context.Context) ([]types.Template, error)
	GetTemplateBySlug(ctx context.Context, slug string) (types.Template, bool, error)
	GetDefaultTemplate(ctx context.Context) (types.Template, bool, error)
	CreateTemplate(ctx context.Context, tpl types.Template) (types.Template, error)
	UpdateTemplate(ctx context.Context, tpl types.Template) (types.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Integrations, keyed by provider.
	ListIntegrations(ctx context.Context) ([]types.Integration, error)
	GetIntegration(ctx context.Context, provider types.StoreID) (types.Integration, bool, error)
	UpsertIntegration(ctx context.Context, integration types.Integration) (types.Integration, error)

	Close() error
}

// GetAffiliateConfig reads the affiliate configuration for a store. A
// missing integration yields an empty config, not an error.
func GetAffiliateConfig(ctx context.Context, s Store, store types.StoreID) (types.AffiliateConfig, error) {
	integration, ok, err := s.GetIntegration(ctx, store)
	if err != nil {
		return nil, err
	}
	if !ok || integration.Data == nil {
		return types.AffiliateConfig{}, nil
	}
	return integration.Data, nil
}

// EnsureDefaultIntegrations seeds one integration row per supported
// retailer when none exists yet, pulling process-wide defaults from the
// configuration.
func EnsureDefaultIntegrations(ctx context.Context, s Store, cfg *types.Config) error {
	defaults := []types.Integration{
		{
			Provider: types.StoreAmazon,
			Label:    "Amazon Brasil",
			Data:     types.AffiliateConfig{"tag": cfg.DefaultAmazonTag},
		},
		{
			Provider: types.StoreMercadoLivre,
			Label:    "Mercado Livre",
			Data:     types.AffiliateConfig{"campaign_id": "", "seller_id": ""},
		},
		{
			Provider: types.StoreAwin,
			Label:    "AWIN",
			Data:     types.AffiliateConfig{"deeplink_prefix": "", "source_id": cfg.DefaultAwinSourceID},
		},
	}
	for _, integration := range defaults {
		_, ok, err := s.GetIntegration(ctx, integration.Provider)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := s.UpsertIntegration(ctx, integration); err != nil {
			return err
		}
	}
	return nil
}
