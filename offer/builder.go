package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dario.cat/mergo"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
	"github.com/marcoribeirogray/grupo-ofertas-api/storage"
	"github.com/marcoribeirogray/grupo-ofertas-api/stores"
	"github.com/marcoribeirogray/grupo-ofertas-api/utils"
)

// ErrMetadataUnavailable marks a build aborted because the product page
// could not be fetched. No partial offer is returned in that case.
var ErrMetadataUnavailable = errors.New("metadata unavailable")

// BuildRequest carries the caller's input for one offer build.
type BuildRequest struct {
	URL          string         `json:"url"`
	Store        types.StoreID  `json:"store,omitempty"`
	Coupon       string         `json:"coupon,omitempty"`
	TemplateSlug string         `json:"template_slug,omitempty"`
	Overrides    map[string]any `json:"overrides,omitempty"`
}

// BuildResult is the rendered offer plus everything assembled on the
// way, for caller inspection and previews.
type BuildResult struct {
	Text         string                `json:"text"`
	Context      types.OfferContext    `json:"context"`
	Metadata     types.ProductMetadata `json:"metadata"`
	AffiliateURL string                `json:"affiliate_url"`
}

// Builder composes the offer pipeline: store detection, metadata
// extraction, affiliate transformation, rule application and template
// rendering. Each Build call is self-contained; the page fetch is the
// only I/O.
type Builder struct {
	config    *types.Config
	logger    types.Logger
	fetcher   utils.Fetcher
	store     storage.Store
	Headlines *HeadlineGenerator
}

// NewBuilder creates an offer builder. The headline generator is
// time-seeded; tests may replace Headlines with a seeded one.
func NewBuilder(config *types.Config, logger types.Logger, fetcher utils.Fetcher, store storage.Store) *Builder {
	return &Builder{
		config:    config,
		logger:    logger,
		fetcher:   fetcher,
		store:     store,
		Headlines: NewHeadlineGenerator(nil),
	}
}

// Build runs the full pipeline for one URL and returns the trimmed
// announcement text and the final context.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	store := req.Store
	if store == "" {
		store = stores.Detect(req.URL)
	}
	adapter := stores.ForStore(store)
	b.logger.Debugf("Building offer for %s (store: %s)", req.URL, store)

	rawHTML, err := b.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	meta := stores.Extract(rawHTML, adapter)

	affiliateConfig, err := storage.GetAffiliateConfig(ctx, b.store, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliate config: %w", err)
	}
	affiliateConfig = b.withProcessDefaults(store, affiliateConfig)
	affiliateURL := adapter.ApplyAffiliate(req.URL, affiliateConfig)

	offerCtx, err := b.assembleContext(meta, affiliateURL, req)
	if err != nil {
		return nil, err
	}

	if offerCtx.GetString("short_url") == "" {
		offerCtx["short_url"] = ShortLink(affiliateURL)
	}

	rules, err := b.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	lines := offerCtx.GetStrings("extra_lines")
	if lines == nil {
		lines = []string{}
	}
	lines = ApplyRules(rules, offerCtx, lines)
	offerCtx["extra_lines"] = lines

	tpl, err := b.resolveTemplate(ctx, req.TemplateSlug)
	if err != nil {
		return nil, err
	}
	text, err := RenderTemplate(tpl.Body, offerCtx)
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Text:         strings.TrimSpace(text),
		Context:      offerCtx,
		Metadata:     meta,
		AffiliateURL: affiliateURL,
	}, nil
}

// assembleContext seeds the offer context from the scraped metadata and
// derived fields, then applies caller overrides last so they win over
// every computed default.
func (b *Builder) assembleContext(meta types.ProductMetadata, affiliateURL string, req BuildRequest) (types.OfferContext, error) {
	emoji, headline := b.Headlines.HeadlineFor(meta.Title)

	benefits := make([]string, len(meta.Benefits))
	copy(benefits, meta.Benefits)

	offerCtx := types.OfferContext{
		"emoji":          emoji,
		"headline":       headline,
		"title":          meta.Title,
		"store":          string(meta.Store),
		"image":          meta.Image,
		"price":          meta.Price,
		"price_original": meta.PriceOriginal,
		"benefits":       benefits,
		"raw_prices":     meta.RawPrices,
		"affiliate_url":  affiliateURL,
		"coupon":         req.Coupon,
		"extra_lines":    []string{},
	}

	if len(req.Overrides) > 0 {
		overrides := types.OfferContext(req.Overrides)
		if err := mergo.Merge(&offerCtx, overrides, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}
	return offerCtx, nil
}

// withProcessDefaults fills configuration gaps from process-wide
// defaults without touching the stored config.
func (b *Builder) withProcessDefaults(store types.StoreID, config types.AffiliateConfig) types.AffiliateConfig {
	if store != types.StoreAmazon || config["tag"] != "" || b.config.DefaultAmazonTag == "" {
		return config
	}
	merged := types.AffiliateConfig{}
	for k, v := range config {
		merged[k] = v
	}
	merged["tag"] = b.config.DefaultAmazonTag
	return merged
}

// resolveTemplate selects the template by slug, falling back to the
// flagged default and finally creating the built-in one when storage is
// empty.
func (b *Builder) resolveTemplate(ctx context.Context, slug string) (types.Template, error) {
	if slug != "" {
		tpl, ok, err := b.store.GetTemplateBySlug(ctx, slug)
		if err != nil {
			return types.Template{}, fmt.Errorf("failed to load template: %w", err)
		}
		if ok {
			return tpl, nil
		}
		b.logger.Warnf("Template %q not found, falling back to default", slug)
	}

	tpl, ok, err := b.store.GetDefaultTemplate(ctx)
	if err != nil {
		return types.Template{}, fmt.Errorf("failed to load default template: %w", err)
	}
	if ok {
		return tpl, nil
	}

	created, err := b.store.CreateTemplate(ctx, DefaultTemplate())
	if err != nil {
		return types.Template{}, fmt.Errorf("failed to create default template: %w", err)
	}
	return created, nil
}
