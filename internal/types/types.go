package types

import (
	"os"
	"strconv"
	"time"
)

// StoreID identifies a supported retailer.
type StoreID string

const (
	StoreAmazon       StoreID = "amazon"
	StoreMercadoLivre StoreID = "mercadolivre"
	StoreAwin         StoreID = "awin"
	StoreGeneric      StoreID = "generic"
)

// SupportedStores maps retailer identifiers to display labels.
var SupportedStores = map[StoreID]string{
	StoreAmazon:       "Amazon",
	StoreMercadoLivre: "Mercado Livre",
	StoreAwin:         "AWIN",
}

// ProductMetadata is the result of scraping a single product page.
// It is produced once per offer build and read-only downstream.
type ProductMetadata struct {
	Store          StoreID  `json:"store"`
	Title          string   `json:"title"`
	Image          string   `json:"image,omitempty"`
	Price          string   `json:"price,omitempty"`
	PriceOriginal  string   `json:"price_original,omitempty"`
	Benefits       []string `json:"benefits"`
	RawPrices      []string `json:"raw_prices"`
	RawTextExcerpt string   `json:"raw_text_excerpt"`
}

// AffiliateConfig holds per-store affiliate settings (tag, campaign_id,
// deeplink_prefix, source_id). Owned by the integration store.
type AffiliateConfig map[string]string

// OfferContext is the mutable key-value bag that drives template rendering.
// Rules and caller overrides may inject arbitrary fields at runtime.
type OfferContext map[string]any

// GetString returns the context value for key if it is a string.
func (c OfferContext) GetString(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// GetStrings returns the context value for key coerced to a string slice.
// JSON-decoded overrides arrive as []any, so both shapes are accepted.
func (c OfferContext) GetStrings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// RuleConditions gates whether a rule applies. Absent conditions are
// always satisfied; configured conditions are ANDed.
type RuleConditions struct {
	StoreIn        []string `json:"store_in,omitempty"`
	TitleContains  []string `json:"title_contains,omitempty"`
	RequiresCoupon bool     `json:"requires_coupon,omitempty"`
}

// RuleActions mutate the offer context and the extra line list.
type RuleActions struct {
	SetFields      map[string]any `json:"set_fields,omitempty"`
	PrependLines   []string       `json:"prepend_lines,omitempty"`
	AppendLines    []string       `json:"append_lines,omitempty"`
	AppendBenefits []string       `json:"append_benefits,omitempty"`
}

// Rule is a user-authored condition/action pair applied to offer contexts.
type Rule struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Conditions  RuleConditions `json:"conditions"`
	Actions     RuleActions    `json:"actions"`
}

// Template is a stored announcement template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
	IsDefault   bool   `json:"is_default"`
}

// Integration is a stored per-retailer affiliate configuration.
type Integration struct {
	ID       string          `json:"id"`
	Provider StoreID         `json:"provider"`
	Label    string          `json:"label"`
	Data     AffiliateConfig `json:"data"`
}

// Config holds the runtime configuration for offer building.
type Config struct {
	RequestDelay       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string

	DefaultAmazonTag    string
	DefaultAwinSourceID string
	DatabasePath        string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       500 * time.Millisecond,
		MaxRetries:         2,
		Timeout:            12 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		DatabasePath:       "ofertas.db",
	}
}

// ConfigFromEnv builds a configuration from the process environment,
// falling back to defaults for anything unset.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("USE_BROWSER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseHeadlessBrowser = b
		}
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("DEFAULT_AMAZON_TAG"); v != "" {
		cfg.DefaultAmazonTag = v
	}
	if v := os.Getenv("DEFAULT_AWIN_SOURCE_ID"); v != "" {
		cfg.DefaultAwinSourceID = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	return cfg
}

// Logger defines the logging interface used across the service.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
