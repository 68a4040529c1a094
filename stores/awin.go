package stores

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// AwinAdapter handles AWIN-network retailers. AWIN pages have no known
// price markup beyond the generic currency pattern; the adapter's real
// job is deeplink construction.
type AwinAdapter struct{}

func (a *AwinAdapter) StoreID() types.StoreID { return types.StoreAwin }

func (a *AwinAdapter) ExtractPrices(doc *goquery.Document) (string, string) {
	return extractGenericPrices(doc)
}

// ApplyAffiliate wraps the product URL in the configured AWIN deeplink
// prefix, percent-encoding the original URL.
func (a *AwinAdapter) ApplyAffiliate(rawURL string, config types.AffiliateConfig) string {
	prefix := config["deeplink_prefix"]
	if prefix == "" {
		return rawURL
	}
	return prefix + url.QueryEscape(rawURL)
}
