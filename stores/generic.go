package stores

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// GenericAdapter is the fallback for unrecognized retailers: prices come
// from scanning visible text for currency amounts and the URL is never
// rewritten.
type GenericAdapter struct{}

func (a *GenericAdapter) StoreID() types.StoreID { return types.StoreGeneric }

func (a *GenericAdapter) ExtractPrices(doc *goquery.Document) (string, string) {
	return extractGenericPrices(doc)
}

func (a *GenericAdapter) ApplyAffiliate(rawURL string, config types.AffiliateConfig) string {
	return rawURL
}

// extractGenericPrices scans the page text for currency amounts. The
// first distinct match is taken as the current price and the second, if
// any, as the original price. On pages listing several products the
// second match may belong to an unrelated item; this heuristic is kept
// as-is.
func extractGenericPrices(doc *goquery.Document) (string, string) {
	candidates := FindPriceCandidates(PageText(doc))
	switch len(candidates) {
	case 0:
		return "", ""
	case 1:
		return NormalizePrice(candidates[0]), ""
	}
	return NormalizePrice(candidates[0]), NormalizePrice(candidates[1])
}
