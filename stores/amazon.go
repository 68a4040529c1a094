package stores

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// Ordered probe lists for Amazon product pages. Amazon rotates its price
// markup between layouts, so the first selector with a non-empty match
// wins.
var amazonPriceSelectors = []string{
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	"span.apexPriceToPay span.a-offscreen",
	`span.a-price[data-a-size="l"] span.a-offscreen`,
	`span.a-price[data-a-size="xl"] span.a-offscreen`,
}

var amazonStrikeSelectors = []string{
	"#priceblock_strikeprice",
	"span.a-price.a-text-price span.a-offscreen",
	`span[data-a-color="secondary"] span.a-offscreen`,
}

// AmazonAdapter handles amazon.* product pages and Amazon Associates
// tagging.
type AmazonAdapter struct{}

func (a *AmazonAdapter) StoreID() types.StoreID { return types.StoreAmazon }

func (a *AmazonAdapter) ExtractPrices(doc *goquery.Document) (string, string) {
	return probeSelectors(doc, amazonPriceSelectors), probeSelectors(doc, amazonStrikeSelectors)
}

// ApplyAffiliate sets or replaces the "tag" query parameter with the
// configured associate tag, preserving every other parameter.
func (a *AmazonAdapter) ApplyAffiliate(rawURL string, config types.AffiliateConfig) string {
	tag := config["tag"]
	if tag == "" {
		return rawURL
	}
	return setQueryParam(rawURL, "tag", tag)
}
