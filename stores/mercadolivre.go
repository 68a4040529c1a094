package stores

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

var mlStrikeClass = regexp.MustCompile("price-tag-strike")

// MercadoLivreAdapter handles mercadolivre.* product pages and Mercado
// Livre campaign tagging.
type MercadoLivreAdapter struct{}

func (a *MercadoLivreAdapter) StoreID() types.StoreID { return types.StoreMercadoLivre }

// ExtractPrices reads the price from the twitter:data1 meta tag,
// preferring the twitter:data2 installment total when present, and the
// strike-through price from any element carrying a price-tag-strike
// class.
func (a *MercadoLivreAdapter) ExtractPrices(doc *goquery.Document) (string, string) {
	price := ""
	if content := doc.Find(`meta[name="twitter:data1"]`).First().AttrOr("content", ""); content != "" {
		price = NormalizePrice(content)
	}
	if content := doc.Find(`meta[name="twitter:data2"]`).First().AttrOr("content", ""); content != "" {
		if installment := NormalizePrice(content); installment != "" {
			price = installment
		}
	}

	strike := ""
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, ok := s.Attr("class"); ok && mlStrikeClass.MatchString(class) {
			strike = NormalizePrice(strings.TrimSpace(s.Text()))
			return false
		}
		return true
	})

	return price, strike
}

// ApplyAffiliate sets or replaces the "mldcid" query parameter with the
// configured campaign id.
func (a *MercadoLivreAdapter) ApplyAffiliate(rawURL string, config types.AffiliateConfig) string {
	campaign := config["campaign_id"]
	if campaign == "" {
		return rawURL
	}
	return setQueryParam(rawURL, "mldcid", campaign)
}
