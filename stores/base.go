package stores

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// StoreAdapter bundles the retailer-specific pieces of the pipeline:
// price extraction from a parsed product page and affiliate rewriting
// of a product URL.
type StoreAdapter interface {
	// StoreID returns the retailer this adapter handles.
	StoreID() types.StoreID

	// ExtractPrices returns the current (sale) price and the original
	// (strike-through) price found on the page. Either may be empty.
	ExtractPrices(doc *goquery.Document) (current, original string)

	// ApplyAffiliate rewrites a product URL to embed the retailer's
	// affiliate identifier. It never mutates its input and returns the
	// URL unchanged when the required configuration is missing.
	ApplyAffiliate(rawURL string, config types.AffiliateConfig) string
}

// CurrencyPattern matches Brazilian currency amounts such as
// "R$ 1.234,56" and "R$99,90".
var CurrencyPattern = regexp.MustCompile(`R\$\s*\d{1,3}(?:\.\d{3})*,\d{2}`)

var installmentPattern = regexp.MustCompile(`(\d{1,2})x\s+de\s+(R\$\s*\d{1,3}(?:\.\d{3})*,\d{2})`)

const (
	fallbackTitle   = "Produto"
	maxBenefits     = 5
	maxBenefitLen   = 140
	excerptMaxChars = 1000
)

// Extract scrapes product metadata out of raw page markup. Extraction
// sub-steps degrade to empty values rather than failing; malformed or
// truncated markup still yields usable metadata.
func Extract(rawHTML string, adapter StoreAdapter) types.ProductMetadata {
	meta := types.ProductMetadata{
		Store:    adapter.StoreID(),
		Title:    fallbackTitle,
		Benefits: []string{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}

	if title := extractTitle(doc); title != "" {
		meta.Title = title
	}
	meta.Image = extractImage(doc)
	meta.Price, meta.PriceOriginal = adapter.ExtractPrices(doc)

	text := PageText(doc)
	meta.Benefits = extractBenefits(doc)
	if line := extractInstallment(text); line != "" && !contains(meta.Benefits, line) {
		meta.Benefits = append(meta.Benefits, line)
	}
	meta.RawPrices = FindPriceCandidates(text)
	meta.RawTextExcerpt = truncateRunes(text, excerptMaxChars)

	return meta
}

// extractTitle probes og:title, twitter:title, the document title and the
// first h1, in that order.
func extractTitle(doc *goquery.Document) string {
	probes := []func() string{
		func() string { return doc.Find(`meta[property="og:title"]`).First().AttrOr("content", "") },
		func() string { return doc.Find(`meta[name="twitter:title"]`).First().AttrOr("content", "") },
		func() string { return doc.Find("title").First().Text() },
		func() string { return doc.Find("h1").First().Text() },
	}
	for _, probe := range probes {
		if v := strings.TrimSpace(probe()); v != "" {
			return v
		}
	}
	return ""
}

func extractImage(doc *goquery.Document) string {
	probes := []func() string{
		func() string { return doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "") },
		func() string { return doc.Find(`meta[name="twitter:image"]`).First().AttrOr("content", "") },
		func() string { return doc.Find("img").First().AttrOr("src", "") },
	}
	for _, probe := range probes {
		if v := strings.TrimSpace(probe()); v != "" {
			return v
		}
	}
	return ""
}

// extractBenefits collects the first list items under any ul, keeping
// short entries only, each prefixed with a bullet marker.
func extractBenefits(doc *goquery.Document) []string {
	benefits := []string{}
	doc.Find("ul li").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxBenefits {
			return false
		}
		text := collapseWhitespace(s.Text())
		if text != "" && len(text) <= maxBenefitLen {
			benefits = append(benefits, "• "+text)
		}
		return true
	})
	return benefits
}

// extractInstallment finds an interest-free installment offer in the page
// text and formats it as a bullet line.
func extractInstallment(text string) string {
	match := installmentPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return fmt.Sprintf("💳 %sx de %s sem juros", match[1], match[2])
}

// FindPriceCandidates returns every distinct currency-pattern match in
// document order.
func FindPriceCandidates(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range CurrencyPattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// NormalizePrice trims a raw price string and ensures a single space
// after the "R$" prefix.
func NormalizePrice(value string) string {
	cleaned := strings.TrimSpace(value)
	if len(cleaned) >= 2 && strings.EqualFold(cleaned[:2], "r$") {
		rest := strings.TrimSpace(cleaned[2:])
		if rest == "" {
			return cleaned[:2]
		}
		return cleaned[:2] + " " + rest
	}
	return cleaned
}

// PageText renders the visible text of a document, joining text nodes
// with single spaces.
func PageText(doc *goquery.Document) string {
	var sb strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			appendText(node, &sb)
		}
	})
	if sb.Len() == 0 {
		for _, node := range doc.Selection.Nodes {
			appendText(node, &sb)
		}
	}
	return collapseWhitespace(sb.String())
}

func appendText(node *html.Node, sb *strings.Builder) {
	if node.Type == html.TextNode {
		if text := strings.TrimSpace(node.Data); text != "" {
			sb.WriteString(text)
			sb.WriteByte(' ')
		}
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendText(child, sb)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// probeSelectors returns the text of the first selector with a non-empty
// match, normalized as a price.
func probeSelectors(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return NormalizePrice(text)
		}
	}
	return ""
}

// truncateRunes caps s at max runes, never splitting a multi-byte
// character. Accented text and emoji are common in pt-BR product pages.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
