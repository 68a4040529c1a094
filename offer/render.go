package offer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// DefaultTemplateSlug identifies the built-in announcement template.
const DefaultTemplateSlug = "default-announcement"

// DefaultTemplateBody is the built-in announcement structure: headline,
// title, price line, coupon line, benefits, extra lines, short link.
// Output is plain chat/ad copy, so nothing is escaped.
const DefaultTemplateBody = `{{.emoji}} {{.headline}}

🛍️ {{.title}}

{{if and .price_original .price}}💰 De {{.price_original}} por {{.price}}
{{else if .price}}💰 {{.price}}
{{end}}{{if .coupon}}🎟️ CUPOM: {{.coupon}}
{{end}}{{range .benefits}}{{.}}
{{end}}{{range .extra_lines}}{{.}}
{{end}}
👉 {{.short_url}}
`

// DefaultTemplate returns the built-in template record, used when no
// template has been stored yet.
func DefaultTemplate() types.Template {
	return types.Template{
		Name:        "Template padrão",
		Slug:        DefaultTemplateSlug,
		Description: "Estrutura padrão de anúncio",
		Body:        DefaultTemplateBody,
		IsDefault:   true,
	}
}

// RenderTemplate renders a template body against an offer context.
// Malformed template syntax surfaces as a render error carrying the
// engine's message; it is never swallowed.
func RenderTemplate(body string, context types.OfferContext) (string, error) {
	tmpl, err := template.New("offer").Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, map[string]any(context)); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return sb.String(), nil
}
