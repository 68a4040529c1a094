package offer

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
	"github.com/marcoribeirogray/grupo-ofertas-api/storage"
)

const amazonProductPage = `<html><head>
	<meta property="og:title" content="Produto Exemplo">
	<meta property="og:image" content="https://cdn.example/produto.jpg">
</head><body>
	<span class="a-price" data-a-size="l"><span class="a-offscreen">R$199,90</span></span>
	<span class="a-price a-text-price"><span class="a-offscreen">R$249,90</span></span>
	<ul><li>Frete grátis</li><li>Entrega rápida</li></ul>
</body></html>`

type stubFetcher struct {
	html string
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func newTestBuilder(t *testing.T, fetcher *stubFetcher) (*Builder, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	builder := NewBuilder(types.DefaultConfig(), logger, fetcher, store)
	builder.Headlines = NewHeadlineGenerator(rand.NewSource(1))
	return builder, store
}

func TestBuildAmazonEndToEnd(t *testing.T) {
	builder, store := newTestBuilder(t, &stubFetcher{html: amazonProductPage})
	_, err := store.UpsertIntegration(context.Background(), types.Integration{
		Provider: types.StoreAmazon,
		Label:    "Amazon Brasil",
		Data:     types.AffiliateConfig{"tag": "mytag-20"},
	})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), BuildRequest{
		URL:    "https://www.amazon.com.br/dp/XYZ?ref=abc",
		Coupon: "PROMO",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.amazon.com.br/dp/XYZ?ref=abc&tag=mytag-20", result.AffiliateURL)
	assert.Equal(t, "amazon", result.Context.GetString("store"))
	assert.Equal(t, "Produto Exemplo", result.Context.GetString("title"))
	assert.Equal(t, "R$ 199,90", result.Context.GetString("price"))
	assert.Equal(t, "R$ 249,90", result.Context.GetString("price_original"))
	assert.Equal(t, ShortLink(result.AffiliateURL), result.Context.GetString("short_url"))

	assert.Contains(t, result.Text, "Produto Exemplo")
	assert.Contains(t, result.Text, "PROMO")
	assert.Contains(t, result.Text, "De R$ 249,90 por R$ 199,90")
	assert.Contains(t, result.Text, "👉 "+result.Context.GetString("short_url"))
}

func TestBuildNoRulesNoOverridesKeepsDefaults(t *testing.T) {
	builder, _ := newTestBuilder(t, &stubFetcher{html: amazonProductPage})

	result, err := builder.Build(context.Background(), BuildRequest{
		URL:   "https://www.amazon.com.br/dp/XYZ",
		Store: types.StoreAmazon,
	})
	require.NoError(t, err)

	meta := result.Metadata
	ctx := result.Context
	assert.Equal(t, meta.Title, ctx.GetString("title"))
	assert.Equal(t, string(meta.Store), ctx.GetString("store"))
	assert.Equal(t, meta.Image, ctx.GetString("image"))
	assert.Equal(t, meta.Price, ctx.GetString("price"))
	assert.Equal(t, meta.PriceOriginal, ctx.GetString("price_original"))
	assert.Equal(t, meta.Benefits, ctx.GetStrings("benefits"))
	assert.Empty(t, ctx.GetStrings("extra_lines"))
	// No affiliate config stored, so the URL passes through untouched.
	assert.Equal(t, "https://www.amazon.com.br/dp/XYZ", ctx.GetString("affiliate_url"))
}

func TestBuildOverridesWinOverComputedDefaults(t *testing.T) {
	builder, _ := newTestBuilder(t, &stubFetcher{html: amazonProductPage})

	result, err := builder.Build(context.Background(), BuildRequest{
		URL: "https://www.amazon.com.br/dp/XYZ",
		Overrides: map[string]any{
			"emoji":     "🎁",
			"headline":  "Chamada custom",
			"title":     "Título Forçado",
			"short_url": "https://go.example/custom01",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "🎁", result.Context.GetString("emoji"))
	assert.Equal(t, "Chamada custom", result.Context.GetString("headline"))
	assert.Equal(t, "Título Forçado", result.Context.GetString("title"))
	// The short link is not recomputed when explicitly supplied.
	assert.Equal(t, "https://go.example/custom01", result.Context.GetString("short_url"))
	assert.Contains(t, result.Text, "https://go.example/custom01")
}

func TestBuildAppliesStoredRules(t *testing.T) {
	builder, store := newTestBuilder(t, &stubFetcher{html: amazonProductPage})
	_, err := store.CreateRule(context.Background(), types.Rule{
		Name:       "urgência amazon",
		Conditions: types.RuleConditions{StoreIn: []string{"amazon"}},
		Actions: types.RuleActions{
			PrependLines:   []string{"⚠️ Só hoje", "Corre!"},
			AppendBenefits: []string{"• Frete grátis", "• Brinde surpresa"},
		},
	})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), BuildRequest{
		URL: "https://www.amazon.com.br/dp/XYZ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"⚠️ Só hoje", "Corre!"}, result.Context.GetStrings("extra_lines"))
	assert.Equal(t, []string{"• Frete grátis", "• Entrega rápida", "• Brinde surpresa"},
		result.Context.GetStrings("benefits"))
	assert.Contains(t, result.Text, "⚠️ Só hoje")
}

func TestBuildFetchFailureAbortsBuild(t *testing.T) {
	builder, _ := newTestBuilder(t, &stubFetcher{err: errors.New("connection refused")})

	result, err := builder.Build(context.Background(), BuildRequest{
		URL: "https://www.amazon.com.br/dp/XYZ",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadataUnavailable))
	assert.Nil(t, result)
}

func TestBuildCustomTemplateBySlug(t *testing.T) {
	builder, store := newTestBuilder(t, &stubFetcher{html: amazonProductPage})
	_, err := store.CreateTemplate(context.Background(), types.Template{
		Name: "Curto",
		Slug: "curto",
		Body: "{{.title}} por {{.price}} -> {{.short_url}}",
	})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), BuildRequest{
		URL:          "https://www.amazon.com.br/dp/XYZ",
		TemplateSlug: "curto",
	})
	require.NoError(t, err)
	assert.Equal(t, "Produto Exemplo por R$ 199,90 -> "+result.Context.GetString("short_url"), result.Text)
}

func TestBuildUnknownSlugFallsBackToDefault(t *testing.T) {
	builder, store := newTestBuilder(t, &stubFetcher{html: amazonProductPage})

	result, err := builder.Build(context.Background(), BuildRequest{
		URL:          "https://www.amazon.com.br/dp/XYZ",
		TemplateSlug: "nao-existe",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Produto Exemplo")

	// The built-in default is persisted on first use.
	tpl, ok, err := store.GetTemplateBySlug(context.Background(), DefaultTemplateSlug)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tpl.IsDefault)
}

func TestBuildProcessWideAmazonTagDefault(t *testing.T) {
	builder, _ := newTestBuilder(t, &stubFetcher{html: amazonProductPage})
	builder.config.DefaultAmazonTag = "fallback-21"

	result, err := builder.Build(context.Background(), BuildRequest{
		URL: "https://www.amazon.com.br/dp/XYZ",
	})
	require.NoError(t, err)
	assert.Contains(t, result.AffiliateURL, "tag=fallback-21")
}

func TestBuildMercadoLivreDetectedFromPath(t *testing.T) {
	html := `<head><meta name="twitter:data1" content="R$ 59,90"></head>`
	builder, store := newTestBuilder(t, &stubFetcher{html: html})
	_, err := store.UpsertIntegration(context.Background(), types.Integration{
		Provider: types.StoreMercadoLivre,
		Label:    "Mercado Livre",
		Data:     types.AffiliateConfig{"campaign_id": "camp1"},
	})
	require.NoError(t, err)

	result, err := builder.Build(context.Background(), BuildRequest{
		URL: "https://produto.algumsite.com.br/MLB-98765",
	})
	require.NoError(t, err)
	assert.Equal(t, "mercadolivre", result.Context.GetString("store"))
	assert.Contains(t, result.AffiliateURL, "mldcid=camp1")
	assert.Equal(t, "R$ 59,90", result.Context.GetString("price"))
}
