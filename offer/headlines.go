package offer

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// headlineCategory groups catchphrase pools behind keyword triggers.
// Categories are probed in order; the first whose keyword appears in the
// lower-cased title wins.
type headlineCategory struct {
	name     string
	keywords []string
	emojis   []string
	lines    []string
}

var headlineCategories = []headlineCategory{
	{
		name:     "beleza",
		keywords: []string{"desodorante", "antitranspirante", "higiene"},
		emojis:   []string{"🧴", "🧼", "💦"},
		lines: []string{
			"Suor? Só se for de alegria com esse preço.",
			"Proteção no sovaco e no bolso — blindagem dupla.",
			"Adeus cheiro ruim, olá desconto bonito.",
		},
	},
	{
		name:     "suplementos",
		keywords: []string{"creatina", "whey", "suplemento"},
		emojis:   []string{"🏋️", "⚡", "💪"},
		lines: []string{
			"PR no treino e PB no bolso.",
			"Energia pra levantar peso e derrubar valor.",
			"Ganho seco no bíceps e no carrinho.",
		},
	},
	{
		name:     "tv",
		keywords: []string{"smart tv", "4k", "thinq", "webos", "uhd"},
		emojis:   []string{"📺", "✨", "🎬"},
		lines: []string{
			"Cinema na sala, preço sem drama.",
			"Resolução 4K com promoção igualmente nítida.",
			"Maratona de série e de desconto.",
		},
	},
	{
		name:     "cozinha",
		keywords: []string{"fritadeira", "air fryer", "cozinha"},
		emojis:   []string{"🍟", "🍔", "👩‍🍳"},
		lines: []string{
			"Crocância garantida, preço em dieta.",
			"Frita a batata, derrete o valor.",
			"Chef feliz, carteira sorrindo.",
		},
	},
}

var genericEmojis = []string{"✨", "🔥", "🛒"}

var genericLines = []string{
	"Economia tão boa que até o algoritmo sorriu.",
	"Desconto desses até carrinho abandonado volta.",
	"Promoção piscou, piscou de volta e levou.",
}

// HeadlineGenerator picks a category-appropriate emoji and catchphrase
// for a product title. The randomness source is injectable so tests can
// seed it deterministically. A single generator is shared across API
// requests, and *rand.Rand is not safe for concurrent use, so picks are
// serialized with a mutex.
type HeadlineGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeadlineGenerator creates a generator backed by the given source.
// A nil source falls back to a time-seeded one.
func NewHeadlineGenerator(src rand.Source) *HeadlineGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &HeadlineGenerator{rng: rand.New(src)}
}

// HeadlineFor returns an emoji and a catchphrase for a product title,
// chosen uniformly from the first matching category's pools, or from the
// generic pools when no category matches.
func (g *HeadlineGenerator) HeadlineFor(title string) (emoji, line string) {
	lower := strings.ToLower(title)
	for _, category := range headlineCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return g.pick(category.emojis), g.pick(category.lines)
			}
		}
	}
	return g.pick(genericEmojis), g.pick(genericLines)
}

func (g *HeadlineGenerator) pick(pool []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return pool[g.rng.Intn(len(pool))]
}
