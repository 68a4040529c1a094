package offer

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadlineForCategoryMatch(t *testing.T) {
	gen := NewHeadlineGenerator(rand.NewSource(1))

	emoji, line := gen.HeadlineFor("Smart TV LG 50 polegadas 4K UHD")
	assert.Contains(t, []string{"📺", "✨", "🎬"}, emoji)
	assert.Contains(t, []string{
		"Cinema na sala, preço sem drama.",
		"Resolução 4K com promoção igualmente nítida.",
		"Maratona de série e de desconto.",
	}, line)
}

func TestHeadlineForCaseInsensitive(t *testing.T) {
	gen := NewHeadlineGenerator(rand.NewSource(1))

	emoji, _ := gen.HeadlineFor("CREATINA Monohidratada 300g")
	assert.Contains(t, []string{"🏋️", "⚡", "💪"}, emoji)
}

func TestHeadlineForFirstCategoryWins(t *testing.T) {
	gen := NewHeadlineGenerator(rand.NewSource(1))

	// "desodorante" (beleza) appears before any tv keyword in the table.
	emoji, _ := gen.HeadlineFor("desodorante com embalagem 4k")
	assert.Contains(t, []string{"🧴", "🧼", "💦"}, emoji)
}

func TestHeadlineForGenericFallback(t *testing.T) {
	gen := NewHeadlineGenerator(rand.NewSource(1))

	emoji, line := gen.HeadlineFor("Cadeira de escritório ergonômica")
	assert.Contains(t, genericEmojis, emoji)
	assert.Contains(t, genericLines, line)
}

func TestHeadlineForDeterministicUnderSeed(t *testing.T) {
	first := NewHeadlineGenerator(rand.NewSource(42))
	second := NewHeadlineGenerator(rand.NewSource(42))

	for i := 0; i < 10; i++ {
		e1, l1 := first.HeadlineFor("Air Fryer 4L")
		e2, l2 := second.HeadlineFor("Air Fryer 4L")
		assert.Equal(t, e1, e2)
		assert.Equal(t, l1, l2)
	}
}

func TestHeadlineForConcurrent(t *testing.T) {
	// One generator is shared by every API request, so concurrent calls
	// must not race on the underlying rand state.
	gen := NewHeadlineGenerator(rand.NewSource(7))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				emoji, line := gen.HeadlineFor("Smart TV 4K")
				assert.NotEmpty(t, emoji)
				assert.NotEmpty(t, line)
			}
		}()
	}
	wg.Wait()
}

func TestHeadlineForEmptyTitle(t *testing.T) {
	gen := NewHeadlineGenerator(nil)

	emoji, line := gen.HeadlineFor("")
	assert.Contains(t, genericEmojis, emoji)
	assert.Contains(t, genericLines, line)
}
