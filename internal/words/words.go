// Package words builds race prompts from category and language word pools.
package words

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
)

var ErrInvalidPromptSize = errors.New("invalid prompt size")

// Prompt is an ordered sequence of distinct words. The zero value is empty.
type Prompt struct {
	words []string
}

// NewPrompt copies words into a Prompt.
func NewPrompt(words []string) Prompt {
	return Prompt{words: append([]string(nil), words...)}
}

// ParsePrompt splits text on whitespace.
func ParsePrompt(text string) Prompt {
	return Prompt{words: strings.Fields(text)}
}

func (p Prompt) Words() []string { return append([]string(nil), p.words...) }
func (p Prompt) WordCount() int  { return len(p.words) }
func (p Prompt) IsZero() bool    { return len(p.words) == 0 }
func (p Prompt) String() string  { return strings.Join(p.words, " ") }

// Pools holds the word lists a Generator draws from.
type Pools struct {
	Categories map[Category][]string
	Languages  map[Language][]string
}

// DefaultPools returns the built-in word lists.
func DefaultPools() Pools {
	return Pools{
		Categories: map[Category][]string{
			CategoryCommon:   commonWords,
			CategoryTech:     techWords,
			CategoryAdvanced: advancedWords,
		},
		Languages: map[Language][]string{
			LangTR: turkishWords,
			LangRU: russianWords,
		},
	}
}

// Merge returns a copy of p with extra's words appended to matching lists.
func (p Pools) Merge(extra Pools) Pools {
	out := Pools{
		Categories: make(map[Category][]string, len(p.Categories)),
		Languages:  make(map[Language][]string, len(p.Languages)),
	}
	for c, ws := range p.Categories {
		out.Categories[c] = append([]string(nil), ws...)
	}
	for l, ws := range p.Languages {
		out.Languages[l] = append([]string(nil), ws...)
	}
	for c, ws := range extra.Categories {
		out.Categories[c] = append(out.Categories[c], ws...)
	}
	for l, ws := range extra.Languages {
		out.Languages[l] = append(out.Languages[l], ws...)
	}
	return out
}

// Pool returns the union of the requested categories, or the language pool
// when lang is not English.
func (p Pools) Pool(lang Language, categories ...Category) []string {
	if lang != "" && lang != LangEN {
		return p.Languages[lang]
	}
	var pool []string
	for _, c := range categories {
		pool = append(pool, p.Categories[c]...)
	}
	return pool
}

// Capacity counts the distinct words in pool.
func Capacity(pool []string) int {
	seen := make(map[string]struct{}, len(pool))
	for _, w := range pool {
		seen[w] = struct{}{}
	}
	return len(seen)
}

// Generator draws prompts. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	pools Pools
}

// New returns a Generator seeded with the current time.
func New(pools Pools) *Generator {
	return NewSeeded(pools, time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(pools Pools, seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), pools: pools}
}

// Generate draws count distinct words from the union of categories.
func (g *Generator) Generate(count int, categories ...Category) (Prompt, error) {
	return g.ForLanguage(count, LangEN, categories...)
}

// ForLanguage draws count distinct words for lang. Categories only apply to
// English.
func (g *Generator) ForLanguage(count int, lang Language, categories ...Category) (Prompt, error) {
	pool := g.pools.Pool(lang, categories...)
	capacity := Capacity(pool)
	if count <= 0 || count > capacity {
		return Prompt{}, fmt.Errorf("%w: %d words requested, %d available", ErrInvalidPromptSize, count, capacity)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	selected := make([]string, 0, count)
	used := make(map[string]struct{}, count)
	for len(selected) < count {
		word := pool[g.rnd.Intn(len(pool))]
		if _, dup := used[word]; dup {
			continue
		}
		used[word] = struct{}{}
		selected = append(selected, word)
	}
	return Prompt{words: selected}, nil
}

// ParseLanguage accepts a supported code in any case or a BCP 47 tag such as
// "ru-RU".
func ParseLanguage(s string) (Language, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return LangEN, true
	case "tr":
		return LangTR, true
	case "ru":
		return LangRU, true
	default:
		return "", false
	}
}
