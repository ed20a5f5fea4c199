package words

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DistinctWordsFromPool(t *testing.T) {
	g := NewSeeded(DefaultPools(), 42)

	p, err := g.Generate(25, RaceCategories...)
	require.NoError(t, err)
	require.Equal(t, 25, p.WordCount())

	pool := map[string]bool{}
	for _, w := range DefaultPools().Pool(LangEN, RaceCategories...) {
		pool[w] = true
	}
	seen := map[string]bool{}
	for _, w := range p.Words() {
		assert.True(t, pool[w], "word %q not in pool", w)
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true
	}
	assert.Equal(t, strings.Join(p.Words(), " "), p.String())
}

func TestGenerate_SameSeedSamePrompt(t *testing.T) {
	a, err := NewSeeded(DefaultPools(), 7).Generate(10, PracticeCategories...)
	require.NoError(t, err)
	b, err := NewSeeded(DefaultPools(), 7).Generate(10, PracticeCategories...)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerate_RejectsSizeBeyondCapacity(t *testing.T) {
	pools := Pools{Categories: map[Category][]string{
		CategoryCommon: {"one", "two", "two", "three"},
	}}
	g := NewSeeded(pools, 1)

	cases := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "exact capacity", count: 3},
		{name: "duplicates do not add capacity", count: 4, wantErr: true},
		{name: "zero", count: 0, wantErr: true},
		{name: "negative", count: -2, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := g.Generate(tc.count, CategoryCommon)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPromptSize) {
					t.Fatalf("want ErrInvalidPromptSize, got %v", err)
				}
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"one", "two", "three"}, p.Words())
		})
	}
}

func TestForLanguage_UsesLanguagePool(t *testing.T) {
	g := NewSeeded(DefaultPools(), 3)
	p, err := g.ForLanguage(5, LangRU, PracticeCategories...)
	require.NoError(t, err)

	ru := map[string]bool{}
	for _, w := range russianWords {
		ru[w] = true
	}
	for _, w := range p.Words() {
		assert.True(t, ru[w], "word %q not russian", w)
	}

	_, err = g.ForLanguage(Capacity(russianWords)+1, LangRU)
	assert.ErrorIs(t, err, ErrInvalidPromptSize)
}

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"EN", LangEN, true},
		{"tr", LangTR, true},
		{" ru-RU ", LangRU, true},
		{"de", "", false},
		{"", "", false},
		{"klingon!", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseLanguage(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestLoadPack(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadPack(filepath.Join(dir, "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, missing.Categories)

	path := filepath.Join(dir, "words.toml")
	body := `
[categories]
Tech = ["goroutine", "channel", "two words", ""]

[languages]
tr = ["merhaba"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	pack, err := LoadPack(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"goroutine", "channel"}, pack.Categories[CategoryTech])
	assert.Equal(t, []string{"merhaba"}, pack.Languages[LangTR])

	merged := DefaultPools().Merge(pack)
	assert.Contains(t, merged.Categories[CategoryTech], "goroutine")
	assert.Contains(t, merged.Languages[LangTR], "merhaba")
	assert.NotContains(t, DefaultPools().Categories[CategoryTech], "goroutine")
}

func TestLoadPack_RejectsUnknownLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.toml")
	require.NoError(t, os.WriteFile(path, []byte("[languages]\nxx = [\"a\"]\n"), 0o644))
	_, err := LoadPack(path)
	assert.Error(t, err)
}
