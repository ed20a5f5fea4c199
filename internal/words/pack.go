package words

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// packFile is the TOML layout of an extra word pack:
//
//	[categories]
//	tech = ["goroutine", "channel"]
//
//	[languages]
//	TR = ["merhaba"]
type packFile struct {
	Categories map[string][]string `toml:"categories"`
	Languages  map[string][]string `toml:"languages"`
}

// LoadPack reads extra word lists from a TOML file. Missing file is not an error.
func LoadPack(path string) (Pools, error) {
	empty := Pools{Categories: map[Category][]string{}, Languages: map[Language][]string{}}
	if path == "" {
		return empty, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, fmt.Errorf("failed to stat word pack: %w", err)
	}
	var pf packFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return empty, fmt.Errorf("failed to decode word pack: %w", err)
	}
	for name, ws := range pf.Categories {
		empty.Categories[Category(strings.ToLower(name))] = clean(ws)
	}
	for name, ws := range pf.Languages {
		lang, ok := ParseLanguage(name)
		if !ok {
			return empty, fmt.Errorf("word pack: unsupported language %q", name)
		}
		empty.Languages[lang] = clean(ws)
	}
	return empty, nil
}

func clean(ws []string) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		w = strings.TrimSpace(w)
		if w == "" || strings.ContainsAny(w, " \t\n") {
			continue
		}
		out = append(out, w)
	}
	return out
}
