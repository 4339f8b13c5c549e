// Package catalog loads the coffee catalog from persisted storage, falling back
// to a bundled static list, and imports scraper exports into storage.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Veraticus/bean-scene/internal/model"
)

//go:embed bundled.json
var bundledJSON []byte

var (
	bundledOnce    sync.Once
	bundledCoffees []model.Coffee
)

// Bundled returns a copy of the static catalog shipped with the binary.
func Bundled() []model.Coffee {
	bundledOnce.Do(func() {
		if err := json.Unmarshal(bundledJSON, &bundledCoffees); err != nil {
			// The file is embedded at build time; a parse failure is a build defect.
			panic(fmt.Sprintf("catalog: bundled.json is invalid: %v", err))
		}
	})

	out := make([]model.Coffee, len(bundledCoffees))
	for i, c := range bundledCoffees {
		c.Notes = append([]model.FlavorNote(nil), c.Notes...)
		out[i] = c
	}
	return out
}
