package match

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
)

// LoadTemplates prepares templates for every catalog entity of one kind
// from a directory of reference images named <entityID>.png. Entities
// without a reference image are skipped with a diagnostic; detection
// simply cannot match them.
func LoadTemplates(cat *catalog.Catalog, kind catalog.Kind, dir string, iconSize int) ([]*Template, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}

	entities := cat.ByKind(kind)
	templates := make([]*Template, 0, len(entities))
	for _, e := range entities {
		path := filepath.Join(dir, e.ID()+".png")
		img, err := imaging.Open(path)
		if err != nil {
			fmt.Printf("[Templates] No reference image for %s %q: %v\n", kind, e.ID(), err)
			continue
		}
		templates = append(templates, NewTemplate(e.ID(), e.Rarity().String(), img, iconSize))
	}

	fmt.Printf("[Templates] Prepared %d/%d %s templates from %s\n",
		len(templates), len(entities), kind, dir)
	return templates, nil
}
