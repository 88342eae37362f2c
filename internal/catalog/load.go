package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaki95/mixplayer/internal/domain"
)

// File names inside the data directory.
const (
	MixesFile                = "mixes.json"
	CategoriesFile           = "categories.json"
	BackgroundCategoriesFile = "backgroundCategories.json"
	BackgroundsFile          = "backgrounds.json"
)

// Snapshot is one immutable copy of the dataset.
type Snapshot struct {
	Mixes                []domain.Mix
	Categories           []domain.Category
	BackgroundCategories []domain.BackgroundCategory
	Backgrounds          []domain.Background
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Mixes:                []domain.Mix{},
		Categories:           []domain.Category{},
		BackgroundCategories: []domain.BackgroundCategory{},
		Backgrounds:          []domain.Background{},
	}
}

// Load reads all four data files from dir. It fails if any one of them is
// missing or malformed.
func Load(dir string) (*Snapshot, error) {
	snap := emptySnapshot()

	if err := readJSON(filepath.Join(dir, MixesFile), &snap.Mixes); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, CategoriesFile), &snap.Categories); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, BackgroundCategoriesFile), &snap.BackgroundCategories); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, BackgroundsFile), &snap.Backgrounds); err != nil {
		return nil, err
	}

	return snap, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
