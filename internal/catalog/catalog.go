package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/tracklist"
)

// Catalog serves read-only queries over the dataset loaded from a data
// directory. A failed load leaves it empty rather than failing the caller.
type Catalog struct {
	dir string

	mu   sync.RWMutex
	snap *Snapshot

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New loads the dataset in dir.
func New(dir string) *Catalog {
	c := &Catalog{
		dir:  dir,
		snap: emptySnapshot(),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.Reload()
	return c
}

// NewFromSnapshot wraps an in-memory snapshot. Reload on such a catalog is a no-op.
func NewFromSnapshot(snap *Snapshot) *Catalog {
	if snap == nil {
		snap = emptySnapshot()
	}
	return &Catalog{
		snap: snap,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Reload re-reads the data directory. On error the dataset is reset to
// empty collections and the error is logged and returned for callers that
// care; it never panics.
func (c *Catalog) Reload() error {
	if c.dir == "" {
		return nil
	}

	snap, err := Load(c.dir)
	if err != nil {
		slog.Error("Failed to load catalog, serving empty dataset", "dir", c.dir, "error", err)
		snap = emptySnapshot()
	} else {
		slog.Info("Catalog loaded",
			"dir", c.dir,
			"mixes", len(snap.Mixes),
			"categories", len(snap.Categories),
			"backgrounds", len(snap.Backgrounds))
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	return err
}

func (c *Catalog) snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Catalog) intn(n int) int {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.Intn(n)
}

// Mixes returns the mixes matching f ordered by listOrder.
func (c *Catalog) Mixes(f domain.Filters) []domain.Mix {
	snap := c.snapshot()

	if f.IsEmpty() {
		result := make([]domain.Mix, len(snap.Mixes))
		copy(result, snap.Mixes)
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].ListOrder < result[j].ListOrder
		})
		return result
	}

	month, hasMonth := parseMonthQuery(f.Date)
	category := strings.ToLower(strings.TrimSpace(f.Category))
	name := strings.ToLower(strings.TrimSpace(f.Name))
	notes := strings.ToLower(strings.TrimSpace(f.Notes))
	tags := f.TagList()

	result := make([]domain.Mix, 0, len(snap.Mixes))
	for _, mix := range snap.Mixes {
		if category != "" && strings.ToLower(mix.Category) != category {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(mix.Name), name) {
			continue
		}
		if notes != "" && !strings.Contains(strings.ToLower(mix.Notes), notes) {
			continue
		}
		if len(tags) > 0 && !hasAllTags(mix, tags) {
			continue
		}
		if hasMonth {
			released, ok := ParseReleaseDate(mix.ReleaseDate)
			if !ok || !month.matches(released) {
				continue
			}
		}
		result = append(result, mix)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ListOrder < result[j].ListOrder
	})
	return result
}

func hasAllTags(mix domain.Mix, wanted []string) bool {
	for _, want := range wanted {
		found := false
		for _, tag := range mix.Tags {
			if strings.Contains(strings.ToLower(tag), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MixKeys returns the ordered keys of the mixes matching f.
func (c *Catalog) MixKeys(ctx context.Context, f domain.Filters) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mixes := c.Mixes(f)
	keys := make([]string, len(mixes))
	for i, mix := range mixes {
		keys[i] = mix.MixcloudKey
	}
	return keys, nil
}

func (c *Catalog) Mix(key string) (domain.Mix, error) {
	for _, mix := range c.snapshot().Mixes {
		if mix.MixcloudKey == key {
			return mix, nil
		}
	}
	return domain.Mix{}, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Tracks returns the tracks of a mix sorted by start time.
func (c *Catalog) Tracks(key string) ([]domain.Track, error) {
	mix, err := c.Mix(key)
	if err != nil {
		return nil, err
	}
	return tracklist.SortTracksByTime(mix.Tracks), nil
}

func (c *Catalog) Categories() []domain.Category {
	snap := c.snapshot()
	categories := make([]domain.Category, len(snap.Categories))
	copy(categories, snap.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Index < categories[j].Index
	})
	return categories
}

func (c *Catalog) BackgroundCategories() []domain.BackgroundCategory {
	snap := c.snapshot()
	categories := make([]domain.BackgroundCategory, len(snap.BackgroundCategories))
	copy(categories, snap.BackgroundCategories)
	return categories
}

// Backgrounds returns backgrounds in the given category, or all of them
// when category is empty.
func (c *Catalog) Backgrounds(category string) []domain.Background {
	category = strings.ToLower(strings.TrimSpace(category))
	var result []domain.Background
	for _, bg := range c.snapshot().Backgrounds {
		if category == "" || strings.ToLower(bg.Category) == category {
			result = append(result, bg)
		}
	}
	if result == nil {
		result = []domain.Background{}
	}
	return result
}

func (c *Catalog) RandomBackground(category string) (domain.Background, bool) {
	candidates := c.Backgrounds(category)
	if len(candidates) == 0 {
		return domain.Background{}, false
	}
	return candidates[c.intn(len(candidates))], true
}

func (c *Catalog) RandomMix(f domain.Filters) (domain.Mix, error) {
	candidates := c.Mixes(f)
	if len(candidates) == 0 {
		return domain.Mix{}, ErrNotFound
	}
	return candidates[c.intn(len(candidates))], nil
}

// Tags returns every distinct tag, sorted.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	for _, mix := range c.snapshot().Mixes {
		for _, tag := range mix.Tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				seen[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Recent returns up to limit mixes, newest upload first. Mixes without an
// upload date fall back to their release date.
func (c *Catalog) Recent(limit int) []domain.Mix {
	snap := c.snapshot()
	mixes := make([]domain.Mix, len(snap.Mixes))
	copy(mixes, snap.Mixes)

	when := func(m domain.Mix) time.Time {
		if t, ok := ParseReleaseDate(m.UploadDate); ok {
			return t
		}
		t, _ := ParseReleaseDate(m.ReleaseDate)
		return t
	}
	sort.SliceStable(mixes, func(i, j int) bool {
		return when(mixes[i]).After(when(mixes[j]))
	})

	if limit > 0 && limit < len(mixes) {
		mixes = mixes[:limit]
	}
	return mixes
}

// Put always fails: the dataset is only ever changed by editing the files.
func (c *Catalog) Put(mix domain.Mix) error {
	slog.Error("Rejected write to read-only catalog", "key", mix.MixcloudKey)
	return fmt.Errorf("%w: cannot store %s", ErrReadOnly, mix.MixcloudKey)
}

// Delete always fails, see Put.
func (c *Catalog) Delete(key string) error {
	slog.Error("Rejected delete on read-only catalog", "key", key)
	return fmt.Errorf("%w: cannot delete %s", ErrReadOnly, key)
}
