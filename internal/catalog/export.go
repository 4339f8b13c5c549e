package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/bean-scene/internal/model"
)

const importBatchSize = 25

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// exportRecord is one product as written by the scraper.
type exportRecord struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Origin      string   `json:"origin"`
	FlavorNotes []string `json:"flavor_notes"`
	RoastLevel  int      `json:"roast_level"`
	Priority    *int     `json:"priority"`
	Espresso    bool     `json:"espresso"`
	Milk        bool     `json:"milk"`
}

// Writer persists catalog rows.
type Writer interface {
	UpsertCoffees(ctx context.Context, coffees []model.Coffee) error
}

// ImportOptions controls how an export is written.
type ImportOptions struct {
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	Verified bool
}

// ParseExport decodes a scraper export (a JSON array of products). Records
// without a name or URL, or with a roast level outside 1..6, are skipped.
// Unknown flavor notes are dropped.
func ParseExport(r io.Reader, logger *slog.Logger) ([]model.Coffee, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var records []exportRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog export: %w", err)
	}

	coffees := make([]model.Coffee, 0, len(records))
	for i, rec := range records {
		coffee, err := rec.toCoffee()
		if err != nil {
			logger.Warn("skipping catalog record", "index", i, "name", rec.Name, "error", err)
			continue
		}
		coffees = append(coffees, coffee)
	}

	return coffees, nil
}

func (rec exportRecord) toCoffee() (model.Coffee, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return model.Coffee{}, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(rec.URL) == "" {
		return model.Coffee{}, fmt.Errorf("url is required")
	}
	roast := model.RoastLevel(rec.RoastLevel)
	if !roast.Valid() {
		return model.Coffee{}, fmt.Errorf("roast level %d is outside 1..6", rec.RoastLevel)
	}

	notes := make([]model.FlavorNote, 0, len(rec.FlavorNotes))
	seen := make(map[model.FlavorNote]bool)
	for _, raw := range rec.FlavorNotes {
		note, err := model.ParseFlavorNote(raw)
		if err != nil || seen[note] {
			continue
		}
		seen[note] = true
		notes = append(notes, note)
	}

	priority := 5
	if rec.Priority != nil {
		priority = min(max(*rec.Priority, 0), 10)
	}

	return model.Coffee{
		ID:          DeriveID(rec.URL, name),
		Name:        name,
		URL:         strings.TrimSpace(rec.URL),
		Description: strings.TrimSpace(rec.Description),
		Origin:      strings.TrimSpace(rec.Origin),
		Roast:       roast,
		Notes:       notes,
		Priority:    priority,
		Espresso:    rec.Espresso,
		Milk:        rec.Milk,
		UpdatedAt:   time.Now(),
	}, nil
}

// DeriveID builds a stable identifier from the product URL's last path
// segment, or from the name when the URL has none.
func DeriveID(rawURL, name string) string {
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		if base := path.Base(strings.TrimSuffix(u.Path, "/")); base != "." && base != "/" && base != "" {
			if id := slugify(base); id != "" {
				return id
			}
		}
	}
	return slugify(name)
}

func slugify(s string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Import writes coffees in batches and returns how many were written.
func Import(ctx context.Context, w Writer, coffees []model.Coffee, opts ImportOptions) (int, error) {
	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(coffees),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Importing coffees"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	written := 0
	for start := 0; start < len(coffees); start += importBatchSize {
		end := min(start+importBatchSize, len(coffees))

		batch := make([]model.Coffee, end-start)
		copy(batch, coffees[start:end])
		for i := range batch {
			batch[i].Verified = opts.Verified
		}

		if err := w.UpsertCoffees(ctx, batch); err != nil {
			return written, fmt.Errorf("failed to import coffees %d-%d: %w", start, end-1, err)
		}
		written += len(batch)

		if bar != nil {
			_ = bar.Add(len(batch))
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return written, nil
}
