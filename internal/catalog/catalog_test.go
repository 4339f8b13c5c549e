package catalog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/bean-scene/internal/model"
)

type fakeSource struct {
	err     error
	coffees []model.Coffee
}

func (f *fakeSource) ListVerifiedCoffees(_ context.Context) ([]model.Coffee, error) {
	return f.coffees, f.err
}

type recordingWriter struct {
	err     error
	batches [][]model.Coffee
}

func (w *recordingWriter) UpsertCoffees(_ context.Context, coffees []model.Coffee) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, coffees)
	return nil
}

func TestBundled(t *testing.T) {
	coffees := Bundled()
	require.NotEmpty(t, coffees)

	ids := make(map[string]bool)
	for _, c := range coffees {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.True(t, c.Roast.Valid(), "roast for %s", c.ID)
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
	}

	// Callers get independent copies.
	coffees[0].Notes[0] = "mutated"
	assert.NotEqual(t, model.FlavorNote("mutated"), Bundled()[0].Notes[0])
}

func TestLoader_Load(t *testing.T) {
	stored := []model.Coffee{{ID: "stored", Name: "Stored", Roast: model.RoastMedium, Verified: true}}

	tests := []struct {
		source  Source
		name    string
		wantIDs []string
	}{
		{
			name:    "nil source uses bundled",
			source:  nil,
			wantIDs: bundledIDs(),
		},
		{
			name:    "source rows win",
			source:  &fakeSource{coffees: stored},
			wantIDs: []string{"stored"},
		},
		{
			name:    "empty source falls back",
			source:  &fakeSource{},
			wantIDs: bundledIDs(),
		},
		{
			name:    "failing source falls back",
			source:  &fakeSource{err: errors.New("disk on fire")},
			wantIDs: bundledIDs(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coffees, err := NewLoader(tt.source, nil).Load(context.Background())
			require.NoError(t, err)

			ids := make([]string, len(coffees))
			for i, c := range coffees {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func bundledIDs() []string {
	var ids []string
	for _, c := range Bundled() {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestParseExport(t *testing.T) {
	input := `[
		{"name": "Rwanda Nyamasheke", "url": "https://shop.example.com/products/rwanda-nyamasheke/",
		 "flavor_notes": ["Fruity", "berry", "fruity", "bubblegum"], "roast_level": 2, "priority": 3},
		{"name": "", "url": "https://shop.example.com/products/nameless", "roast_level": 3},
		{"name": "Too Dark", "url": "https://shop.example.com/products/too-dark", "roast_level": 9},
		{"name": "Promo Blend", "url": "https://shop.example.com/", "roast_level": 4, "priority": -4, "milk": true}
	]`

	coffees, err := ParseExport(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, coffees, 2)

	rwanda := coffees[0]
	assert.Equal(t, "rwanda-nyamasheke", rwanda.ID)
	assert.Equal(t, []model.FlavorNote{model.FlavorFruity, model.FlavorBerry}, rwanda.Notes)
	assert.Equal(t, model.RoastLightMedium, rwanda.Roast)
	assert.Equal(t, 3, rwanda.Priority)

	promo := coffees[1]
	assert.Equal(t, "promo-blend", promo.ID)
	assert.Equal(t, 0, promo.Priority)
	assert.True(t, promo.Milk)
}

func TestParseExport_DefaultPriority(t *testing.T) {
	coffees, err := ParseExport(strings.NewReader(`[{"name":"A","url":"https://x/a","roast_level":1}]`), nil)
	require.NoError(t, err)
	require.Len(t, coffees, 1)
	assert.Equal(t, 5, coffees[0].Priority)
}

func TestParseExport_InvalidJSON(t *testing.T) {
	_, err := ParseExport(strings.NewReader(`{"not": "an array"`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode catalog export")
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		item string
		want string
	}{
		{"path segment", "https://shop.example.com/products/Kenya_AA", "ignored", "kenya-aa"},
		{"trailing slash", "https://shop.example.com/products/kenya-aa/", "ignored", "kenya-aa"},
		{"bare host uses name", "https://shop.example.com", "House Blend #2", "house-blend-2"},
		{"unparseable url uses name", "://bad", "Decaf", "decaf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveID(tt.url, tt.item))
		})
	}
}

func TestImport(t *testing.T) {
	coffees := make([]model.Coffee, importBatchSize+3)
	for i := range coffees {
		coffees[i] = model.Coffee{ID: DeriveID("", string(rune('a'+i%26))+"-coffee"), Roast: model.RoastMedium}
	}

	w := &recordingWriter{}
	var progress bytes.Buffer
	n, err := Import(context.Background(), w, coffees, ImportOptions{Verified: true, Progress: &progress})
	require.NoError(t, err)

	assert.Equal(t, len(coffees), n)
	require.Len(t, w.batches, 2)
	assert.Len(t, w.batches[0], importBatchSize)
	assert.Len(t, w.batches[1], 3)
	for _, c := range w.batches[1] {
		assert.True(t, c.Verified)
	}
	assert.False(t, coffees[0].Verified, "input slice must not be modified")
}

func TestImport_WriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("locked")}
	n, err := Import(context.Background(), w, []model.Coffee{{ID: "a"}}, ImportOptions{})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "locked")
}
