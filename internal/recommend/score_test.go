package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/bean-scene/internal/model"
)

func testCatalog() []model.Coffee {
	return []model.Coffee{
		{ID: "ethiopia", Name: "Ethiopia Guji", Roast: 2, Priority: 2,
			Notes: []model.FlavorNote{model.FlavorFruity, model.FlavorSweet, model.FlavorFloral}},
		{ID: "italian", Name: "Italian Roast", Roast: 6, Priority: 1,
			Notes: []model.FlavorNote{model.FlavorRoasted, model.FlavorSpices}},
		{ID: "colombia", Name: "Colombia Huila", Roast: 3, Priority: 3,
			Notes: []model.FlavorNote{model.FlavorCaramel, model.FlavorChocolate, model.FlavorFruity}},
		{ID: "brazil", Name: "Brazil Cerrado", Roast: 4, Priority: 2,
			Notes: []model.FlavorNote{model.FlavorNutty, model.FlavorChocolate}},
		{ID: "sumatra", Name: "Sumatra Mandheling", Roast: 5, Priority: 4,
			Notes: []model.FlavorNote{model.FlavorEarthy, model.FlavorSpices}},
		{ID: "kenya", Name: "Kenya AA", Roast: 2, Priority: 2,
			Notes: []model.FlavorNote{model.FlavorBerry, model.FlavorCitrus}},
	}
}

func prefs(style model.DrinkStyle, roast model.RoastLevel, flavors ...model.FlavorNote) model.Preferences {
	return model.Preferences{
		DrinkStyle: style,
		RoastLevel: roast,
		Flavors:    flavors,
		BrewMethod: model.BrewFilter,
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		coffee model.Coffee
		prefs  model.Preferences
		want   model.ScoreBreakdown
	}{
		{
			name:   "exact roast with two shared notes, straight up",
			coffee: testCatalog()[0],
			prefs:  prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral),
			want:   model.ScoreBreakdown{Roast: 30, Flavor: 10, Style: 5, Priority: 8},
		},
		{
			name:   "dark roast far from light preference",
			coffee: testCatalog()[1],
			prefs:  prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral),
			want:   model.ScoreBreakdown{Roast: 6, Flavor: 0, Style: 0, Priority: 9},
		},
		{
			name:   "milk drink with darker roast gets style bonus",
			coffee: testCatalog()[3],
			prefs:  prefs(model.WithMilk, 4, model.FlavorChocolate),
			want:   model.ScoreBreakdown{Roast: 30, Flavor: 5, Style: 5, Priority: 8},
		},
		{
			name:   "milk drink with light roast gets no style bonus",
			coffee: testCatalog()[5],
			prefs:  prefs(model.WithMilk, 2),
			want:   model.ScoreBreakdown{Roast: 30, Flavor: 0, Style: 0, Priority: 8},
		},
		{
			name:   "roast mismatch of five floors at zero",
			coffee: model.Coffee{Roast: 6, Priority: 10},
			prefs:  prefs(model.StraightUp, 1),
			want:   model.ScoreBreakdown{Roast: 0, Flavor: 0, Style: 0, Priority: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.coffee, tt.prefs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_RejectsTooManyFlavors(t *testing.T) {
	p := prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral, model.FlavorSweet, model.FlavorBerry)

	_, err := Score(testCatalog()[0], p)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidPreferences)

	_, err = Rank(testCatalog(), p)
	assert.ErrorIs(t, err, model.ErrInvalidPreferences)
}

func TestScore_IsPure(t *testing.T) {
	coffee := testCatalog()[2]
	p := prefs(model.WithMilk, 3, model.FlavorCaramel)

	first, err := Score(coffee, p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Score(coffee, p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRoastProximity_Monotonic(t *testing.T) {
	previous := roastProximity(3, 3)
	assert.Equal(t, 30, previous)

	for coffeeRoast := model.RoastLevel(4); coffeeRoast <= 9; coffeeRoast++ {
		current := roastProximity(coffeeRoast, 3)
		assert.LessOrEqual(t, current, previous, "roast %d", coffeeRoast)
		assert.GreaterOrEqual(t, current, 0)
		previous = current
	}
	assert.Equal(t, 0, roastProximity(6, 1))
}

func TestRank_Ordering(t *testing.T) {
	allPrefs := []model.Preferences{
		prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral),
		prefs(model.WithMilk, 5, model.FlavorChocolate, model.FlavorNutty),
		prefs(model.StraightUp, 3),
		prefs(model.WithMilk, 1, model.FlavorBerry, model.FlavorCitrus, model.FlavorSpices),
	}

	for i, p := range allPrefs {
		t.Run(fmt.Sprintf("preferences %d", i), func(t *testing.T) {
			ranked, err := Rank(testCatalog(), p)
			require.NoError(t, err)
			require.Len(t, ranked, len(testCatalog()))

			for j := 1; j < len(ranked); j++ {
				prev, cur := ranked[j-1], ranked[j]
				assert.GreaterOrEqual(t, prev.Score, cur.Score)
				if prev.Score == cur.Score {
					assert.LessOrEqual(t, prev.Coffee.Priority, cur.Coffee.Priority)
				}
			}
		})
	}
}

func TestRank_ExclusionPreservesOrder(t *testing.T) {
	p := prefs(model.StraightUp, 2, model.FlavorFruity)

	full, err := Rank(testCatalog(), p)
	require.NoError(t, err)

	for _, excluded := range testCatalog() {
		t.Run(excluded.ID, func(t *testing.T) {
			reduced, err := Rank(testCatalog(), p, excluded.ID)
			require.NoError(t, err)

			var expected []string
			for _, c := range full {
				if c.Coffee.ID != excluded.ID {
					expected = append(expected, c.Coffee.ID)
				}
			}

			var got []string
			for _, c := range reduced {
				got = append(got, c.Coffee.ID)
			}
			assert.NotContains(t, got, excluded.ID)
			assert.Equal(t, expected, got)
		})
	}
}

func TestRank_TieBrokenByPriority(t *testing.T) {
	catalog := []model.Coffee{
		{ID: "flavorful", Roast: 3, Priority: 5, Notes: []model.FlavorNote{model.FlavorFruity}},
		{ID: "promoted", Roast: 3, Priority: 0},
	}

	ranked, err := Rank(catalog, prefs(model.StraightUp, 3, model.FlavorFruity))
	require.NoError(t, err)
	require.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "promoted", ranked[0].Coffee.ID)
	assert.Equal(t, "flavorful", ranked[1].Coffee.ID)
}

func TestRank_StableForIdenticalCandidates(t *testing.T) {
	catalog := []model.Coffee{
		{ID: "first", Roast: 3, Priority: 4},
		{ID: "second", Roast: 3, Priority: 4},
	}

	ranked, err := Rank(catalog, prefs(model.StraightUp, 3))
	require.NoError(t, err)
	assert.Equal(t, "first", ranked[0].Coffee.ID)
}

func TestRank_EmptyCatalog(t *testing.T) {
	_, err := Rank(nil, prefs(model.StraightUp, 2))
	assert.ErrorIs(t, err, ErrNoMatch)

	single := testCatalog()[:1]
	_, err = Best(single, prefs(model.StraightUp, 2), single[0].ID)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestBest_LightFruityScenario(t *testing.T) {
	catalog := []model.Coffee{
		{ID: "light", Roast: 2, Priority: 2,
			Notes: []model.FlavorNote{model.FlavorFruity, model.FlavorSweet, model.FlavorFloral}},
		{ID: "dark", Roast: 6, Priority: 1,
			Notes: []model.FlavorNote{model.FlavorRoasted, model.FlavorSpices}},
	}

	best, err := Best(catalog, prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral))
	require.NoError(t, err)
	assert.Equal(t, "light", best.Coffee.ID)
	assert.Equal(t, 30, best.Breakdown.Roast)
	assert.Equal(t, 10, best.Breakdown.Flavor)
}

type staticCatalog struct {
	err     error
	coffees []model.Coffee
}

func (s staticCatalog) Load(_ context.Context) ([]model.Coffee, error) {
	return s.coffees, s.err
}

func TestRecommender(t *testing.T) {
	ctx := context.Background()
	r := NewRecommender(staticCatalog{coffees: testCatalog()}, nil)
	p := prefs(model.StraightUp, 2, model.FlavorFruity, model.FlavorFloral)

	first, err := r.Recommend(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "ethiopia", first.Coffee.ID)

	second, err := r.Another(ctx, p, first.Coffee.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Coffee.ID, second.Coffee.ID)

	full, err := Rank(testCatalog(), p)
	require.NoError(t, err)
	assert.Equal(t, full[1].Coffee.ID, second.Coffee.ID)

	_, err = r.Another(ctx, p, "")
	assert.ErrorIs(t, err, model.ErrInvalidPreferences)
}

func TestRecommender_Errors(t *testing.T) {
	ctx := context.Background()
	p := prefs(model.StraightUp, 2)

	_, err := NewRecommender(staticCatalog{}, nil).Recommend(ctx, p)
	assert.ErrorIs(t, err, ErrNoMatch)

	loadErr := errors.New("catalog offline")
	_, err = NewRecommender(staticCatalog{err: loadErr}, nil).Recommend(ctx, p)
	assert.ErrorIs(t, err, loadErr)
}
