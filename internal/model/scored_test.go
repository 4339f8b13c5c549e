package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoredCandidates_Sort(t *testing.T) {
	candidates := ScoredCandidates{
		{Coffee: Coffee{ID: "a", Priority: 5}, Score: 40},
		{Coffee: Coffee{ID: "b", Priority: 1}, Score: 55},
		{Coffee: Coffee{ID: "c", Priority: 2}, Score: 40},
		{Coffee: Coffee{ID: "d", Priority: 2}, Score: 40},
	}

	candidates.Sort()

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Coffee.ID
	}
	// c and d tie on score and priority, so they keep their input order.
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids)
}

func TestScoredCandidates_Top(t *testing.T) {
	var empty ScoredCandidates
	assert.Nil(t, empty.Top())

	candidates := ScoredCandidates{
		{Coffee: Coffee{ID: "low"}, Score: 10},
		{Coffee: Coffee{ID: "high"}, Score: 20},
	}
	top := candidates.Top()
	require.NotNil(t, top)
	assert.Equal(t, "high", top.Coffee.ID)
}

func TestScoreBreakdown_Total(t *testing.T) {
	b := ScoreBreakdown{Roast: 30, Flavor: 10, Style: 5, Priority: 8}
	assert.Equal(t, 53, b.Total())
}

func TestCoffee_HasNote(t *testing.T) {
	c := Coffee{Notes: []FlavorNote{FlavorFruity, FlavorSweet}}
	assert.True(t, c.HasNote(FlavorSweet))
	assert.False(t, c.HasNote(FlavorNutty))
	assert.Equal(t, []string{"fruity", "sweet"}, c.NoteNames())
}
