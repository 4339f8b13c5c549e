package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPreferences() Preferences {
	return Preferences{
		DrinkStyle: StraightUp,
		RoastLevel: RoastLightMedium,
		Flavors:    []FlavorNote{FlavorFruity, FlavorFloral},
		BrewMethod: BrewFilter,
	}
}

func TestPreferences_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Preferences)
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid preferences",
			mutate: func(_ *Preferences) {},
		},
		{
			name:   "no flavors selected",
			mutate: func(p *Preferences) { p.Flavors = nil },
		},
		{
			name: "too many flavors",
			mutate: func(p *Preferences) {
				p.Flavors = []FlavorNote{FlavorFruity, FlavorFloral, FlavorSweet, FlavorNutty}
			},
			wantErr: true,
			errMsg:  "at most 3 items",
		},
		{
			name:    "duplicate flavors",
			mutate:  func(p *Preferences) { p.Flavors = []FlavorNote{FlavorFruity, FlavorFruity} },
			wantErr: true,
			errMsg:  "duplicates",
		},
		{
			name:    "unknown flavor",
			mutate:  func(p *Preferences) { p.Flavors = []FlavorNote{"bacon"} },
			wantErr: true,
		},
		{
			name:    "missing drink style",
			mutate:  func(p *Preferences) { p.DrinkStyle = "" },
			wantErr: true,
			errMsg:  "DrinkStyle is required",
		},
		{
			name:    "unknown drink style",
			mutate:  func(p *Preferences) { p.DrinkStyle = "On the rocks" },
			wantErr: true,
		},
		{
			name:    "roast level too high",
			mutate:  func(p *Preferences) { p.RoastLevel = 7 },
			wantErr: true,
			errMsg:  "at most 6",
		},
		{
			name:    "roast level missing",
			mutate:  func(p *Preferences) { p.RoastLevel = 0 },
			wantErr: true,
		},
		{
			name:    "missing brew method",
			mutate:  func(p *Preferences) { p.BrewMethod = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPreferences()
			tt.mutate(&p)

			err := p.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPreferences)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestParseDrinkStyle(t *testing.T) {
	style, err := ParseDrinkStyle("  WITH MILK ")
	require.NoError(t, err)
	assert.Equal(t, WithMilk, style)

	style, err = ParseDrinkStyle("straight up")
	require.NoError(t, err)
	assert.Equal(t, StraightUp, style)

	_, err = ParseDrinkStyle("iced")
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestParseBrewMethod(t *testing.T) {
	method, err := ParseBrewMethod("Espresso")
	require.NoError(t, err)
	assert.Equal(t, BrewEspresso, method)

	_, err = ParseBrewMethod("cold brew")
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestParseFlavorNote(t *testing.T) {
	note, err := ParseFlavorNote(" Fruity")
	require.NoError(t, err)
	assert.Equal(t, FlavorFruity, note)

	_, err = ParseFlavorNote("smoky")
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestRoastLevel_String(t *testing.T) {
	assert.Equal(t, "Light", RoastLight.String())
	assert.Equal(t, "Extra Dark", RoastExtraDark.String())
	assert.Equal(t, "Roast(9)", RoastLevel(9).String())
	assert.True(t, RoastMedium.Valid())
	assert.False(t, RoastLevel(0).Valid())
}
