package testutil

import (
	"strings"

	"github.com/Veraticus/bean-scene/internal/model"
)

// CoffeeBuilder constructs catalog coffees with sensible defaults.
type CoffeeBuilder struct {
	coffee model.Coffee
}

// NewCoffee starts a medium roast coffee named after id.
func NewCoffee(id string) *CoffeeBuilder {
	return &CoffeeBuilder{coffee: model.Coffee{
		ID:       id,
		Name:     strings.ToUpper(id[:1]) + strings.ReplaceAll(id[1:], "-", " "),
		URL:      "https://shop.example.com/products/" + id,
		Roast:    model.RoastMedium,
		Priority: 5,
	}}
}

// Name sets the display name.
func (b *CoffeeBuilder) Name(name string) *CoffeeBuilder {
	b.coffee.Name = name
	return b
}

// Origin sets the origin.
func (b *CoffeeBuilder) Origin(origin string) *CoffeeBuilder {
	b.coffee.Origin = origin
	return b
}

// Roast sets the roast level.
func (b *CoffeeBuilder) Roast(r model.RoastLevel) *CoffeeBuilder {
	b.coffee.Roast = r
	return b
}

// Notes sets the flavor notes.
func (b *CoffeeBuilder) Notes(notes ...model.FlavorNote) *CoffeeBuilder {
	b.coffee.Notes = notes
	return b
}

// Priority sets the tie-break priority.
func (b *CoffeeBuilder) Priority(p int) *CoffeeBuilder {
	b.coffee.Priority = p
	return b
}

// Espresso marks the coffee as suited to espresso.
func (b *CoffeeBuilder) Espresso() *CoffeeBuilder {
	b.coffee.Espresso = true
	return b
}

// Milk marks the coffee as suited to milk drinks.
func (b *CoffeeBuilder) Milk() *CoffeeBuilder {
	b.coffee.Milk = true
	return b
}

// Verified marks the coffee as reviewed.
func (b *CoffeeBuilder) Verified() *CoffeeBuilder {
	b.coffee.Verified = true
	return b
}

// Build returns the coffee.
func (b *CoffeeBuilder) Build() model.Coffee {
	c := b.coffee
	c.Notes = append([]model.FlavorNote(nil), b.coffee.Notes...)
	return c
}
