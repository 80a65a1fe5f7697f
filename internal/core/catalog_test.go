package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	food, ok := c.Lookup("food", Expense)
	assert.True(t, ok)
	assert.Equal(t, "#ef4444", food.Color)

	_, ok = c.Lookup("food", Income)
	assert.False(t, ok, "type must match")

	_, ok = c.Lookup("missing", Expense)
	assert.False(t, ok)
}

func TestCatalogByType(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c.ByType(Expense), 6)
	assert.Len(t, c.ByType(Income), 4)
	assert.Len(t, c.All(), 10)
}

func TestCatalogIgnoresDuplicates(t *testing.T) {
	c := NewCatalog([]Category{
		{ID: "a", Type: Expense},
		{ID: "a", Type: Income},
	})
	assert.Len(t, c.All(), 1)
	_, ok := c.Lookup("a", Expense)
	assert.True(t, ok)
}

func TestCatalogAllIsACopy(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	all[0].Name = "changed"
	assert.Equal(t, "Food", c.All()[0].Name)
}
