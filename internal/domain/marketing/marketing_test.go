package marketing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSales(t *testing.T) {
	parent, single := uuid.New(), uuid.New()
	items := []SoldItem{
		{ProductID: single, Amount: 2},
		{ProductID: uuid.New(), ParentID: &parent, Amount: 3},
		{ProductID: uuid.New(), ParentID: &parent, Amount: 1},
		{ProductID: uuid.New(), Orphan: true, Amount: 10},
	}

	sales := CalculateSales(items)
	require.Len(t, sales, 2)
	assert.Equal(t, ProductSales{ProductID: parent, Sales: 4}, sales[0])
	assert.Equal(t, ProductSales{ProductID: single, Sales: 2}, sales[1])
	assert.Empty(t, CalculateSales(nil))
}

func TestMergeExplicit(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	t.Run("insert at position", func(t *testing.T) {
		got := MergeExplicit([]uuid.UUID{a, b, c}, []Topseller{{ProductID: d, Position: 2}}, DefaultLimit)
		assert.Equal(t, []uuid.UUID{a, d, b, c}, got)
	})

	t.Run("move existing entry", func(t *testing.T) {
		got := MergeExplicit([]uuid.UUID{a, b, c}, []Topseller{{ProductID: c, Position: 1}}, DefaultLimit)
		assert.Equal(t, []uuid.UUID{c, a, b}, got)
	})

	t.Run("position clamps", func(t *testing.T) {
		got := MergeExplicit([]uuid.UUID{a}, []Topseller{{ProductID: b, Position: 0}, {ProductID: c, Position: 40}}, DefaultLimit)
		assert.Equal(t, []uuid.UUID{b, a, c}, got)
	})

	t.Run("limit", func(t *testing.T) {
		got := MergeExplicit([]uuid.UUID{a, b, c}, []Topseller{{ProductID: d, Position: 1}}, 2)
		assert.Equal(t, []uuid.UUID{d, a}, got)
	})
}

func TestNewTopseller(t *testing.T) {
	_, err := NewTopseller(uuid.Nil, 1)
	require.Error(t, err)

	ts, err := NewTopseller(uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, EventTypeTopsellerSaved, NewTopsellerSavedEvent(ts).EventType())
}
