package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("creates root category", func(t *testing.T) {
		c, err := NewCategory("Shirts", "Shirts")
		require.NoError(t, err)
		assert.Equal(t, "shirts", c.Slug)
		assert.True(t, c.IsRoot())
		assert.Equal(t, c.ID.String(), c.Path)
		assert.Equal(t, "Shirts", c.GetMetaTitle())

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCategorySaved, events[0].EventType())
	})

	t.Run("rejects invalid slug", func(t *testing.T) {
		_, err := NewCategory("Shirts", "shirts and more")
		require.Error(t, err)
		_, err = NewCategory("", "shirts")
		require.Error(t, err)
	})
}

func TestCategoryTree(t *testing.T) {
	root, err := NewCategory("Clothes", "clothes")
	require.NoError(t, err)
	child, err := NewChildCategory("Shirts", "shirts", root)
	require.NoError(t, err)
	grandchild, err := NewChildCategory("Polo", "polo", child)
	require.NoError(t, err)

	assert.Equal(t, 2, grandchild.Level)
	assert.Equal(t, *grandchild.ParentID, child.ID)
	assert.Equal(t, []uuid.UUID{root.ID, child.ID}, grandchild.GetAncestorIDs())
	assert.True(t, root.IsAncestorOf(grandchild))
	assert.False(t, grandchild.IsAncestorOf(root))
	assert.Empty(t, root.GetAncestorIDs())

	_, err = NewChildCategory("Orphan", "orphan", nil)
	require.Error(t, err)
}

func TestCategoryMutations(t *testing.T) {
	c, err := NewCategory("Shirts", "shirts")
	require.NoError(t, err)
	c.ClearDomainEvents()

	c.SetShowAllProducts(true)
	c.SetPosition(10)
	c.MarkDeleted()

	events := c.GetDomainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventTypeCategoryDeleted, events[2].EventType())
	assert.True(t, c.ShowAllProducts)
	assert.Equal(t, 3, c.GetVersion())
}
