package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	_, err := New(" ", "about")
	require.Error(t, err)

	p, err := New("About", "About")
	require.NoError(t, err)
	assert.Equal(t, "about", p.Slug)
	assert.False(t, p.Active)

	p.Update("About us", "<p>hi</p>", true)
	assert.True(t, p.Active)
	assert.Equal(t, 2, p.GetVersion())

	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	saved, ok := events[1].(*PageSavedEvent)
	require.True(t, ok)
	assert.Equal(t, "about", saved.Slug)
}
