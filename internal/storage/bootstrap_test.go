package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/linkvault/internal/link"
)

func TestBootstrapSeedsOnce(t *testing.T) {
	repo, _ := newTestRepo(t, "")
	seed := link.SeedLinks()

	seeded, err := repo.Bootstrap(seed)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, repo.LoadLinks(), len(seed))
	assert.True(t, repo.Store().Has(KeyInitialized))
	assert.True(t, repo.Store().Has(KeyLastStartup))

	require.NoError(t, repo.SaveLinks(nil))
	seeded, err = repo.Bootstrap(seed)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Empty(t, repo.LoadLinks())
}

func TestBootstrapKeepsExistingLinks(t *testing.T) {
	repo, _ := newTestRepo(t, `{"links":[{"id":"x","url":"https://x.io","title":"X","folder":"Fun","createdAt":"2024-01-01"}]}`)

	seeded, err := repo.Bootstrap(link.SeedLinks())
	require.NoError(t, err)
	assert.False(t, seeded)

	links := repo.LoadLinks()
	require.Len(t, links, 1)
	assert.Equal(t, "x", links[0].ID)
}

func TestBootstrapRepairsFoldersAndSettings(t *testing.T) {
	repo, _ := newTestRepo(t, `{"app_initialized":true,"folders":["Reading","Work"],"settings":{"darkMode":true}}`)

	seeded, err := repo.Bootstrap(link.SeedLinks())
	require.NoError(t, err)
	assert.False(t, seeded)

	assert.Equal(t, []string{"Reading", link.Work, link.Study, link.Fun, link.Personal}, repo.LoadFolders())

	var stored map[string]any
	require.True(t, repo.Store().Get(KeySettings, &stored))
	assert.Equal(t, "ar", stored["language"])
	assert.Equal(t, true, stored["darkMode"])
}

func TestStats(t *testing.T) {
	repo, _ := newTestRepo(t, "")
	require.NoError(t, repo.SaveLinks(sampleLinks()))

	s := repo.Stats()
	assert.Equal(t, 2, s.TotalLinks)
	assert.Equal(t, 1, s.ActiveLinks)
	assert.Equal(t, 1, s.TrashedLinks)
	assert.Equal(t, 1, s.FavoriteLinks)
	assert.Equal(t, 0, s.ReadLaterLinks)
	assert.Equal(t, 5, s.TotalFolders)
	assert.Equal(t, 2, s.TotalTags)
	assert.Positive(t, s.StorageBytes)
}
