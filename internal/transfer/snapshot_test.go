package transfer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/kvstore"
	"github.com/bkarpinos/linkvault/internal/library"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

var exportTime = time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storage.Repository, *kvstore.Memory) {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	mem := kvstore.NewMemory(nil)
	clock := func() time.Time { return exportTime }
	repo := storage.NewRepository(kvstore.New(mem), storage.WithLogger(logger), storage.WithClock(clock))
	return New(repo, WithLogger(logger), WithClock(clock)), repo, mem
}

func storedLinks() []link.Link {
	deletedAt := time.Date(2025, 4, 1, 8, 0, 0, 250_000_000, time.UTC)
	return []link.Link{
		{
			ID:         "1",
			URL:        "https://go.dev",
			Title:      "Go",
			Folder:     link.Study,
			Tags:       []string{"go", "docs"},
			IsFavorite: true,
			CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:             "2",
			URL:            "https://example.com",
			Title:          "Old",
			Description:    "in the trash",
			Folder:         "Archive",
			Tags:           []string{},
			ReadLater:      true,
			CreatedAt:      time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			IsDeleted:      true,
			DeletedAt:      &deletedAt,
			OriginalFolder: "Archive",
		},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)
	settings := link.Settings{DarkMode: true, Language: link.English, ViewLayout: link.LayoutList, CurrentView: "folder:Archive"}
	require.NoError(t, repo.Replace(storage.State{
		Links:    storedLinks(),
		Folders:  append(link.DefaultFolders(), "Archive"),
		Settings: settings,
	}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportJSON(&buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, Version, doc["version"])
	assert.Equal(t, "2025-05-04T03:02:01.000Z", doc["exportDate"])

	other, otherRepo, _ := newTestService(t)
	snap, err := other.Import(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, Summary{Links: 2, Trashed: 1, Folders: 5}, snap.Summary())

	assert.Equal(t, storedLinks(), otherRepo.LoadLinks())
	assert.Equal(t, append(link.DefaultFolders(), "Archive"), otherRepo.LoadFolders())
	assert.Equal(t, settings, otherRepo.LoadSettings())
}

func TestLibraryLinksSurviveExportImport(t *testing.T) {
	svc, repo, _ := newTestService(t)
	lib := library.New(repo, library.WithClock(func() time.Time { return exportTime }))

	_, err := lib.Create(link.Params{URL: "go.dev", Title: "Go", Folder: strings.Repeat("f", 70)})
	require.Error(t, err)
	assert.Equal(t, errx.Invalid, errx.KindOf(err))

	created, err := lib.Create(link.Params{URL: "go.dev", Title: "Go", Folder: "  Reading List  ", Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = lib.Update(created.ID, link.Params{URL: "go.dev", Title: "Go", Folder: strings.Repeat("g", 65)})
	assert.Equal(t, errx.Invalid, errx.KindOf(err))
	trashed, err := lib.Create(link.Params{URL: "example.com", Title: "Old", Folder: "Archive"})
	require.NoError(t, err)
	_, err = lib.SoftDelete(trashed.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportJSON(&buf))

	other, otherRepo, _ := newTestService(t)
	_, err = other.Import(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, repo.LoadLinks(), otherRepo.LoadLinks())
	assert.Equal(t, repo.LoadFolders(), otherRepo.LoadFolders())
}

func TestLegacyRecordsSurviveExportImport(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	mem := kvstore.NewMemory([]byte(`{"links":[
		{"id":"1","url":"https://a.b","title":"A","createdAt":"2024-01-20T00:00:00.000Z"},
		{"id":"2","url":"c.d","createdAt":"yesterday","folder":" Fun "}
	],"folders":["Work"," bad ",""]}`))
	repo := storage.NewRepository(kvstore.New(mem), storage.WithLogger(logger))
	svc := New(repo, WithLogger(logger), WithClock(func() time.Time { return exportTime }))
	legacy := repo.LoadLinks()
	require.Len(t, legacy, 2)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportJSON(&buf))

	other, otherRepo, _ := newTestService(t)
	_, err := other.Import(buf.Bytes())
	require.NoError(t, err)

	links := otherRepo.LoadLinks()
	assert.Equal(t, legacy, links)
	assert.Equal(t, link.Personal, links[0].Folder)
	assert.Equal(t, "https://c.d", links[1].Title)
	assert.Equal(t, link.Fun, links[1].Folder)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]string{
		"not json":             `links`,
		"not an object":        `[]`,
		"missing settings":     `{"links":[],"folders":[]}`,
		"missing links":        `{"folders":[],"settings":{}}`,
		"missing folders":      `{"links":[],"settings":{}}`,
		"null settings":        `{"links":[],"folders":[],"settings":null}`,
		"links not array":      `{"links":{},"folders":[],"settings":{}}`,
		"link not object":      `{"links":["x"],"folders":[],"settings":{}}`,
		"folders not strings":  `{"links":[],"folders":[1],"settings":{}}`,
		"settings not object":  `{"links":[],"folders":[],"settings":"dark"}`,
		"bad language":         `{"links":[],"folders":[],"settings":{"language":"fr"}}`,
		"bad view":             `{"links":[],"folders":[],"settings":{"currentView":"folder:"}}`,
		"blank folder":         `{"links":[],"folders":[""],"settings":{}}`,
		"link without id":      `{"links":[{"url":"https://x.io","title":"x","folder":"Work","createdAt":"2024-01-01"}],"folders":[],"settings":{}}`,
		"link bad date":        `{"links":[{"id":"1","url":"https://x.io","title":"x","folder":"Work","createdAt":"soon"}],"folders":[],"settings":{}}`,
		"link without url":     `{"links":[{"id":"1","title":"x","folder":"Work","createdAt":"2024-01-01"}],"folders":[],"settings":{}}`,
		"duplicate link ids":   `{"links":[{"id":"1","url":"https://x.io","title":"x","folder":"Work","createdAt":"2024-01-01"},{"id":"1","url":"https://y.io","title":"y","folder":"Work","createdAt":"2024-01-01"}],"folders":[],"settings":{}}`,
		"link with bad delete": `{"links":[{"id":"1","url":"https://x.io","title":"x","folder":"Work","createdAt":"2024-01-01","isDeleted":true,"deletedAt":"never"}],"folders":[],"settings":{}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Validate([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errx.Invalid, errx.KindOf(err))
		})
	}
}

func TestValidateBackfillsSettings(t *testing.T) {
	snap, err := Validate([]byte(`{"links":[],"folders":["Work"],"settings":{"darkMode":true}}`))
	require.NoError(t, err)
	assert.Equal(t, link.Settings{DarkMode: true, Language: link.Arabic, ViewLayout: link.LayoutGrid, CurrentView: link.ViewAll}, snap.Settings)
}

func TestRejectedImportLeavesStateUntouched(t *testing.T) {
	svc, repo, mem := newTestService(t)
	require.NoError(t, repo.SaveLinks(storedLinks()))
	before := mem.Bytes()

	_, err := svc.Import([]byte(`{"links":[],"folders":[]}`))
	require.Error(t, err)
	assert.Equal(t, errx.Invalid, errx.KindOf(err))

	assert.Equal(t, before, mem.Bytes())
	assert.Equal(t, storedLinks(), repo.LoadLinks())
}

func TestImportReplacesEverything(t *testing.T) {
	svc, repo, _ := newTestService(t)
	require.NoError(t, repo.SaveLinks(storedLinks()))
	require.NoError(t, repo.SaveFolders([]string{"Archive"}))

	_, err := svc.Import([]byte(`{
		"links":[{"id":"n","url":"https://new.io","title":"New","folder":"Fun","tags":["a"],"isFavorite":false,"readLater":false,"createdAt":"2024-06-01T00:00:00.000Z"}],
		"folders":["Work","Study","Fun","Personal"],
		"settings":{"darkMode":false,"language":"en","viewLayout":"compact","currentView":"all"}
	}`))
	require.NoError(t, err)

	links := repo.LoadLinks()
	require.Len(t, links, 1)
	assert.Equal(t, "n", links[0].ID)
	assert.False(t, links[0].IsDeleted)
	assert.Equal(t, link.DefaultFolders(), repo.LoadFolders())
	assert.Equal(t, link.LayoutCompact, repo.LoadSettings().ViewLayout)
}

func TestApplyStorageFailure(t *testing.T) {
	svc, repo, mem := newTestService(t)
	require.NoError(t, repo.SaveLinks(storedLinks()))
	mem.FailSaves(true)

	err := svc.Apply(&Snapshot{Links: []storage.LinkRecord{}, Folders: []string{}, Settings: link.DefaultSettings()})
	require.Error(t, err)
	assert.Equal(t, errx.Unavailable, errx.KindOf(err))

	mem.FailSaves(false)
	assert.Len(t, repo.LoadLinks(), 2)
}

func TestApplyNil(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.Equal(t, errx.Invalid, errx.KindOf(svc.Apply(nil)))
}
