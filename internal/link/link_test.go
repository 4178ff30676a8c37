package link

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLink(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLink(Params{
		URL:   " example.com/page ",
		Title: " Example ",
		Tags:  []string{"go", " go", "", "tools"},
	}, now)

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "https://example.com/page", l.URL)
	assert.Equal(t, "Example", l.Title)
	assert.Equal(t, Personal, l.Folder)
	assert.Equal(t, []string{"go", "tools"}, l.Tags)
	assert.Equal(t, now, l.CreatedAt)
	assert.False(t, l.IsDeleted)
	assert.Nil(t, l.DeletedAt)

	other := NewLink(Params{URL: "https://example.com", Title: "x"}, now)
	assert.NotEqual(t, l.ID, other.ID)
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"example.com":           "https://example.com",
		"http://example.com":    "http://example.com",
		"https://example.com/a": "https://example.com/a",
		"ftp://files.example":   "ftp://files.example",
		"mailto:me@example.com": "mailto:me@example.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), "input %q", in)
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitTags("a, b c,,d, a"))
	assert.Equal(t, []string{}, SplitTags(""))
}

func TestMarkDeletedAndRestore(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l := Link{ID: "1", Folder: "Marketing"}

	require.True(t, l.MarkDeleted(at))
	assert.True(t, l.IsDeleted)
	require.NotNil(t, l.DeletedAt)
	assert.Equal(t, at, *l.DeletedAt)
	assert.Equal(t, "Marketing", l.OriginalFolder)

	t.Run("second delete leaves trash state unchanged", func(t *testing.T) {
		c := l.Clone()
		assert.False(t, c.MarkDeleted(at.Add(time.Hour)))
		assert.Equal(t, at, *c.DeletedAt)
		assert.Equal(t, "Marketing", c.OriginalFolder)
	})

	// The folder field can drift while in the trash; restore ignores it.
	l.Folder = Personal
	require.True(t, l.Restore())
	assert.Equal(t, "Marketing", l.Folder)
	assert.False(t, l.IsDeleted)
	assert.Nil(t, l.DeletedAt)
	assert.Empty(t, l.OriginalFolder)

	assert.False(t, l.Restore())
	assert.Equal(t, "Marketing", l.Folder)
}

func TestRestoreWithoutOriginalFolder(t *testing.T) {
	at := time.Now()
	l := Link{ID: "1", Folder: "Gone", IsDeleted: true, DeletedAt: &at}
	require.True(t, l.Restore())
	assert.Equal(t, Personal, l.Folder)
}

func TestClone(t *testing.T) {
	at := time.Now()
	l := Link{ID: "1", Tags: []string{"a"}, DeletedAt: &at}
	c := l.Clone()
	c.Tags[0] = "b"
	*c.DeletedAt = at.Add(time.Hour)
	assert.Equal(t, "a", l.Tags[0])
	assert.Equal(t, at, *l.DeletedAt)
}

func TestValidate(t *testing.T) {
	valid := Link{ID: "1", URL: "https://example.com", Title: "Example", Folder: Work}
	assert.NoError(t, Validate(&valid))

	tests := []struct {
		name   string
		mutate func(*Link)
	}{
		{"missing id", func(l *Link) { l.ID = "" }},
		{"missing title", func(l *Link) { l.Title = "" }},
		{"missing folder", func(l *Link) { l.Folder = "" }},
		{"folder name too long", func(l *Link) { l.Folder = strings.Repeat("f", MaxFolderNameLength+1) }},
		{"folder with surrounding spaces", func(l *Link) { l.Folder = " Work " }},
		{"relative url", func(l *Link) { l.URL = "example.com" }},
		{"http without host", func(l *Link) { l.URL = "https:///path" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid.Clone()
			tt.mutate(&l)
			assert.Error(t, Validate(&l))
		})
	}
}

func TestFolders(t *testing.T) {
	assert.True(t, IsProtected(Work))
	assert.True(t, IsProtected(Personal))
	assert.False(t, IsProtected("Marketing"))
	assert.False(t, IsProtected("work"))

	defaults := DefaultFolders()
	defaults[0] = "changed"
	assert.Equal(t, Work, DefaultFolders()[0])

	links := []Link{{Folder: "Marketing"}, {Folder: Work}, {Folder: "Marketing"}}
	assert.Equal(t, []string{"Marketing", Work}, FoldersOf(links))

	merged := MergeFolders(DefaultFolders(), []string{"Reading", Fun, ""}, FoldersOf(links))
	assert.Equal(t, []string{Work, Study, Fun, Personal, "Reading", "Marketing"}, merged)
	assert.Equal(t, []string{}, MergeFolders())

	assert.NoError(t, ValidateFolderName("Reading"))
	assert.Error(t, ValidateFolderName(""))
	assert.Error(t, ValidateFolderName(" padded "))
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.Language = "fr"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.ViewLayout = "masonry"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.CurrentView = "folder:"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.CurrentView = "tag:go"
	assert.NoError(t, s.Validate())
}

func TestSeedLinks(t *testing.T) {
	seed := SeedLinks()
	require.NotEmpty(t, seed)
	for i := range seed {
		assert.NoError(t, Validate(&seed[i]), "seed link %s", seed[i].ID)
		assert.True(t, IsProtected(seed[i].Folder))
	}
}
