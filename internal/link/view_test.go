package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in   string
		want View
	}{
		{"all", View{Kind: KindAll}},
		{"favorites", View{Kind: KindFavorites}},
		{"read-later", View{Kind: KindReadLater}},
		{"trash", View{Kind: KindTrash}},
		{"folder:Work", View{Kind: KindFolder, Name: "Work"}},
		{"folder:a:b", View{Kind: KindFolder, Name: "a:b"}},
		{"tag:go", View{Kind: KindTag, Name: "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseView(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	for _, bad := range []string{"", "folder:", "tag:", "recent"} {
		_, err := ParseView(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestScopedToFolder(t *testing.T) {
	assert.True(t, FolderView("Marketing").ScopedToFolder("Marketing"))
	assert.False(t, FolderView("Marketing").ScopedToFolder("Work"))
	assert.False(t, TagView("Marketing").ScopedToFolder("Marketing"))
}

func TestFilter(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deletedEarly := base.Add(48 * time.Hour)
	deletedLate := base.Add(72 * time.Hour)

	links := []Link{
		{ID: "old", Title: "Old news", Folder: Work, CreatedAt: base, Tags: []string{"news"}},
		{ID: "fav", Title: "Favorite", Folder: Fun, CreatedAt: base.Add(time.Hour), IsFavorite: true},
		{ID: "later", Title: "Read me", Description: "Long Article", Folder: Work, CreatedAt: base.Add(2 * time.Hour), ReadLater: true},
		{ID: "trash-a", Title: "Trashed A", Folder: Work, CreatedAt: base.Add(3 * time.Hour), IsDeleted: true, DeletedAt: &deletedLate},
		{ID: "trash-b", Title: "Trashed B", Folder: Work, CreatedAt: base.Add(4 * time.Hour), IsDeleted: true, DeletedAt: &deletedEarly, IsFavorite: true},
	}

	ids := func(ls []Link) []string {
		out := make([]string, 0, len(ls))
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}

	assert.Equal(t, []string{"later", "fav", "old"}, ids(Filter(links, View{Kind: KindAll}, "")))
	assert.Equal(t, []string{"fav"}, ids(Filter(links, View{Kind: KindFavorites}, "")))
	assert.Equal(t, []string{"later"}, ids(Filter(links, View{Kind: KindReadLater}, "")))
	assert.Equal(t, []string{"trash-a", "trash-b"}, ids(Filter(links, View{Kind: KindTrash}, "")))
	assert.Equal(t, []string{"later", "old"}, ids(Filter(links, FolderView(Work), "")))
	assert.Equal(t, []string{"old"}, ids(Filter(links, TagView("news"), "")))

	t.Run("search matches title, description and tags", func(t *testing.T) {
		assert.Equal(t, []string{"later"}, ids(Filter(links, View{Kind: KindAll}, "article")))
		assert.Equal(t, []string{"old"}, ids(Filter(links, View{Kind: KindAll}, "NEWS")))
		assert.Empty(t, Filter(links, View{Kind: KindAll}, "trashed"))
	})
}

func TestTags(t *testing.T) {
	links := []Link{{Tags: []string{"a", "b"}}, {Tags: []string{"b", "c"}}}
	assert.Equal(t, []string{"a", "b", "c"}, Tags(links))
}
