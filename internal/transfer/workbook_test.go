package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

var importTime = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func TestFromWorkbookBilingualHeaders(t *testing.T) {
	wb := Workbook{Sheets: []Sheet{
		{Name: "الروابط - Links", Rows: [][]string{
			{"العنوان / Title", "الرابط / URL", "الوصف / Description", "المجلد / Folder", "الوسوم / Tags", "مفضل / Favorite", "قراءة لاحقاً / Read Later", "تاريخ الإنشاء / Created", "رابط الصورة / Image URL"},
			{"Go", "https://go.dev", "The Go site", "Study", "go, docs, go", "نعم / Yes", "لا / No", "2024-01-20", ""},
			{"", "example.com", "", "", "", "نعم", "Yes", "", "https://example.com/a.png"},
			{"No URL", "", "", "", "", "", "", "", ""},
		}},
		{Name: "المجلدات - Folders", Rows: [][]string{
			{"اسم المجلد / Folder Name"},
			{"Reading"},
			{""},
			{"Work"},
		}},
		{Name: "الإعدادات - Settings", Rows: [][]string{
			{"الإعداد / Setting", "القيمة / Value"},
			{"الوضع المظلم / Dark Mode", "مفعل / Enabled"},
			{"اللغة / Language", "الإنجليزية / English"},
			{"تخطيط العرض / View Layout", "list"},
			{"العرض الحالي / Current View", "nonsense"},
		}},
	}}

	snap, err := FromWorkbook(wb, importTime)
	require.NoError(t, err)
	require.Len(t, snap.Links, 2)

	first, err := storage.DecodeLink(snap.Links[0])
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Go", first.Title)
	assert.Equal(t, "https://go.dev", first.URL)
	assert.Equal(t, link.Study, first.Folder)
	assert.Equal(t, []string{"go", "docs"}, first.Tags)
	assert.True(t, first.IsFavorite)
	assert.False(t, first.ReadLater)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), first.CreatedAt)

	second, err := storage.DecodeLink(snap.Links[1])
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "https://example.com", second.URL)
	assert.Equal(t, "https://example.com", second.Title)
	assert.Equal(t, link.Personal, second.Folder)
	assert.True(t, second.IsFavorite)
	assert.True(t, second.ReadLater)
	assert.Equal(t, importTime, second.CreatedAt)
	assert.Equal(t, "https://example.com/a.png", second.Image)

	assert.Equal(t, append(link.DefaultFolders(), "Reading"), snap.Folders)
	assert.Equal(t, link.Settings{DarkMode: true, Language: link.English, ViewLayout: link.LayoutList, CurrentView: link.ViewAll}, snap.Settings)
}

func TestFromWorkbookPlainHeaders(t *testing.T) {
	wb := Workbook{Sheets: []Sheet{
		{Name: "Export", Rows: [][]string{
			{"URL", "Title", "Tags", "Favorite", "Read Later", "Folder"},
			{"https://a.io", "A", "x,y", "no", "YES", "Fun"},
			{"https://b.io", "B"},
		}},
	}}

	snap, err := FromWorkbook(wb, importTime)
	require.NoError(t, err)
	require.Len(t, snap.Links, 2)

	a, err := storage.DecodeLink(snap.Links[0])
	require.NoError(t, err)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, []string{"x", "y"}, a.Tags)
	assert.False(t, a.IsFavorite)
	assert.True(t, a.ReadLater)
	assert.Equal(t, link.Fun, a.Folder)

	b, err := storage.DecodeLink(snap.Links[1])
	require.NoError(t, err)
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, []string{}, b.Tags)
	assert.Equal(t, link.Personal, b.Folder)

	assert.Equal(t, link.DefaultFolders(), snap.Folders)
	assert.Equal(t, link.DefaultSettings(), snap.Settings)
}

func TestFromWorkbookEmpty(t *testing.T) {
	_, err := FromWorkbook(Workbook{}, importTime)
	require.Error(t, err)
	assert.Equal(t, errx.Invalid, errx.KindOf(err))
}

func TestXLSXRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)
	settings := link.Settings{DarkMode: true, Language: link.Arabic, ViewLayout: link.LayoutCompact, CurrentView: "tag:go"}
	require.NoError(t, repo.Replace(storage.State{
		Links:    storedLinks()[:1],
		Folders:  append(link.DefaultFolders(), "Archive"),
		Settings: settings,
	}))

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ToWorkbook(svc.Export())))

	wb, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 3)
	assert.Equal(t, LinksSheet, wb.Sheets[0].Name)
	assert.Equal(t, FoldersSheet, wb.Sheets[1].Name)
	assert.Equal(t, SettingsSheet, wb.Sheets[2].Name)

	other, otherRepo, _ := newTestService(t)
	_, err = other.ImportWorkbook(wb)
	require.NoError(t, err)

	links := otherRepo.LoadLinks()
	require.Len(t, links, 1)
	want := storedLinks()[0]
	got := links[0]
	assert.NotEqual(t, want.ID, got.ID)
	got.ID = want.ID
	assert.Equal(t, want, got)

	assert.Equal(t, append(link.DefaultFolders(), "Archive"), otherRepo.LoadFolders())
	assert.Equal(t, settings, otherRepo.LoadSettings())
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.Equal(t, errx.Invalid, errx.KindOf(err))
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, Workbook{})
	assert.Equal(t, errx.Invalid, errx.KindOf(err))
}
