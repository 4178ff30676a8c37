package transfer

import (
	"strings"
	"time"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

// Sheet is one named table of cells. The first row holds the headers.
type Sheet struct {
	Name   string
	Rows   [][]string
	Widths []float64
}

// Workbook is an ordered set of sheets.
type Workbook struct {
	Sheets []Sheet
}

// find returns the first sheet whose name contains any of the keys.
func (wb Workbook) find(keys ...string) (Sheet, bool) {
	for _, s := range wb.Sheets {
		for _, k := range keys {
			if strings.Contains(s.Name, k) {
				return s, true
			}
		}
	}
	return Sheet{}, false
}

// Sheet names written on export.
const (
	LinksSheet    = "الروابط - Links"
	FoldersSheet  = "المجلدات - Folders"
	SettingsSheet = "الإعدادات - Settings"
)

// column is a header written bilingually and also accepted in its plain
// English form.
type column struct {
	bilingual string
	plain     string
}

var (
	colTitle       = column{"العنوان / Title", "Title"}
	colURL         = column{"الرابط / URL", "URL"}
	colDescription = column{"الوصف / Description", "Description"}
	colFolder      = column{"المجلد / Folder", "Folder"}
	colTags        = column{"الوسوم / Tags", "Tags"}
	colFavorite    = column{"مفضل / Favorite", "Favorite"}
	colReadLater   = column{"قراءة لاحقاً / Read Later", "Read Later"}
	colCreated     = column{"تاريخ الإنشاء / Created", "Created"}
	colImage       = column{"رابط الصورة / Image URL", "Image URL"}
	colFolderName  = column{"اسم المجلد / Folder Name", "Folder Name"}
	colSetting     = column{"الإعداد / Setting", "Setting"}
	colValue       = column{"القيمة / Value", "Value"}

	linkColumns = []column{
		colTitle, colURL, colDescription, colFolder, colTags,
		colFavorite, colReadLater, colCreated, colImage,
	}
	linkWidths = []float64{30, 50, 40, 15, 25, 15, 15, 25, 50}
)

// Setting labels and values.
const (
	settingDarkMode    = "الوضع المظلم / Dark Mode"
	settingLanguage    = "اللغة / Language"
	settingViewLayout  = "تخطيط العرض / View Layout"
	settingCurrentView = "العرض الحالي / Current View"

	markYes      = "نعم / Yes"
	markNo       = "لا / No"
	markEnabled  = "مفعل / Enabled"
	markDisabled = "معطل / Disabled"
	markArabic   = "العربية / Arabic"
	markEnglish  = "الإنجليزية / English"
)

func yesNo(b bool) string {
	if b {
		return markYes
	}
	return markNo
}

// ToWorkbook lays a snapshot out as links, folders and settings sheets with
// bilingual headers.
func ToWorkbook(snap *Snapshot) Workbook {
	links := Sheet{Name: LinksSheet, Widths: linkWidths}
	header := make([]string, 0, len(linkColumns))
	for _, c := range linkColumns {
		header = append(header, c.bilingual)
	}
	links.Rows = append(links.Rows, header)
	for _, r := range snap.Links {
		links.Rows = append(links.Rows, []string{
			r.Title,
			r.URL,
			r.Description,
			r.Folder,
			strings.Join(r.Tags, ", "),
			yesNo(r.IsFavorite),
			yesNo(r.ReadLater),
			r.CreatedAt,
			r.Image,
		})
	}

	folders := Sheet{Name: FoldersSheet, Widths: []float64{25}}
	folders.Rows = append(folders.Rows, []string{colFolderName.bilingual})
	for _, f := range snap.Folders {
		folders.Rows = append(folders.Rows, []string{f})
	}

	darkMode, language := markDisabled, markEnglish
	if snap.Settings.DarkMode {
		darkMode = markEnabled
	}
	if snap.Settings.Language == link.Arabic {
		language = markArabic
	}
	settings := Sheet{
		Name:   SettingsSheet,
		Widths: []float64{30, 20},
		Rows: [][]string{
			{colSetting.bilingual, colValue.bilingual},
			{settingDarkMode, darkMode},
			{settingLanguage, language},
			{settingViewLayout, string(snap.Settings.ViewLayout)},
			{settingCurrentView, snap.Settings.CurrentView},
		},
	}

	return Workbook{Sheets: []Sheet{links, folders, settings}}
}

// table gives access to a sheet's rows by header.
type table struct {
	index map[string]int
	rows  [][]string
}

func newTable(s Sheet) table {
	t := table{index: map[string]int{}}
	if len(s.Rows) == 0 {
		return t
	}
	for i, h := range s.Rows[0] {
		t.index[strings.TrimSpace(h)] = i
	}
	t.rows = s.Rows[1:]
	return t
}

// get returns the trimmed cell of row under column c, trying the bilingual
// header first.
func (t table) get(row []string, c column) string {
	for _, h := range []string{c.bilingual, c.plain} {
		i, ok := t.index[h]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

// isYes reads a yes/no marker in either language.
func isYes(s string) bool {
	return strings.Contains(s, "نعم") || strings.Contains(strings.ToLower(s), "yes")
}

// FromWorkbook converts a spreadsheet into a snapshot. The links sheet is
// found by name or taken to be the first sheet. Rows without a URL are
// skipped, imported links get fresh ids and folders listed in the sheet
// are added to the protected ones.
func FromWorkbook(wb Workbook, now time.Time) (*Snapshot, error) {
	const op = "transfer.FromWorkbook"

	sheet, ok := wb.find("Links", "الروابط")
	if !ok {
		if len(wb.Sheets) == 0 {
			return nil, errx.Errorf(op, errx.Invalid, "workbook has no sheets")
		}
		sheet = wb.Sheets[0]
	}

	snap := &Snapshot{
		Links:      []storage.LinkRecord{},
		Settings:   link.DefaultSettings(),
		ExportDate: storage.FormatTime(now),
		Version:    Version,
	}

	t := newTable(sheet)
	for _, row := range t.rows {
		url := t.get(row, colURL)
		if url == "" {
			continue
		}
		l := link.NewLink(link.Params{
			URL:         url,
			Title:       t.get(row, colTitle),
			Description: t.get(row, colDescription),
			Image:       t.get(row, colImage),
			Folder:      t.get(row, colFolder),
			Tags:        link.SplitTags(t.get(row, colTags)),
			IsFavorite:  isYes(t.get(row, colFavorite)),
			ReadLater:   isYes(t.get(row, colReadLater)),
		}, now)
		if l.Title == "" {
			l.Title = l.URL
		}
		if created, err := storage.ParseTime(t.get(row, colCreated)); err == nil {
			l.CreatedAt = created
		}
		snap.Links = append(snap.Links, storage.EncodeLink(*l))
	}

	var custom []string
	if fs, ok := wb.find("Folders", "المجلدات"); ok {
		ft := newTable(fs)
		for _, row := range ft.rows {
			custom = append(custom, ft.get(row, colFolderName))
		}
	}
	snap.Folders = link.MergeFolders(link.DefaultFolders(), custom)

	if ss, ok := wb.find("Settings", "الإعدادات"); ok {
		readSettings(newTable(ss), &snap.Settings)
	}

	return snap, nil
}

// readSettings applies recognized setting rows. Unknown rows and values are
// ignored.
func readSettings(t table, s *link.Settings) {
	for _, row := range t.rows {
		name := t.get(row, colSetting)
		value := t.get(row, colValue)
		switch {
		case strings.Contains(name, "Dark Mode") || strings.Contains(name, "الوضع المظلم"):
			s.DarkMode = strings.Contains(value, "Enabled") || strings.Contains(value, "مفعل")
		case strings.Contains(name, "Language") || strings.Contains(name, "اللغة"):
			switch {
			case strings.Contains(value, "Arabic") || strings.Contains(value, "العربية") || value == string(link.Arabic):
				s.Language = link.Arabic
			case strings.Contains(value, "English") || strings.Contains(value, "الإنجليزية") || value == string(link.English):
				s.Language = link.English
			}
		case strings.Contains(name, "View Layout") || strings.Contains(name, "تخطيط العرض"):
			if layout := link.ViewLayout(value); layout.Valid() {
				s.ViewLayout = layout
			}
		case strings.Contains(name, "Current View") || strings.Contains(name, "العرض الحالي"):
			if _, err := link.ParseView(value); err == nil {
				s.CurrentView = value
			}
		}
	}
}
