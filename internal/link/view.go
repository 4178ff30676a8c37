package link

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// View selectors as persisted in Settings.CurrentView.
const (
	ViewAll       = "all"
	ViewFavorites = "favorites"
	ViewReadLater = "read-later"
	ViewTrash     = "trash"

	folderPrefix = "folder:"
	tagPrefix    = "tag:"
)

type ViewKind uint8

const (
	KindAll ViewKind = iota
	KindFavorites
	KindReadLater
	KindTrash
	KindFolder
	KindTag
)

// View is a parsed view selector. Name is set for folder and tag views.
type View struct {
	Kind ViewKind
	Name string
}

// ParseView parses a selector such as "favorites" or "folder:Work".
func ParseView(s string) (View, error) {
	switch s {
	case ViewAll:
		return View{Kind: KindAll}, nil
	case ViewFavorites:
		return View{Kind: KindFavorites}, nil
	case ViewReadLater:
		return View{Kind: KindReadLater}, nil
	case ViewTrash:
		return View{Kind: KindTrash}, nil
	}
	if name, ok := strings.CutPrefix(s, folderPrefix); ok && name != "" {
		return View{Kind: KindFolder, Name: name}, nil
	}
	if name, ok := strings.CutPrefix(s, tagPrefix); ok && name != "" {
		return View{Kind: KindTag, Name: name}, nil
	}
	return View{}, fmt.Errorf("unknown view %q", s)
}

// FolderView returns the selector for a folder.
func FolderView(name string) View { return View{Kind: KindFolder, Name: name} }

// TagView returns the selector for a tag.
func TagView(name string) View { return View{Kind: KindTag, Name: name} }

func (v View) String() string {
	switch v.Kind {
	case KindFavorites:
		return ViewFavorites
	case KindReadLater:
		return ViewReadLater
	case KindTrash:
		return ViewTrash
	case KindFolder:
		return folderPrefix + v.Name
	case KindTag:
		return tagPrefix + v.Name
	default:
		return ViewAll
	}
}

// ScopedToFolder reports whether the view shows exactly the named folder.
func (v View) ScopedToFolder(name string) bool {
	return v.Kind == KindFolder && v.Name == name
}

// Matches reports whether l belongs in the view. The trash view holds only
// deleted links; every other view excludes them.
func (v View) Matches(l *Link) bool {
	if v.Kind == KindTrash {
		return l.IsDeleted
	}
	if l.IsDeleted {
		return false
	}
	switch v.Kind {
	case KindFavorites:
		return l.IsFavorite
	case KindReadLater:
		return l.ReadLater
	case KindFolder:
		return l.Folder == v.Name
	case KindTag:
		return l.HasTag(v.Name)
	default:
		return true
	}
}

// Filter returns the links visible in view that match search, newest first.
// Trashed links sort by deletion time.
func Filter(links []Link, view View, search string) []Link {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]Link, 0, len(links))
	for i := range links {
		l := &links[i]
		if !view.Matches(l) {
			continue
		}
		if needle != "" && !matchesSearch(l, needle) {
			continue
		}
		out = append(out, *l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortTime(&out[i], view).After(sortTime(&out[j], view))
	})
	return out
}

func matchesSearch(l *Link, needle string) bool {
	if strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Description), needle) {
		return true
	}
	for _, t := range l.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func sortTime(l *Link, view View) time.Time {
	if view.Kind == KindTrash && l.DeletedAt != nil {
		return *l.DeletedAt
	}
	return l.CreatedAt
}

// Tags returns the distinct tags across links, in first-seen order.
func Tags(links []Link) []string {
	var all []string
	for _, l := range links {
		all = append(all, l.Tags...)
	}
	return NormalizeTags(all)
}
