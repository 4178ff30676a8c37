package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bkarpinos/linkvault/internal/link"
)

// TimeLayout is the canonical textual timestamp: ISO-8601 UTC with
// millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout, any RFC 3339 timestamp and bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// LinkRecord is the persisted and exported form of a link.
type LinkRecord struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Folder         string   `json:"folder"`
	Tags           []string `json:"tags"`
	IsFavorite     bool     `json:"isFavorite"`
	ReadLater      bool     `json:"readLater"`
	CreatedAt      string   `json:"createdAt"`
	IsDeleted      *bool    `json:"isDeleted,omitempty"`
	DeletedAt      string   `json:"deletedAt,omitempty"`
	OriginalFolder string   `json:"originalFolder,omitempty"`
}

// EncodeLink converts a link to its record form. Trash fields are omitted
// for links that are not deleted.
func EncodeLink(l link.Link) LinkRecord {
	deleted := l.IsDeleted
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}

	r := LinkRecord{
		ID:          l.ID,
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Folder:      l.Folder,
		Tags:        tags,
		IsFavorite:  l.IsFavorite,
		ReadLater:   l.ReadLater,
		CreatedAt:   FormatTime(l.CreatedAt),
		IsDeleted:   &deleted,
	}
	if l.IsDeleted {
		if l.DeletedAt != nil {
			r.DeletedAt = FormatTime(*l.DeletedAt)
		}
		r.OriginalFolder = l.OriginalFolder
	}
	return r
}

// EncodeLinks converts a list of links.
func EncodeLinks(links []link.Link) []LinkRecord {
	out := make([]LinkRecord, 0, len(links))
	for _, l := range links {
		out = append(out, EncodeLink(l))
	}
	return out
}

// DecodeLink parses a record strictly: the id and every timestamp present
// must be valid.
func DecodeLink(r LinkRecord) (link.Link, error) {
	return decodeLink(r, true)
}

// decodeLink parses a record. In lenient mode unparseable timestamps become
// zero values instead of errors and the fields a stored link must carry are
// repaired; a missing id is always an error.
func decodeLink(r LinkRecord, strict bool) (link.Link, error) {
	if r.ID == "" {
		return link.Link{}, errors.New("link record has no id")
	}

	l := link.Link{
		ID:          r.ID,
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Folder:      r.Folder,
		Tags:        link.NormalizeTags(r.Tags),
		IsFavorite:  r.IsFavorite,
		ReadLater:   r.ReadLater,
		IsDeleted:   r.IsDeleted != nil && *r.IsDeleted,
	}

	created, err := ParseTime(r.CreatedAt)
	if err != nil && strict {
		return link.Link{}, fmt.Errorf("link %s: createdAt: %w", r.ID, err)
	}
	l.CreatedAt = created
	if !strict {
		repairLink(&l)
	}

	if !l.IsDeleted {
		return l, nil
	}

	if r.DeletedAt != "" {
		deletedAt, err := ParseTime(r.DeletedAt)
		switch {
		case err == nil:
			l.DeletedAt = &deletedAt
		case strict:
			return link.Link{}, fmt.Errorf("link %s: deletedAt: %w", r.ID, err)
		}
	}
	l.OriginalFolder = r.OriginalFolder
	if !strict && link.ValidateFolderName(l.OriginalFolder) != nil {
		l.OriginalFolder = ""
	}
	return l, nil
}

// repairLink fills in what older records may lack: a scheme on the URL, a
// title and a usable folder.
func repairLink(l *link.Link) {
	l.URL = link.NormalizeURL(l.URL)
	if l.Title = strings.TrimSpace(l.Title); l.Title == "" {
		l.Title = l.URL
	}
	l.Folder = strings.TrimSpace(l.Folder)
	if link.ValidateFolderName(l.Folder) != nil {
		l.Folder = link.Personal
	}
}
