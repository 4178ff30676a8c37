package link

import (
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Link represents a saved bookmark with its organization and trash state
type Link struct {
	ID          string
	URL         string
	Title       string
	Description string
	Image       string
	Folder      string
	Tags        []string
	IsFavorite  bool
	ReadLater   bool
	CreatedAt   time.Time

	// Trash state. DeletedAt and OriginalFolder are only set while IsDeleted.
	IsDeleted      bool
	DeletedAt      *time.Time
	OriginalFolder string
}

// Params holds the user-editable fields of a link
type Params struct {
	URL         string
	Title       string
	Description string
	Image       string
	Folder      string
	Tags        []string
	IsFavorite  bool
	ReadLater   bool
}

// NewLink creates a new link with a fresh id, stamped at now
func NewLink(p Params, now time.Time) *Link {
	l := &Link{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	l.Apply(p)
	return l
}

// Apply overwrites the editable fields from p. Identity, creation time and
// trash state are left alone.
func (l *Link) Apply(p Params) {
	l.URL = NormalizeURL(p.URL)
	l.Title = strings.TrimSpace(p.Title)
	l.Description = strings.TrimSpace(p.Description)
	l.Image = strings.TrimSpace(p.Image)
	l.Folder = strings.TrimSpace(p.Folder)
	if l.Folder == "" {
		l.Folder = Personal
	}
	l.Tags = NormalizeTags(p.Tags)
	l.IsFavorite = p.IsFavorite
	l.ReadLater = p.ReadLater
}

// Params returns the editable fields of l.
func (l *Link) Params() Params {
	return Params{
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Folder:      l.Folder,
		Tags:        append([]string(nil), l.Tags...),
		IsFavorite:  l.IsFavorite,
		ReadLater:   l.ReadLater,
	}
}

// MarkDeleted moves the link to the trash. It returns false when the link
// is already there, in which case nothing changes.
func (l *Link) MarkDeleted(at time.Time) bool {
	if l.IsDeleted {
		return false
	}
	l.IsDeleted = true
	l.DeletedAt = &at
	l.OriginalFolder = l.Folder
	return true
}

// Restore takes the link out of the trash and back into the folder it was
// deleted from. It returns false when the link is not in the trash.
func (l *Link) Restore() bool {
	if !l.IsDeleted {
		return false
	}
	target := l.OriginalFolder
	if target == "" {
		target = Personal
	}
	l.IsDeleted = false
	l.Folder = target
	l.DeletedAt = nil
	l.OriginalFolder = ""
	return true
}

// HasTag reports whether the link carries tag.
func (l *Link) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the link.
func (l Link) Clone() Link {
	c := l
	c.Tags = append([]string{}, l.Tags...)
	if l.DeletedAt != nil {
		at := *l.DeletedAt
		c.DeletedAt = &at
	}
	return c
}

// Validate checks the fields every stored link must carry.
func Validate(l *Link) error {
	return validation.ValidateStruct(l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&l.Title, validation.Required),
		validation.Field(&l.Folder, validation.Required, validation.By(folderName)),
	)
}

func folderName(value interface{}) error {
	s, _ := value.(string)
	return ValidateFolderName(s)
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme == "" {
		return errors.New("must include a scheme")
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// NormalizeURL trims raw and defaults a missing scheme to https.
func NormalizeURL(raw string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return ""
	}
	if strings.Contains(clean, "://") {
		return clean
	}
	lower := strings.ToLower(clean)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "data:") {
		return clean
	}
	return "https://" + clean
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping the
// first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
