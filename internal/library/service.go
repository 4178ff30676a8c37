// Package library implements the link lifecycle: creating and editing links,
// moving them in and out of the trash, and managing folders.
package library

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

// errUnchanged aborts an update that would not modify anything.
var errUnchanged = errors.New("unchanged")

// Service applies lifecycle operations to the links held by a repository.
type Service struct {
	repo   *storage.Repository
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the clock used for creation and deletion times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Service over repo.
func New(repo *storage.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the repository the service writes to.
func (s *Service) Repository() *storage.Repository { return s.repo }

// BulkResult reports which ids a batch operation changed and which it
// skipped because they were unknown or already in the target state.
type BulkResult struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

func indexOf(links []link.Link, id string) int {
	for i := range links {
		if links[i].ID == id {
			return i
		}
	}
	return -1
}

// updateLinks runs fn under the repository lock. An fn returning
// errUnchanged skips the write and reports success.
func (s *Service) updateLinks(fn func([]link.Link) ([]link.Link, error)) error {
	err := s.repo.UpdateLinks(fn)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// updateOne applies fn to the link with the given id and returns the result.
// fn reports whether it changed the link.
func (s *Service) updateOne(op, id string, fn func(*link.Link) (bool, error)) (link.Link, error) {
	var out link.Link
	err := s.updateLinks(func(links []link.Link) ([]link.Link, error) {
		i := indexOf(links, id)
		if i < 0 {
			return nil, errx.Errorf(op, errx.NotFound, "link %q not found", id)
		}
		changed, err := fn(&links[i])
		out = links[i].Clone()
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, errUnchanged
		}
		return links, nil
	})
	if err != nil {
		return link.Link{}, err
	}
	return out, nil
}

// Get returns the link with the given id.
func (s *Service) Get(id string) (link.Link, error) {
	links := s.repo.LoadLinks()
	if i := indexOf(links, id); i >= 0 {
		return links[i], nil
	}
	return link.Link{}, errx.Errorf("library.Get", errx.NotFound, "link %q not found", id)
}

// List returns the links visible in view that match search, newest first.
func (s *Service) List(view link.View, search string) []link.Link {
	return link.Filter(s.repo.LoadLinks(), view, search)
}

// Create validates and stores a new link.
func (s *Service) Create(p link.Params) (link.Link, error) {
	const op = "library.Create"

	l := link.NewLink(p, s.now())
	if err := link.Validate(l); err != nil {
		return link.Link{}, errx.E(op, errx.Invalid, err)
	}

	err := s.repo.Update(func(state *storage.State) error {
		state.Links = append([]link.Link{*l}, state.Links...)
		state.Folders = link.MergeFolders(state.Folders, []string{l.Folder})
		return nil
	})
	if err != nil {
		return link.Link{}, err
	}

	s.logger.Info().Str("id", l.ID).Str("url", l.URL).Msg("link created")
	return *l, nil
}

// Update replaces the editable fields of a link. Its id, creation time and
// trash state are kept.
func (s *Service) Update(id string, p link.Params) (link.Link, error) {
	const op = "library.Update"

	var out link.Link
	err := s.repo.Update(func(state *storage.State) error {
		i := indexOf(state.Links, id)
		if i < 0 {
			return errx.Errorf(op, errx.NotFound, "link %q not found", id)
		}
		next := state.Links[i].Clone()
		next.Apply(p)
		if err := link.Validate(&next); err != nil {
			return errx.E(op, errx.Invalid, err)
		}
		state.Links[i] = next
		state.Folders = link.MergeFolders(state.Folders, []string{next.Folder})
		out = next.Clone()
		return nil
	})
	if err != nil {
		return link.Link{}, err
	}

	s.logger.Info().Str("id", id).Msg("link updated")
	return out, nil
}

// ToggleFavorite flips the favorite flag of a link.
func (s *Service) ToggleFavorite(id string) (link.Link, error) {
	return s.updateOne("library.ToggleFavorite", id, func(l *link.Link) (bool, error) {
		l.IsFavorite = !l.IsFavorite
		return true, nil
	})
}

// ToggleReadLater flips the read-later flag of a link.
func (s *Service) ToggleReadLater(id string) (link.Link, error) {
	return s.updateOne("library.ToggleReadLater", id, func(l *link.Link) (bool, error) {
		l.ReadLater = !l.ReadLater
		return true, nil
	})
}

// SoftDelete moves a link to the trash, remembering the folder it was in.
// Deleting a link that is already in the trash changes nothing.
func (s *Service) SoftDelete(id string) (link.Link, error) {
	now := s.now()
	out, err := s.updateOne("library.SoftDelete", id, func(l *link.Link) (bool, error) {
		return l.MarkDeleted(now), nil
	})
	if err == nil {
		s.logger.Info().Str("id", id).Msg("link moved to trash")
	}
	return out, err
}

// Restore takes a link out of the trash and puts it back in its original
// folder, or in Personal when that is unknown. Restoring a link that is not
// in the trash changes nothing.
func (s *Service) Restore(id string) (link.Link, error) {
	out, err := s.updateOne("library.Restore", id, func(l *link.Link) (bool, error) {
		return l.Restore(), nil
	})
	if err == nil {
		s.logger.Info().Str("id", id).Str("folder", out.Folder).Msg("link restored")
	}
	return out, err
}

// PermanentDelete removes a link whether or not it is in the trash.
// Callers must have confirmed the deletion.
func (s *Service) PermanentDelete(id string) error {
	const op = "library.PermanentDelete"

	err := s.updateLinks(func(links []link.Link) ([]link.Link, error) {
		i := indexOf(links, id)
		if i < 0 {
			return nil, errx.Errorf(op, errx.NotFound, "link %q not found", id)
		}
		return append(links[:i], links[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn().Str("id", id).Msg("link permanently deleted")
	return nil
}

// PermanentDeleteMany removes every listed link in one write. Unknown ids
// are skipped.
func (s *Service) PermanentDeleteMany(ids []string) (BulkResult, error) {
	res, err := s.bulk(ids, func(links []link.Link, i int) ([]link.Link, bool) {
		return append(links[:i], links[i+1:]...), true
	})
	if err == nil && len(res.Applied) > 0 {
		s.logger.Warn().Strs("ids", res.Applied).Msg("links permanently deleted")
	}
	return res, err
}

// EmptyTrash permanently removes every link in the trash and returns how
// many were removed.
func (s *Service) EmptyTrash() (int, error) {
	removed := 0
	err := s.updateLinks(func(links []link.Link) ([]link.Link, error) {
		kept := make([]link.Link, 0, len(links))
		for _, l := range links {
			if l.IsDeleted {
				continue
			}
			kept = append(kept, l)
		}
		removed = len(links) - len(kept)
		if removed == 0 {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Warn().Int("count", removed).Msg("trash emptied")
	}
	return removed, nil
}

// BulkSoftDelete moves every listed link to the trash in one write.
func (s *Service) BulkSoftDelete(ids []string) (BulkResult, error) {
	now := s.now()
	res, err := s.bulk(ids, func(links []link.Link, i int) ([]link.Link, bool) {
		return links, links[i].MarkDeleted(now)
	})
	if err == nil {
		s.logger.Info().Int("applied", len(res.Applied)).Int("skipped", len(res.Skipped)).Msg("links moved to trash")
	}
	return res, err
}

// BulkRestore restores every listed link in one write.
func (s *Service) BulkRestore(ids []string) (BulkResult, error) {
	res, err := s.bulk(ids, func(links []link.Link, i int) ([]link.Link, bool) {
		return links, links[i].Restore()
	})
	if err == nil {
		s.logger.Info().Int("applied", len(res.Applied)).Int("skipped", len(res.Skipped)).Msg("links restored")
	}
	return res, err
}

// bulk applies fn to each listed link. fn receives the current list and the
// index of the link and returns the new list and whether it changed.
func (s *Service) bulk(ids []string, fn func([]link.Link, int) ([]link.Link, bool)) (BulkResult, error) {
	var res BulkResult
	err := s.updateLinks(func(links []link.Link) ([]link.Link, error) {
		res = BulkResult{Applied: []string{}, Skipped: []string{}}
		for _, id := range ids {
			i := indexOf(links, id)
			if i < 0 {
				res.Skipped = append(res.Skipped, id)
				continue
			}
			var changed bool
			links, changed = fn(links, i)
			if changed {
				res.Applied = append(res.Applied, id)
			} else {
				res.Skipped = append(res.Skipped, id)
			}
		}
		if len(res.Applied) == 0 {
			return nil, errUnchanged
		}
		return links, nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return res, nil
}
