package library

import (
	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

// Folders returns every folder in display order.
func (s *Service) Folders() []string {
	return s.repo.ListFolders()
}

// CreateFolder adds a folder to the end of the list.
func (s *Service) CreateFolder(name string) error {
	const op = "library.CreateFolder"
	if err := link.ValidateFolderName(name); err != nil {
		return errx.E(op, errx.Invalid, err)
	}

	err := s.repo.Update(func(state *storage.State) error {
		for _, f := range state.Folders {
			if f == name {
				return errx.Errorf(op, errx.Invalid, "folder %q already exists", name)
			}
		}
		state.Folders = append(state.Folders, name)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("folder", name).Msg("folder created")
	return nil
}

// RenameFolder renames a folder and moves its links along, including the
// remembered folder of links in the trash. Protected folders cannot be
// renamed.
func (s *Service) RenameFolder(from, to string) (int, error) {
	const op = "library.RenameFolder"
	if link.IsProtected(from) {
		return 0, errx.Errorf(op, errx.Forbidden, "folder %q is protected", from)
	}
	if err := link.ValidateFolderName(to); err != nil {
		return 0, errx.E(op, errx.Invalid, err)
	}

	moved := 0
	err := s.repo.Update(func(state *storage.State) error {
		known := link.MergeFolders(state.Folders, link.FoldersOf(state.Links))
		if !contains(known, from) {
			return errx.Errorf(op, errx.NotFound, "folder %q not found", from)
		}
		if from != to && contains(known, to) {
			return errx.Errorf(op, errx.Invalid, "folder %q already exists", to)
		}

		for i := range state.Links {
			l := &state.Links[i]
			if l.Folder == from {
				l.Folder = to
				moved++
			}
			if l.IsDeleted && l.OriginalFolder == from {
				l.OriginalFolder = to
			}
		}

		folders := make([]string, 0, len(state.Folders)+1)
		renamed := false
		for _, f := range state.Folders {
			if f == from {
				f = to
				renamed = true
			}
			folders = append(folders, f)
		}
		if !renamed {
			folders = append(folders, to)
		}
		state.Folders = folders
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("from", from).Str("to", to).Int("links", moved).Msg("folder renamed")
	return moved, nil
}

// DeleteFolder removes a folder and moves its links to Personal, returning
// how many were moved. Protected folders cannot be deleted. Resetting a view
// scoped to the folder is left to the caller.
func (s *Service) DeleteFolder(name string) (int, error) {
	const op = "library.DeleteFolder"
	if link.IsProtected(name) {
		return 0, errx.Errorf(op, errx.Forbidden, "folder %q is protected", name)
	}

	moved := 0
	err := s.repo.Update(func(state *storage.State) error {
		for i := range state.Links {
			if state.Links[i].Folder == name {
				state.Links[i].Folder = link.Personal
				moved++
			}
		}

		folders := make([]string, 0, len(state.Folders))
		for _, f := range state.Folders {
			if f != name {
				folders = append(folders, f)
			}
		}
		state.Folders = folders
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("folder", name).Int("reassigned", moved).Msg("folder deleted")
	return moved, nil
}

// ReorderFolders sets the display order. Folders left out keep their
// relative order after the listed ones; unknown names are rejected.
func (s *Service) ReorderFolders(order []string) ([]string, error) {
	const op = "library.ReorderFolders"

	var out []string
	err := s.repo.Update(func(state *storage.State) error {
		known := link.MergeFolders(link.DefaultFolders(), state.Folders, link.FoldersOf(state.Links))
		for _, name := range order {
			if !contains(known, name) {
				return errx.Errorf(op, errx.NotFound, "folder %q not found", name)
			}
		}
		state.Folders = link.MergeFolders(order, known)
		out = append([]string(nil), state.Folders...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
