package link

import (
	"errors"
	"strings"
)

// Protected folders. They always exist and cannot be renamed or deleted.
const (
	Work     = "Work"
	Study    = "Study"
	Fun      = "Fun"
	Personal = "Personal"
)

const MaxFolderNameLength = 64

var defaultFolders = []string{Work, Study, Fun, Personal}

// DefaultFolders returns the protected folder names in display order.
func DefaultFolders() []string {
	return append([]string(nil), defaultFolders...)
}

// IsProtected reports whether name is one of the built-in folders.
func IsProtected(name string) bool {
	for _, f := range defaultFolders {
		if f == name {
			return true
		}
	}
	return false
}

// MergeFolders concatenates the lists, dropping blanks and later duplicates.
func MergeFolders(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// FoldersOf returns every folder name referenced by links, in first-seen order.
func FoldersOf(links []Link) []string {
	names := make([]string, 0, len(links))
	for _, l := range links {
		names = append(names, l.Folder)
	}
	return MergeFolders(names)
}

// ValidateFolderName checks a user supplied folder name.
func ValidateFolderName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return errors.New("folder name cannot be empty")
	case trimmed != name:
		return errors.New("folder name cannot start or end with spaces")
	case len(name) > MaxFolderNameLength:
		return errors.New("folder name too long (maximum 64 characters)")
	}
	return nil
}
