package storage

import (
	"github.com/bkarpinos/linkvault/internal/link"
)

// Bootstrap prepares storage at startup. On the very first run it saves the
// seed links; on every run it makes sure the protected folders are listed,
// writes back settings with any missing fields filled in, and records the
// startup time. It reports whether the seed was written.
func (r *Repository) Bootstrap(seed []link.Link) (bool, error) {
	const op = "storage.Bootstrap"

	r.mu.Lock()
	defer r.mu.Unlock()

	var initialized bool
	firstRun := !r.store.Get(KeyInitialized, &initialized) || !initialized

	values := map[string]any{
		KeyLastStartup: FormatTime(r.now()),
	}
	for k, v := range r.folderValues(link.MergeFolders(r.LoadFolders(), link.DefaultFolders())) {
		values[k] = v
	}
	for k, v := range r.settingsValues(r.LoadSettings()) {
		values[k] = v
	}

	seeded := false
	if firstRun {
		if len(r.LoadLinks()) == 0 && len(seed) > 0 {
			for k, v := range r.linkValues(seed) {
				values[k] = v
			}
			seeded = true
		}
		values[KeyInitialized] = true
	}

	if err := r.write(op, values); err != nil {
		return false, err
	}

	r.logger.Debug().Bool("first_run", firstRun).Bool("seeded", seeded).Msg("storage bootstrapped")
	return seeded, nil
}

// Stats summarizes the stored data.
type Stats struct {
	TotalLinks     int `json:"totalLinks" yaml:"total_links"`
	ActiveLinks    int `json:"activeLinks" yaml:"active_links"`
	TrashedLinks   int `json:"trashedLinks" yaml:"trashed_links"`
	FavoriteLinks  int `json:"favoriteLinks" yaml:"favorite_links"`
	ReadLaterLinks int `json:"readLaterLinks" yaml:"read_later_links"`
	TotalFolders   int `json:"totalFolders" yaml:"total_folders"`
	TotalTags      int `json:"totalTags" yaml:"total_tags"`
	StorageBytes   int `json:"storageBytes" yaml:"storage_bytes"`
}

// Stats computes counts over the stored links and folders.
func (r *Repository) Stats() Stats {
	links := r.LoadLinks()

	s := Stats{
		TotalLinks:   len(links),
		TotalFolders: len(r.ListFolders()),
		TotalTags:    len(link.Tags(links)),
		StorageBytes: r.store.Size(),
	}
	for _, l := range links {
		if l.IsDeleted {
			s.TrashedLinks++
			continue
		}
		s.ActiveLinks++
		if l.IsFavorite {
			s.FavoriteLinks++
		}
		if l.ReadLater {
			s.ReadLaterLinks++
		}
	}
	return s
}
