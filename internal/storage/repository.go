// Package storage maps links, folders and settings onto the keyed blob store.
// Every load falls back to a documented default instead of failing.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/kvstore"
	"github.com/bkarpinos/linkvault/internal/link"
)

// Keys in the storage blob.
const (
	KeyLinks           = "links"
	KeyFolders         = "folders"
	KeySettings        = "settings"
	KeyInitialized     = "app_initialized"
	KeyLastStartup     = "last_startup"
	KeyLinksUpdated    = "last_links_update"
	KeyFoldersUpdated  = "last_folders_update"
	KeySettingsUpdated = "last_settings_update"
)

// State is a full copy of the three aggregates.
type State struct {
	Links    []link.Link
	Folders  []string
	Settings link.Settings
}

// Repository reads and writes typed state through a kvstore.Store.
// Read-modify-write sequences are serialized so concurrent callers never
// lose each other's updates.
type Repository struct {
	store  *kvstore.Store
	logger zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

type Option func(*Repository)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// WithClock overrides the clock used for update timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository creates a repository over store.
func NewRepository(store *kvstore.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying blob store.
func (r *Repository) Store() *kvstore.Store { return r.store }

// LoadLinks returns the stored links. Records that cannot be read or
// repaired are skipped, as are repeated ids; a missing or malformed list
// yields an empty one.
func (r *Repository) LoadLinks() []link.Link {
	var raws []json.RawMessage
	if !r.store.Get(KeyLinks, &raws) {
		return []link.Link{}
	}

	links := make([]link.Link, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		var rec LinkRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			r.logger.Warn().Err(err).Int("index", i).Msg("skipping unreadable link record")
			continue
		}
		l, err := decodeLink(rec, false)
		if err != nil {
			r.logger.Warn().Err(err).Int("index", i).Msg("skipping invalid link record")
			continue
		}
		if err := link.Validate(&l); err != nil {
			r.logger.Warn().Err(err).Str("id", l.ID).Msg("skipping unusable link record")
			continue
		}
		if _, dup := seen[l.ID]; dup {
			r.logger.Warn().Str("id", l.ID).Msg("skipping repeated link id")
			continue
		}
		seen[l.ID] = struct{}{}
		links = append(links, l)
	}
	return links
}

// SaveLinks replaces the stored links.
func (r *Repository) SaveLinks(links []link.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write("storage.SaveLinks", r.linkValues(links))
}

// LoadFolders returns the stored folder list, or the protected defaults when
// it is absent or malformed.
func (r *Repository) LoadFolders() []string {
	var folders []string
	if !r.store.Get(KeyFolders, &folders) || folders == nil {
		return link.DefaultFolders()
	}
	valid := folders[:0]
	for _, name := range folders {
		if err := link.ValidateFolderName(name); err != nil {
			if name != "" {
				r.logger.Warn().Err(err).Str("folder", name).Msg("skipping unusable folder name")
			}
			continue
		}
		valid = append(valid, name)
	}
	return link.MergeFolders(valid)
}

// SaveFolders replaces the stored folder list.
func (r *Repository) SaveFolders(folders []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write("storage.SaveFolders", r.folderValues(folders))
}

// ListFolders returns every folder a link can be in: the stored list in its
// saved order, then any missing protected folder, then any folder referenced
// only by a link.
func (r *Repository) ListFolders() []string {
	return link.MergeFolders(r.LoadFolders(), link.DefaultFolders(), link.FoldersOf(r.LoadLinks()))
}

// LoadSettings returns the stored settings. Each field is read on its own:
// a field missing from an older record, holding the wrong type or a value
// this version does not know takes its default while the rest are kept.
func (r *Repository) LoadSettings() link.Settings {
	settings := link.DefaultSettings()

	var fields map[string]json.RawMessage
	if !r.store.Get(KeySettings, &fields) {
		return settings
	}

	var darkMode bool
	if r.settingsField(fields, "darkMode", &darkMode) {
		settings.DarkMode = darkMode
	}

	var lang string
	if r.settingsField(fields, "language", &lang) {
		if l := link.Language(lang); l.Valid() {
			settings.Language = l
		} else if lang != "" {
			r.logger.Warn().Str("language", lang).Msg("unknown language in settings, using default")
		}
	}

	var layout string
	if r.settingsField(fields, "viewLayout", &layout) {
		if v := link.ViewLayout(layout); v.Valid() {
			settings.ViewLayout = v
		} else {
			r.logger.Warn().Str("view_layout", layout).Msg("unknown view layout in settings, using default")
		}
	}

	var view string
	if r.settingsField(fields, "currentView", &view) {
		if _, err := link.ParseView(view); err == nil {
			settings.CurrentView = view
		} else {
			r.logger.Warn().Str("current_view", view).Msg("unknown view in settings, using default")
		}
	}
	return settings
}

// settingsField decodes one stored settings field into dst. It reports false
// when the field is absent, null or of the wrong type.
func (r *Repository) settingsField(fields map[string]json.RawMessage, name string, dst any) bool {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.logger.Warn().Err(err).Str("field", name).Msg("unreadable settings field, using default")
		return false
	}
	return true
}

// SaveSettings replaces the stored settings.
func (r *Repository) SaveSettings(settings link.Settings) error {
	const op = "storage.SaveSettings"
	if err := settings.Validate(); err != nil {
		return errx.E(op, errx.Invalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.write(op, r.settingsValues(settings))
}

// UpdateSettings applies fn to the stored settings and saves the result,
// holding the repository lock throughout so concurrent changes to
// different fields are not lost. Nothing is written when fn fails or the
// result is invalid.
func (r *Repository) UpdateSettings(fn func(*link.Settings) error) (link.Settings, error) {
	const op = "storage.UpdateSettings"

	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.LoadSettings()
	if err := fn(&settings); err != nil {
		return link.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return link.Settings{}, errx.E(op, errx.Invalid, err)
	}
	if err := r.write(op, r.settingsValues(settings)); err != nil {
		return link.Settings{}, err
	}
	return settings, nil
}

// SwitchFolderView points the current view at next when it currently
// shows folder. It reports whether the view changed.
func (r *Repository) SwitchFolderView(folder string, next link.View) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.LoadSettings()
	current, err := link.ParseView(settings.CurrentView)
	if err != nil || !current.ScopedToFolder(folder) {
		return false, nil
	}
	settings.CurrentView = next.String()
	if err := r.write("storage.SwitchFolderView", r.settingsValues(settings)); err != nil {
		return false, err
	}
	return true, nil
}

// LoadState reads all three aggregates.
func (r *Repository) LoadState() State {
	return State{
		Links:    r.LoadLinks(),
		Folders:  r.LoadFolders(),
		Settings: r.LoadSettings(),
	}
}

// Update loads the full state, applies fn and writes all three aggregates
// back in one write. Nothing is written when fn returns an error.
func (r *Repository) Update(fn func(*State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.LoadState()
	if err := fn(&state); err != nil {
		return err
	}
	return r.writeState("storage.Update", state)
}

// UpdateLinks loads the links, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (r *Repository) UpdateLinks(fn func([]link.Link) ([]link.Link, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	links, err := fn(r.LoadLinks())
	if err != nil {
		return err
	}
	return r.write("storage.UpdateLinks", r.linkValues(links))
}

// Replace overwrites all three aggregates in one write.
func (r *Repository) Replace(state State) error {
	const op = "storage.Replace"
	if err := state.Settings.Validate(); err != nil {
		return errx.E(op, errx.Invalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeState(op, state)
}

// Clear erases all stored data.
func (r *Repository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.ClearAll(); err != nil {
		return errx.E("storage.Clear", errx.KindOf(err), err)
	}
	r.logger.Info().Msg("all data cleared")
	return nil
}

func (r *Repository) writeState(op string, state State) error {
	values := r.linkValues(state.Links)
	for k, v := range r.folderValues(state.Folders) {
		values[k] = v
	}
	for k, v := range r.settingsValues(state.Settings) {
		values[k] = v
	}
	return r.write(op, values)
}

func (r *Repository) write(op string, values map[string]any) error {
	if err := r.store.SetMany(values); err != nil {
		return errx.E(op, errx.KindOf(err), fmt.Errorf("write storage: %w", err))
	}
	return nil
}

func (r *Repository) linkValues(links []link.Link) map[string]any {
	return map[string]any{
		KeyLinks:        EncodeLinks(links),
		KeyLinksUpdated: FormatTime(r.now()),
	}
}

func (r *Repository) folderValues(folders []string) map[string]any {
	return map[string]any{
		KeyFolders:        link.MergeFolders(folders),
		KeyFoldersUpdated: FormatTime(r.now()),
	}
}

func (r *Repository) settingsValues(settings link.Settings) map[string]any {
	return map[string]any{
		KeySettings:        settings,
		KeySettingsUpdated: FormatTime(r.now()),
	}
}
