// Package transfer exports and imports complete snapshots of the stored
// links, folders and settings, as JSON documents or spreadsheets.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/bkarpinos/linkvault/internal/errx"
	"github.com/bkarpinos/linkvault/internal/link"
	"github.com/bkarpinos/linkvault/internal/storage"
)

// Version tags the snapshot format.
const Version = "1.0"

// Snapshot is a full copy of the stored data.
type Snapshot struct {
	Links      []storage.LinkRecord `json:"links"`
	Folders    []string             `json:"folders"`
	Settings   link.Settings        `json:"settings"`
	ExportDate string               `json:"exportDate"`
	Version    string               `json:"version"`
}

// Summary describes what applying a snapshot would store.
type Summary struct {
	Links   int `json:"links"`
	Trashed int `json:"trashed"`
	Folders int `json:"folders"`
}

// Summary counts the contents of the snapshot.
func (s *Snapshot) Summary() Summary {
	sum := Summary{Links: len(s.Links), Folders: len(s.Folders)}
	for _, r := range s.Links {
		if r.IsDeleted != nil && *r.IsDeleted {
			sum.Trashed++
		}
	}
	return sum
}

// Service moves snapshots in and out of a repository.
type Service struct {
	repo   *storage.Repository
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the clock used for export dates and imported rows.
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

// Export captures the stored data.
func (s *Service) Export() *Snapshot {
	state := s.repo.LoadState()
	return &Snapshot{
		Links:      storage.EncodeLinks(state.Links),
		Folders:    state.Folders,
		Settings:   state.Settings,
		ExportDate: storage.FormatTime(s.now()),
		Version:    Version,
	}
}

// ExportJSON writes the stored data as an indented JSON document.
func (s *Service) ExportJSON(w io.Writer) error {
	snap := s.Export()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return errx.E("transfer.ExportJSON", errx.Internal, err)
	}
	s.logger.Info().Int("links", len(snap.Links)).Msg("data exported")
	return nil
}

// Validate parses a JSON document. It must be an object carrying a links
// array of link records, a folders array of names and a settings object.
// Settings fields left out take their defaults.
func Validate(raw []byte) (*Snapshot, error) {
	const op = "transfer.Validate"

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("document is not a JSON object: %w", err))
	}
	for _, key := range []string{"links", "folders", "settings"} {
		if v, ok := doc[key]; !ok || isNull(v) {
			return nil, errx.Errorf(op, errx.Invalid, "document has no %q member", key)
		}
	}

	snap := &Snapshot{Settings: link.DefaultSettings()}

	var rawLinks []json.RawMessage
	if err := json.Unmarshal(doc["links"], &rawLinks); err != nil {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("links: must be an array: %w", err))
	}
	snap.Links = make([]storage.LinkRecord, 0, len(rawLinks))
	for i, r := range rawLinks {
		if !isObject(r) {
			return nil, errx.Errorf(op, errx.Invalid, "links[%d]: must be an object", i)
		}
		var rec storage.LinkRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, errx.E(op, errx.Invalid, fmt.Errorf("links[%d]: %w", i, err))
		}
		snap.Links = append(snap.Links, rec)
	}

	if err := json.Unmarshal(doc["folders"], &snap.Folders); err != nil {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("folders: must be an array of names: %w", err))
	}

	if !isObject(doc["settings"]) {
		return nil, errx.Errorf(op, errx.Invalid, "settings: must be an object")
	}
	if err := json.Unmarshal(doc["settings"], &snap.Settings); err != nil {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("settings: %w", err))
	}

	if v, ok := doc["exportDate"]; ok {
		_ = json.Unmarshal(v, &snap.ExportDate)
	}
	if v, ok := doc["version"]; ok {
		_ = json.Unmarshal(v, &snap.Version)
	}

	if _, err := decodeState(op, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Apply replaces all stored links, folders and settings with the snapshot
// in one write. Nothing is written if any part of it is invalid.
func (s *Service) Apply(snap *Snapshot) error {
	const op = "transfer.Apply"

	state, err := decodeState(op, snap)
	if err != nil {
		return err
	}
	if err := s.repo.Replace(state); err != nil {
		return err
	}

	s.logger.Info().
		Int("links", len(state.Links)).
		Int("folders", len(state.Folders)).
		Str("version", snap.Version).
		Msg("data imported")
	return nil
}

// Import validates a JSON document and applies it.
func (s *Service) Import(raw []byte) (*Snapshot, error) {
	snap, err := Validate(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("import rejected")
		return nil, err
	}
	if err := s.Apply(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// ImportWorkbook converts a spreadsheet and applies it.
func (s *Service) ImportWorkbook(wb Workbook) (*Snapshot, error) {
	snap, err := FromWorkbook(wb, s.now())
	if err != nil {
		s.logger.Warn().Err(err).Msg("workbook import rejected")
		return nil, err
	}
	if err := s.Apply(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// decodeState turns a snapshot into repository state, rejecting records
// that do not decode or validate.
func decodeState(op string, snap *Snapshot) (storage.State, error) {
	if snap == nil {
		return storage.State{}, errx.Errorf(op, errx.Invalid, "no snapshot")
	}

	links := make([]link.Link, 0, len(snap.Links))
	seen := make(map[string]struct{}, len(snap.Links))
	for i, rec := range snap.Links {
		l, err := storage.DecodeLink(rec)
		if err != nil {
			return storage.State{}, errx.E(op, errx.Invalid, fmt.Errorf("links[%d]: %w", i, err))
		}
		if err := link.Validate(&l); err != nil {
			return storage.State{}, errx.E(op, errx.Invalid, fmt.Errorf("links[%d]: %w", i, err))
		}
		if _, dup := seen[l.ID]; dup {
			return storage.State{}, errx.Errorf(op, errx.Invalid, "links[%d]: duplicate id %q", i, l.ID)
		}
		seen[l.ID] = struct{}{}
		links = append(links, l)
	}

	for i, name := range snap.Folders {
		if err := link.ValidateFolderName(name); err != nil {
			return storage.State{}, errx.E(op, errx.Invalid, fmt.Errorf("folders[%d]: %w", i, err))
		}
	}

	if err := snap.Settings.Validate(); err != nil {
		return storage.State{}, errx.E(op, errx.Invalid, fmt.Errorf("settings: %w", err))
	}

	return storage.State{
		Links:    links,
		Folders:  link.MergeFolders(snap.Folders),
		Settings: snap.Settings,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
