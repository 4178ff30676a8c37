package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// File keeps the slot in a JSON file. Writes go to a temporary file that is
// synced and renamed over the target, so a crash never leaves a torn blob.
type File struct {
	path   string
	logger zerolog.Logger
}

// NewFile creates a file backend at path, creating its directory.
func NewFile(path string, logger zerolog.Logger) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, err
	}

	return &File{path: absPath, logger: logger}, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func (f *File) Save(data []byte) error {
	tmp := f.path + ".tmp"
	if err := syncedWriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Erase() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// syncedWriteFile writes data to a file and calls fsync before closing it.
func syncedWriteFile(path string, data []byte, perm os.FileMode) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = fh.Close() }()

	if _, err := fh.Write(data); err != nil {
		return err
	}
	return fh.Sync()
}

// Watch calls onChange whenever the backing file is written or replaced,
// including by another process. It blocks until ctx is cancelled.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: the file itself is replaced on every save.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			// Give the writer a moment to finish.
			time.Sleep(100 * time.Millisecond)
			f.logger.Debug().Str("path", f.path).Str("op", event.Op.String()).Msg("storage file changed")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Str("path", f.path).Msg("storage watcher error")
		}
	}
}
