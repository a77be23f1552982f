package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	dirName  = ".latamai"
	fileName = "settings.toml"
)

type fileSettings struct {
	ThemeMode string `toml:"theme_mode"`
}

// DefaultPath is ~/.latamai/settings.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// FileStore keeps the preference in a TOML file.
type FileStore struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store backed by path. A nil logger discards output.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileStore{path: filepath.Clean(path), logger: logger}
}

// Path returns the settings file location.
func (s *FileStore) Path() string { return s.path }

// Load implements Store. A missing file or an unknown value yields ModeAuto.
func (s *FileStore) Load() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fsettings fileSettings
	if _, err := toml.DecodeFile(s.path, &fsettings); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ModeAuto, nil
		}
		return ModeAuto, fmt.Errorf("failed to read settings: %w", err)
	}
	return Normalize(fsettings.ThemeMode), nil
}

// Save implements Store. The file is replaced atomically and the directory is
// created when missing.
func (s *FileStore) Save(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	fmt.Fprintln(tmp, "# latamai settings")
	if err := toml.NewEncoder(tmp).Encode(fileSettings{ThemeMode: string(m)}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Watch calls fn whenever the file on disk changes to a different mode, for
// example when another instance saves it. It returns once the watch is set up;
// the watch ends when ctx is done.
func (s *FileStore) Watch(ctx context.Context, fn func(Mode)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	last, err := s.Load()
	if err != nil {
		last = ModeAuto
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				mode, err := s.Load()
				if err != nil {
					s.logger.Debug("settings file unreadable", "path", s.path, "err", err)
					continue
				}
				if mode != last {
					last = mode
					fn(mode)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watch error", "err", err)
			}
		}
	}()
	return nil
}
