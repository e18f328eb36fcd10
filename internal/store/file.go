package store

import (
	"adaptive/internal/logging"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps all pairs in one YAML document, rewritten on every change.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileStore loads the YAML file at path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if fs.values == nil {
		fs.values = make(map[string]string)
	}

	logging.StoreDebug("FileStore loaded %d keys from %s", len(fs.values), path)
	return fs, nil
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

func (f *FileStore) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.values), nil
}

func (f *FileStore) Close() error { return nil }

// save writes through a temp file so a crash never leaves a torn document.
func (f *FileStore) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
