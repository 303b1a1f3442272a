// Package storage persists the client session between runs, the way a
// browser keeps it in local storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/krishichetan/kchetan/internal/models"
)

// ErrNoSession is returned by Load when nothing is stored.
var ErrNoSession = errors.New("no session stored")

// LocalStorage keeps the session in a JSON file.
type LocalStorage struct {
	path string
	mu   sync.Mutex
}

// NewLocalStorage returns a store backed by the file at path.
func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{path: path}
}

// Load reads the stored session.
func (ls *LocalStorage) Load(_ context.Context) (*models.Session, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	f, err := os.Open(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	defer f.Close()

	var s models.Session
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}
	s.Normalize()
	return &s, nil
}

// Save replaces the stored session. The file is written with owner-only
// permissions and renamed into place.
func (ls *LocalStorage) Save(_ context.Context, s models.Session) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(ls.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := ls.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, ls.path)
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (ls *LocalStorage) Clear(_ context.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := os.Remove(ls.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
