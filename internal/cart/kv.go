// Package cart keeps each visitor's rental basket and favorites outside
// the database, in a durable local key-value file. A basket is low-stakes
// cache data: corrupt or missing state always reads back as empty and
// persistence failures never surface to the visitor.
package cart

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// KV is the synchronous durable string store the basket lives in.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// FileStore is a JSON-file-backed KV with write-through on every change.
// The server process is the only writer, so a mutex is all the
// coordination it needs.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileStore loads the backing file if it exists. An unreadable or
// corrupt file is treated as an empty store.
func NewFileStore(path string) *FileStore {
	fs := &FileStore{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Cart storage unreadable, starting empty", "path", path, "error", err)
		}
		return fs
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		slog.Warn("Cart storage corrupt, starting empty", "path", path, "error", err)
		fs.data = make(map[string]string)
	}
	return fs
}

func (fs *FileStore) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.data[key]
	return v, ok
}

func (fs *FileStore) Set(key, value string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.data[key] = value
	fs.persistLocked()
}

func (fs *FileStore) Delete(key string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.data, key)
	fs.persistLocked()
}

func (fs *FileStore) persistLocked() {
	raw, err := json.Marshal(fs.data)
	if err != nil {
		slog.Error("Failed to encode cart storage", "error", err)
		return
	}
	if err := os.WriteFile(fs.path, raw, 0o600); err != nil {
		slog.Error("Failed to write cart storage", "path", fs.path, "error", err)
	}
}

// MemStore is an in-memory KV for tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MemStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
