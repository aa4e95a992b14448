package acquire

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"syllaread/internal/clock"
	"syllaread/internal/domain/content"
)

// Entry is one cached payload with its expiry, the shape handed to the
// persistence collaborator.
type Entry struct {
	Key       string       `json:"key"`
	Item      content.Item `json:"item"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Store is a keyed expiring cache. Caching is an optimization: storage
// errors never propagate, implementations swallow and log them.
type Store interface {
	// Get returns the item for key if present and unexpired. Reading an
	// expired entry removes it and reports a miss.
	Get(key string) (content.Item, bool)
	// Set stores item under key for ttl.
	Set(key string, item content.Item, ttl time.Duration)
	// Delete removes key.
	Delete(key string)
	// Clear removes everything.
	Clear()
	// Info describes the store for status display.
	Info() map[string]any
}

// MemoryStore is the in-memory Store.
type MemoryStore struct {
	mu      sync.Mutex
	clk     clock.Clock
	entries map[string]Entry
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{clk: clk, entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(key string) (content.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return content.Item{}, false
	}
	if !m.clk.Now().Before(e.ExpiresAt) {
		delete(m.entries, key)
		return content.Item{}, false
	}
	return e.Item, true
}

func (m *MemoryStore) Set(key string, item content.Item, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Key: key, Item: item, ExpiresAt: m.clk.Now().Add(ttl)}
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
}

func (m *MemoryStore) Info() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]any{"entries": len(m.entries), "persistent": false}
}

// FileStore keeps the cache in memory and mirrors it to a JSON file so
// entries survive restarts within their TTL.
type FileStore struct {
	*MemoryStore
	cacheFile string
}

// NewFileStore creates the cache directory if needed and loads any
// previously persisted entries. Failures degrade to a purely in-memory
// cache with a logged warning.
func NewFileStore(clk clock.Clock, cacheDir string) *FileStore {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logrus.WithError(err).Warn("Failed to create cache directory")
	}

	fs := &FileStore{
		MemoryStore: NewMemoryStore(clk),
		cacheFile:   filepath.Join(cacheDir, "content_cache.json"),
	}
	fs.load()
	return fs
}

func (f *FileStore) Set(key string, item content.Item, ttl time.Duration) {
	f.MemoryStore.Set(key, item, ttl)
	f.persist()
}

func (f *FileStore) Delete(key string) {
	f.MemoryStore.Delete(key)
	f.persist()
}

func (f *FileStore) Clear() {
	f.MemoryStore.Clear()
	if err := os.Remove(f.cacheFile); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to remove cache file")
	}
}

func (f *FileStore) Info() map[string]any {
	info := f.MemoryStore.Info()
	info["persistent"] = true
	info["file"] = f.cacheFile
	if stat, err := os.Stat(f.cacheFile); err == nil {
		info["size"] = stat.Size()
		info["last_modified"] = stat.ModTime()
	}
	return info
}

func (f *FileStore) load() {
	file, err := os.Open(f.cacheFile)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("Failed to open cache file")
		}
		return
	}
	defer file.Close()

	var entries []Entry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		logrus.WithError(err).Warn("Failed to decode cache file")
		return
	}

	f.mu.Lock()
	now := f.clk.Now()
	kept := 0
	for _, e := range entries {
		if now.Before(e.ExpiresAt) {
			f.entries[e.Key] = e
			kept++
		}
	}
	f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"entries": kept,
		"file":    f.cacheFile,
	}).Info("Loaded content cache")
}

func (f *FileStore) persist() {
	f.mu.Lock()
	entries := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		entries = append(entries, e)
	}
	f.mu.Unlock()

	file, err := os.Create(f.cacheFile)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create cache file")
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		logrus.WithError(err).Warn("Failed to encode cache data")
	}
}
