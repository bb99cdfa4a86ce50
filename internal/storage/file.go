package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in a single JSON object on disk.
// Each write produces a new file which replaces the old one by rename, so a
// failed write leaves the previous document in place.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// OpenFile loads the store kept at path. A missing file yields an empty store;
// the file is created on the first write.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: make(map[string]json.RawMessage)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&fs.data); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	if fs.data == nil {
		fs.data = make(map[string]json.RawMessage)
	}
	return fs, nil
}

// Path returns the file backing the store.
func (fs *FileStore) Path() string {
	return fs.path
}

// Get implements KV.
func (fs *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v, ok := fs.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements KV.
func (fs *FileStore) Put(ctx context.Context, key string, value []byte) error {
	return fs.PutMany(ctx, map[string][]byte{key: value})
}

// PutMany implements KV. Values must be valid JSON documents.
func (fs *FileStore) PutMany(_ context.Context, entries map[string][]byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := fs.clone()
	for k, v := range entries {
		if !json.Valid(v) {
			return fmt.Errorf("value for %q is not valid JSON", k)
		}
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		next[k] = raw
	}
	if err := fs.write(next); err != nil {
		return err
	}
	fs.data = next
	return nil
}

// Delete implements KV.
func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.data[key]; !ok {
		return nil
	}
	next := fs.clone()
	delete(next, key)
	if err := fs.write(next); err != nil {
		return err
	}
	fs.data = next
	return nil
}

func (fs *FileStore) clone() map[string]json.RawMessage {
	next := make(map[string]json.RawMessage, len(fs.data)+1)
	for k, v := range fs.data {
		next[k] = v
	}
	return next
}

// write must be called with fs.mu held.
func (fs *FileStore) write(data map[string]json.RawMessage) error {
	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("encode data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
