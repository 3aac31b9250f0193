package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"url-vetting/vetting"
)

// File keeps user lists in a JSON document of the form
// {"allow":[...],"deny":[...]}. Each change rewrites the file atomically.
type File struct {
	path string

	mu    sync.RWMutex
	lists vetting.UserLists
}

// OpenFile loads path, treating a missing file as empty lists.
func OpenFile(path string) (*File, error) {
	f := &File{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user lists: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.lists); err != nil {
			return nil, fmt.Errorf("parse user lists %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Lists(context.Context) (vetting.UserLists, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneLists(f.lists), nil
}

func (f *File) Put(_ context.Context, list vetting.ListName, domain string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := cloneLists(f.lists)
	if !place(&next, list, domain) {
		return false, nil
	}
	if err := f.write(next); err != nil {
		return false, err
	}
	f.lists = next
	return true, nil
}

func (f *File) write(l vetting.UserLists) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".user-lists-*")
	if err != nil {
		return fmt.Errorf("write user lists: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write user lists: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write user lists: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write user lists: %w", err)
	}
	return nil
}
