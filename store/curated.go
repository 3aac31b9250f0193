// Package store holds the list stores: curated lists shipped with the
// binary or loaded from disk, and user-list stores backed by memory, a
// JSON file or PostgreSQL.
package store

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"url-vetting/vetting"
)

//go:embed data/whitelist.json data/blacklist.json
var defaultLists embed.FS

// Curated serves the curated allow and deny lists. Until loading finishes
// it reports empty lists.
type Curated struct {
	allowPath string
	denyPath  string

	lists atomic.Pointer[vetting.CuratedLists]
	ready chan struct{}
	once  sync.Once
}

// NewCurated returns curated lists read from the given files. An empty path
// selects the embedded default for that side.
func NewCurated(allowPath, denyPath string) *Curated {
	return &Curated{
		allowPath: allowPath,
		denyPath:  denyPath,
		ready:     make(chan struct{}),
	}
}

// Curated implements vetting.CuratedSource.
func (c *Curated) Curated() vetting.CuratedLists {
	if l := c.lists.Load(); l != nil {
		return *l
	}
	return vetting.CuratedLists{}
}

// Ready is closed once loading has finished, successfully or not.
func (c *Curated) Ready() <-chan struct{} { return c.ready }

// IsReady reports whether Ready is closed.
func (c *Curated) IsReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// LoadAsync starts Load in the background.
func (c *Curated) LoadAsync() {
	go func() {
		if err := c.Load(); err != nil {
			log.Printf("[Lists] curated lists unavailable, continuing with empty lists: %v", err)
		}
	}()
}

// Load reads both lists and publishes them. Ready is closed either way.
func (c *Curated) Load() error {
	defer c.once.Do(func() { close(c.ready) })

	allow, err := readEntries(c.allowPath, "data/whitelist.json")
	if err != nil {
		return fmt.Errorf("load allow list: %w", err)
	}
	deny, err := readEntries(c.denyPath, "data/blacklist.json")
	if err != nil {
		return fmt.Errorf("load deny list: %w", err)
	}
	c.lists.Store(&vetting.CuratedLists{Allow: allow, Deny: deny})
	log.Printf("[Lists] curated lists loaded: %d allow, %d deny", len(allow), len(deny))
	return nil
}

func readEntries(path, embedded string) ([]vetting.ListEntry, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = defaultLists.ReadFile(embedded)
	}
	if err != nil {
		return nil, err
	}

	var raw []vetting.ListEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", pathOr(path, embedded), err)
	}
	entries := raw[:0]
	for _, e := range raw {
		if e.DomainRoot == "" && e.URL == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func pathOr(path, def string) string {
	if path != "" {
		return path
	}
	return def
}
