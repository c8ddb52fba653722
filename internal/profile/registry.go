// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile loads summarization presets from YAML and applies
// their extractors, defaults, and redaction rules to requests.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/stevenmcsorley/mini-json-summarizer/pkg/types"
)

// Registry holds the loaded profiles. Reads and reloads may run
// concurrently; a reload swaps the whole profile set atomically.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*types.Profile
	loaded   bool
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{profiles: make(map[string]*types.Profile), logger: logger}
}

// LoadDirectory reads every *.yaml file in dir and registers the
// profiles it finds. A missing directory is not an error; a profile
// that fails to parse or validate aborts the load so a broken deploy is
// caught at startup rather than at request time.
func (r *Registry) LoadDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		r.logger.Warn("profiles directory not found", zap.String("dir", dir))
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat profiles dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("profiles path %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("glob profiles: %w", err)
	}
	sort.Strings(paths)

	loaded := make(map[string]*types.Profile, len(paths))
	var names []string
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read profile %s: %w", path, err)
		}
		var profile types.Profile
		if err := yaml.Unmarshal(raw, &profile); err != nil {
			return fmt.Errorf("parse profile %s: %w", path, err)
		}
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("validate profile %s: %w", path, err)
		}
		loaded[profile.ID] = &profile
		names = append(names, profile.ID+"@"+profile.Version)
		r.logger.Debug("loaded profile",
			zap.String("id", profile.ID),
			zap.String("file", path))
	}

	r.mu.Lock()
	r.profiles = loaded
	r.loaded = true
	r.mu.Unlock()

	if len(names) > 0 {
		r.logger.Info("profiles loaded", zap.Strings("profiles", names))
	} else {
		r.logger.Info("no profiles loaded", zap.String("dir", dir))
	}
	return nil
}

func (r *Registry) Get(id string) (*types.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[id]
	return profile, ok
}

// IDs returns the loaded profile ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns discovery summaries in sorted id order.
func (r *Registry) List() []types.ProfileSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ProfileSummary, 0, len(r.profiles))
	for _, profile := range r.profiles {
		out = append(out, types.ProfileSummary{
			ID:          profile.ID,
			Title:       profile.Title,
			Version:     profile.Version,
			Description: profile.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = make(map[string]*types.Profile)
	r.loaded = false
}
