// Package settings persists durable application state: recently opened
// inputs, the last explicit config path, and the preferred preview size.
//
// There is exactly one settings document per user, stored as JSON under
// the user config directory. Engines never read it; resolving settings
// into a job's configuration is the caller's responsibility, so core
// behavior stays a pure function of its inputs.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// MaxRecentInputs bounds the recent-inputs list.
	MaxRecentInputs = 10

	fileName = "settings.json"
)

// Settings is the persisted document.
type Settings struct {
	// RecentInputs lists recently split images, most recent first.
	RecentInputs []string `json:"recent_inputs,omitempty"`

	// LastConfigPath is the most recent explicitly chosen config file.
	LastConfigPath string `json:"last_config_path,omitempty"`

	// PreviewMaxDim is the preferred preview bound in pixels.
	// Zero means the preview package default.
	PreviewMaxDim int `json:"preview_max_dim,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// AddRecentInput prepends path, deduplicating and trimming the list.
func (s *Settings) AddRecentInput(path string) {
	recent := []string{path}
	for _, p := range s.RecentInputs {
		if p != path && len(recent) < MaxRecentInputs {
			recent = append(recent, p)
		}
	}
	s.RecentInputs = recent
}

// Store reads and writes the settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store rooted at baseDir. An empty baseDir uses
// <user config dir>/namesplit.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		confDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		baseDir = filepath.Join(confDir, "namesplit")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &Store{path: filepath.Join(baseDir, fileName)}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings document. A missing or unreadable document
// yields zero-valued settings, never an error; settings are a
// convenience, not a dependency.
func (s *Store) Load() *Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return &Settings{}
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return &Settings{}
	}
	return &out
}

// Save persists the document, stamping UpdatedAt.
func (s *Store) Save(doc *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
