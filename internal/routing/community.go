package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CommunityConfig holds per-community settings managed by admin commands.
type CommunityConfig struct {
	Prefix         string `json:"prefix,omitempty"`
	WelcomeChannel string `json:"welcome_channel,omitempty"`
	LogChannel     string `json:"log_channel,omitempty"`
	AutoMod        bool   `json:"auto_mod,omitempty"`
}

// DefaultPrefix is used when a community has not configured one.
const DefaultPrefix = "/"

// CommunityStore persists CommunityConfig per community in a JSON file.
type CommunityStore struct {
	mu      sync.RWMutex
	path    string
	configs map[string]CommunityConfig
}

// OpenCommunityStore loads community configs from path, creating if absent.
func OpenCommunityStore(path string) (*CommunityStore, error) {
	s := &CommunityStore{
		path:    path,
		configs: make(map[string]CommunityConfig),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read community configs: %w", err)
	}
	if err := json.Unmarshal(data, &s.configs); err != nil {
		return nil, fmt.Errorf("parse community configs: %w", err)
	}
	return s, nil
}

// Get returns the community's config, or a zero config with defaults applied.
func (s *CommunityStore) Get(communityID string) CommunityConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.configs[communityID]
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	return cfg
}

// Update applies fn to the community's config and persists the result.
func (s *CommunityStore) Update(communityID string, fn func(*CommunityConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.configs[communityID]
	fn(&cfg)
	s.configs[communityID] = cfg

	data, err := json.MarshalIndent(s.configs, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0600)
}
