package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Metadata MetadataSettings `json:"metadata"`
	Auth     AuthSettings     `json:"auth"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// BaseURL is the externally visible URL, used by the auth service for
	// cookie and redirect construction.
	BaseURL string `json:"baseUrl"`
}

// DatabaseSettings points at the sqlite file backing the store.
type DatabaseSettings struct {
	Path string `json:"path"`
}

type MetadataSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
	// Region selects which country's certification entry the details
	// endpoint derives (first non-empty match wins).
	Region string `json:"region"`
}

// AuthSettings configures the session-issuing auth collaborator.
type AuthSettings struct {
	Secret            string `json:"secret"`
	TokenDurationMin  int    `json:"tokenDurationMinutes"`
	CookieDurationHrs int    `json:"cookieDurationHours"`
	AvatarDir         string `json:"avatarDir"`
}

// LogConfig controls file logging with rotation.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:    "0.0.0.0",
			Port:    8880,
			BaseURL: "http://127.0.0.1:8880",
		},
		Database: DatabaseSettings{
			Path: filepath.Join("data", "watchdeck.db"),
		},
		Metadata: MetadataSettings{
			Language: "en-US",
			Region:   "US",
		},
		Auth: AuthSettings{
			TokenDurationMin:  15,
			CookieDurationHrs: 24 * 30,
			AvatarDir:         filepath.Join("data", "avatars"),
		},
		Log: LogConfig{
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
		},
	}
}

// Manager loads and saves settings from a JSON file on disk.
type Manager struct {
	mu   sync.Mutex
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Load reads settings from disk, creating the file with defaults if missing.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.saveLocked(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	applyDefaults(&s)
	return s, nil
}

// Save writes settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(s)
}

func (m *Manager) saveLocked(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, m.path)
}

// applyDefaults backfills zero values so older config files keep working.
func applyDefaults(s *Settings) {
	d := DefaultSettings()
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Server.Host == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.BaseURL == "" {
		s.Server.BaseURL = d.Server.BaseURL
	}
	if s.Database.Path == "" {
		s.Database.Path = d.Database.Path
	}
	if s.Metadata.Language == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if s.Metadata.Region == "" {
		s.Metadata.Region = d.Metadata.Region
	}
	if s.Auth.TokenDurationMin == 0 {
		s.Auth.TokenDurationMin = d.Auth.TokenDurationMin
	}
	if s.Auth.CookieDurationHrs == 0 {
		s.Auth.CookieDurationHrs = d.Auth.CookieDurationHrs
	}
	if s.Auth.AvatarDir == "" {
		s.Auth.AvatarDir = d.Auth.AvatarDir
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
}
