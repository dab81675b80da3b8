package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server" toml:"server"`
	Metadata MetadataSettings `json:"metadata" toml:"metadata"`
	Images   ImageSettings    `json:"images" toml:"images"`
	Pages    PageSettings     `json:"pages" toml:"pages"`
	Theme    ThemeSettings    `json:"theme" toml:"theme"`
	Log      LogConfig        `json:"log" toml:"log"`
}

type ServerSettings struct {
	Host string `json:"host" toml:"host"`
	Port int    `json:"port" toml:"port"`
}

type MetadataSettings struct {
	TMDBAPIKey     string `json:"tmdbApiKey" toml:"tmdbApiKey"`
	Language       string `json:"language" toml:"language"`
	TimeoutSeconds int    `json:"timeoutSeconds" toml:"timeoutSeconds"`
}

func (m MetadataSettings) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

type ImageSettings struct {
	BaseURL        string `json:"baseUrl" toml:"baseUrl"`
	PlaceholderURL string `json:"placeholderUrl" toml:"placeholderUrl"` // {size} is replaced with WxH
}

// PageSettings bounds the live detail pages kept in memory.
type PageSettings struct {
	MaxInstances int `json:"maxInstances" toml:"maxInstances"`
	TTLMinutes   int `json:"ttlMinutes" toml:"ttlMinutes"`
}

func (p PageSettings) TTL() time.Duration {
	return time.Duration(p.TTLMinutes) * time.Minute
}

// ThemeSettings is the palette passed to every rendered view.
type ThemeSettings struct {
	Mode       string `json:"mode" toml:"mode"` // dark | light
	Primary    string `json:"primary" toml:"primary"`
	Secondary  string `json:"secondary" toml:"secondary"`
	Background string `json:"background" toml:"background"`
	Paper      string `json:"paper" toml:"paper"`
}

// LogConfig configures file logging with rotation.
type LogConfig struct {
	File       string `json:"file" toml:"file"`
	MaxSize    int    `json:"maxSize" toml:"maxSize"`       // megabytes
	MaxAge     int    `json:"maxAge" toml:"maxAge"`         // days
	MaxBackups int    `json:"maxBackups" toml:"maxBackups"` // files
	Compress   bool   `json:"compress" toml:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7777},
		Metadata: MetadataSettings{TMDBAPIKey: "", Language: "fr-FR", TimeoutSeconds: 15},
		Images: ImageSettings{
			BaseURL:        "https://image.tmdb.org/t/p",
			PlaceholderURL: "https://via.placeholder.com/{size}?text=No+Image",
		},
		Pages: PageSettings{MaxInstances: 256, TTLMinutes: 30},
		Theme: ThemeSettings{
			Mode:       "dark",
			Primary:    "#1976d2",
			Secondary:  "#dc004e",
			Background: "#121212",
			Paper:      "#1e1e1e",
		},
		Log: LogConfig{File: "", MaxSize: 10, MaxAge: 14, MaxBackups: 3, Compress: true},
	}
}

type Manager struct {
	path string
	fs   afero.Fs
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs is used by tests to keep settings in memory.
func NewManagerWithFs(fs afero.Fs, configPath string) *Manager {
	return &Manager{path: configPath, fs: fs}
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) isTOML() bool {
	return strings.EqualFold(filepath.Ext(m.path), ".toml")
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads the settings file or creates it with defaults if missing.
// Keys absent from the file keep their default values. Environment
// overrides are applied on top and never written back.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	if !exists {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return applyEnv(defaults), nil
	}

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}

	settings := DefaultSettings()
	if m.isTOML() {
		err = toml.Unmarshal(data, &settings)
	} else {
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", m.path, err)
	}

	return applyEnv(settings.withDefaults()), nil
}

// Save writes settings atomically through a temp file.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if m.isTOML() {
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(s); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return err
		}
	}

	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, buf.Bytes(), 0o644); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

// withDefaults fills values that must never be zero.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Server.Port <= 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if s.Metadata.TimeoutSeconds <= 0 {
		s.Metadata.TimeoutSeconds = d.Metadata.TimeoutSeconds
	}
	if strings.TrimSpace(s.Images.BaseURL) == "" {
		s.Images.BaseURL = d.Images.BaseURL
	}
	if strings.TrimSpace(s.Images.PlaceholderURL) == "" {
		s.Images.PlaceholderURL = d.Images.PlaceholderURL
	}
	if s.Pages.MaxInstances <= 0 {
		s.Pages.MaxInstances = d.Pages.MaxInstances
	}
	if s.Pages.TTLMinutes <= 0 {
		s.Pages.TTLMinutes = d.Pages.TTLMinutes
	}
	return s
}

func applyEnv(s Settings) Settings {
	if key := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); key != "" {
		s.Metadata.TMDBAPIKey = key
	}
	if lang := strings.TrimSpace(os.Getenv("MOVIEFLEX_LANGUAGE")); lang != "" {
		s.Metadata.Language = lang
	}
	if port, err := strconv.Atoi(strings.TrimSpace(os.Getenv("PORT"))); err == nil && port > 0 {
		s.Server.Port = port
	}
	return s
}
