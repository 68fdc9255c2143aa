// internal/config/config.go

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"remotail/internal/crypto"
	apperror "remotail/internal/error"
	"remotail/internal/models"
	"remotail/internal/ssh"
	"remotail/internal/tail"
	"remotail/internal/ui/components"
	"remotail/internal/utils"
)

const (
	DefaultConfigFileName = "config.yaml"
	DefaultConfigDir      = ".config/remotail"
	commentPrefix         = "#"
)

// TargetEntry is one target as written in a settings file.
type TargetEntry struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password,omitempty"`
}

// Settings is the YAML settings document.
type Settings struct {
	Targets               []TargetEntry `yaml:"targets"`
	LogFile               string        `yaml:"log_file"`
	ChunkSize             int           `yaml:"chunk_size"`
	KeepAliveSeconds      int           `yaml:"keepalive_seconds"`
	ConnectTimeoutSeconds int           `yaml:"connect_timeout_seconds"`
	StrictHostKeyChecking bool          `yaml:"strict_host_key_checking"`
	KnownHosts            string        `yaml:"known_hosts"`
	IdentityFiles         []string      `yaml:"identity_files"`
	UseAgent              bool          `yaml:"use_agent"`
	VerifyPath            bool          `yaml:"verify_path"`
	MaxLines              int           `yaml:"max_lines"`
	Theme                 int           `yaml:"theme"`
}

// DefaultSettings returns the values used for keys a settings file leaves out.
func DefaultSettings() Settings {
	opts := ssh.DefaultOptions()
	return Settings{
		ChunkSize:             tail.DefaultChunkSize,
		KeepAliveSeconds:      int(opts.KeepAlive / time.Second),
		ConnectTimeoutSeconds: int(opts.ConnectTimeout / time.Second),
		KnownHosts:            opts.KnownHostsPath,
		IdentityFiles:         append([]string(nil), opts.IdentityFiles...),
		UseAgent:              opts.UseAgent,
		VerifyPath:            opts.VerifyPath,
		MaxLines:              components.DefaultMaxLines,
	}
}

// normalize replaces out of range values with defaults.
func (s *Settings) normalize() {
	defaults := DefaultSettings()
	if s.ChunkSize <= 0 {
		s.ChunkSize = defaults.ChunkSize
	}
	if s.KeepAliveSeconds < 0 {
		s.KeepAliveSeconds = 0
	}
	if s.ConnectTimeoutSeconds <= 0 {
		s.ConnectTimeoutSeconds = defaults.ConnectTimeoutSeconds
	}
	if s.KnownHosts == "" {
		s.KnownHosts = defaults.KnownHosts
	}
	if s.MaxLines <= 0 {
		s.MaxLines = defaults.MaxLines
	}
}

// SSHOptions converts the connection related settings.
func (s Settings) SSHOptions() ssh.Options {
	return ssh.Options{
		KnownHostsPath:        s.KnownHosts,
		StrictHostKeyChecking: s.StrictHostKeyChecking,
		IdentityFiles:         s.IdentityFiles,
		UseAgent:              s.UseAgent,
		ConnectTimeout:        time.Duration(s.ConnectTimeoutSeconds) * time.Second,
		KeepAlive:             time.Duration(s.KeepAliveSeconds) * time.Second,
		VerifyPath:            s.VerifyPath,
	}
}

// Manager loads the settings file.
type Manager struct {
	configPath string
	settings   Settings
	log        *zap.Logger
}

// NewManager tworzy nowego menedżera konfiguracji
func NewManager(configPath string, log *zap.Logger) *Manager {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			configPath = defaultPath
		} else {
			configPath = DefaultConfigFileName
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		configPath: configPath,
		settings:   DefaultSettings(),
		log:        log,
	}
}

// Load wczytuje konfigurację z pliku. A missing file leaves the defaults.
func (m *Manager) Load() error {
	settings, err := LoadSettings(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.log.Info("no settings file, using defaults", zap.String("path", m.configPath))
			m.settings = DefaultSettings()
			return nil
		}
		return err
	}
	m.settings = settings
	m.log.Info("settings loaded", zap.String("path", m.configPath), zap.Int("targets", len(settings.Targets)))
	return nil
}

func (m *Manager) Settings() Settings {
	return m.settings
}

func (m *Manager) ConfigPath() string {
	return m.configPath
}

// LoadSettings decodes the YAML settings document at path. The returned error
// wraps os.ErrNotExist when the file is missing.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(utils.ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), apperror.New(apperror.ConfigError,
				fmt.Sprintf("settings file %s not found", path), err)
		}
		return DefaultSettings(), apperror.New(apperror.ConfigError, "failed to read settings file", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes a settings document on top of DefaultSettings.
func ParseSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return settings, nil
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), apperror.New(apperror.ConfigError, "failed to parse settings file", err)
	}
	settings.normalize()
	return settings, nil
}

// LoadTargetsFile reads a targets file. Plain files hold whitespace separated
// target strings with "#" comments; .yaml and .yml files are settings
// documents and only their targets are used.
func LoadTargetsFile(path string) ([]TargetEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		settings, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		return settings.Targets, nil
	}

	data, err := os.ReadFile(utils.ExpandHome(path))
	if err != nil {
		return nil, apperror.New(apperror.ConfigError, fmt.Sprintf("failed to read targets file %s", path), err)
	}

	var entries []TargetEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, commentPrefix); idx >= 0 {
			line = line[:idx]
		}
		for _, field := range strings.Fields(line) {
			entries = append(entries, TargetEntry{URL: field})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.New(apperror.ConfigError, fmt.Sprintf("failed to read targets file %s", path), err)
	}
	return entries, nil
}

// ResolveTargets parses entries and decrypts "enc:" passwords with cipher.
// Entries that cannot be used are logged and reported in skipped; they never
// stop the others.
func ResolveTargets(entries []TargetEntry, cipher *crypto.Cipher, log *zap.Logger) (targets []models.Target, skipped []error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, entry := range entries {
		target, err := resolve(entry, cipher)
		if err != nil {
			log.Warn("target skipped", zap.Error(err))
			skipped = append(skipped, err)
			continue
		}
		targets = append(targets, target)
	}
	return targets, skipped
}

func resolve(entry TargetEntry, cipher *crypto.Cipher) (models.Target, error) {
	target, err := models.ParseTarget(entry.URL)
	if err != nil {
		return models.Target{}, err
	}
	if entry.Password == "" {
		return target, nil
	}

	password := entry.Password
	if crypto.IsEncrypted(password) {
		if cipher == nil {
			return models.Target{}, apperror.Newf(apperror.CryptoError,
				"password for %s is encrypted but %s is not set", target.Alias, crypto.KeyEnv)
		}
		password, err = cipher.Decrypt(password)
		if err != nil {
			return models.Target{}, apperror.New(apperror.CryptoError,
				fmt.Sprintf("cannot decrypt password for %s", target.Alias), err)
		}
	}
	return target.WithPassword(password), nil
}

func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %v", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFileName), nil
}
