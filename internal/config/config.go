package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/meridianlabs/meridian-desk/internal/constants"
	"github.com/meridianlabs/meridian-desk/internal/logger"
)

// Config holds all configuration settings.
type Config struct {
	// PrimaryHost is the hostname of the primary API host (e.g. "app.meridian.io").
	PrimaryHost string `mapstructure:"primary_host"`
	// SecondaryHost is the hostname of the secondary reports host whose session
	// depends on the primary's (e.g. "reports.meridian.io").
	SecondaryHost string `mapstructure:"secondary_host"`
	// PrimaryLandingPath is the path on the primary host reached after a successful login.
	PrimaryLandingPath string `mapstructure:"primary_landing_path"`
	// SecondaryProtectedPath is the protected path on the secondary host used to
	// establish its dependent session.
	SecondaryProtectedPath string `mapstructure:"secondary_protected_path"`
	// LoginMode selects the sign-on flow variant ("sso" or "password").
	LoginMode string `mapstructure:"login_mode"`
	// VaultPreference selects the credential storage backend
	// ("auto", "platform", "encrypted_file", "legacy_file" or "none").
	VaultPreference string `mapstructure:"vault_preference"`
	// TokenFilePath is the path of the persisted token records file.
	// Empty means a file next to the configuration file.
	TokenFilePath string `mapstructure:"token_file_path"`
	// PollInterval is the interval between sign-on automation polls (e.g. "400ms").
	PollInterval string `mapstructure:"poll_interval"`
	// RefreshInterval is the interval between background refresh scans (e.g. "60s").
	RefreshInterval string `mapstructure:"refresh_interval"`
	// RefreshMargin is how long before expiry a token is considered due for refresh (e.g. "5m").
	RefreshMargin string `mapstructure:"refresh_margin"`
	// RefreshTimeout bounds a single refresh-token exchange (e.g. "30s").
	RefreshTimeout string `mapstructure:"refresh_timeout"`
	// CascadeMaxTransientHops is how many transient error/redirect pages the
	// secondary-host navigation tolerates before declaring a timeout.
	CascadeMaxTransientHops int64 `mapstructure:"cascade_max_transient_hops"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`

	// ParsedPollInterval is the parsed sign-on poll interval.
	ParsedPollInterval time.Duration
	// ParsedRefreshInterval is the parsed refresh scan interval.
	ParsedRefreshInterval time.Duration
	// ParsedRefreshMargin is the parsed refresh margin.
	ParsedRefreshMargin time.Duration
	// ParsedRefreshTimeout is the parsed refresh exchange timeout.
	ParsedRefreshTimeout time.Duration
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".meridian-desk.yaml"

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// minPollInterval is the lower bound for the sign-on poll interval.
	minPollInterval = 100 * time.Millisecond

	// maxPollInterval is the upper bound for the sign-on poll interval.
	maxPollInterval = 5 * time.Second
)

// LoginModes recognized by the sign-on automation.
const (
	// LoginModeSSO drives the external identity provider button first.
	LoginModeSSO = "sso"

	// LoginModePassword fills the identifier and password fields directly.
	LoginModePassword = "password"
)

// Vault preference values recognized by the source resolver.
const (
	// VaultPreferenceAuto picks the first healthy backend in fixed order.
	VaultPreferenceAuto = "auto"

	// VaultPreferencePlatform selects the platform secret manager.
	VaultPreferencePlatform = "platform"

	// VaultPreferenceEncryptedFile selects the encrypted file backend.
	VaultPreferenceEncryptedFile = "encrypted_file"

	// VaultPreferenceLegacyFile selects the legacy plaintext file backend.
	VaultPreferenceLegacyFile = "legacy_file"

	// VaultPreferenceNone disables credential storage.
	VaultPreferenceNone = "none"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyPrimaryHost indicates that the primary host is missing.
	ErrEmptyPrimaryHost = errors.New("primary_host cannot be empty")
	// ErrEmptySecondaryHost indicates that the secondary host is missing.
	ErrEmptySecondaryHost = errors.New("secondary_host cannot be empty")
	// ErrSameHosts indicates that both hosts are configured identically.
	ErrSameHosts = errors.New("primary_host and secondary_host must differ")
	// ErrInvalidLandingPath indicates that the primary landing path is invalid.
	ErrInvalidLandingPath = errors.New("primary_landing_path must start with '/'")
	// ErrInvalidProtectedPath indicates that the secondary protected path is invalid.
	ErrInvalidProtectedPath = errors.New("secondary_protected_path must start with '/'")
	// ErrUnknownLoginMode indicates that the login mode is not recognized.
	ErrUnknownLoginMode = errors.New("unknown login mode")
	// ErrUnknownVaultPreference indicates that the vault preference is not recognized.
	ErrUnknownVaultPreference = errors.New("unknown vault preference")
	// ErrInvalidPollInterval indicates that the poll interval is out of range.
	ErrInvalidPollInterval = errors.New("poll_interval out of range")
	// ErrInvalidRefreshInterval indicates that the refresh interval is invalid.
	ErrInvalidRefreshInterval = errors.New("refresh_interval must be positive")
	// ErrInvalidRefreshMargin indicates that the refresh margin is invalid.
	ErrInvalidRefreshMargin = errors.New("refresh_margin must be positive")
	// ErrInvalidRefreshTimeout indicates that the refresh timeout is invalid.
	ErrInvalidRefreshTimeout = errors.New("refresh_timeout must be positive")
	// ErrInvalidTransientHops indicates that the transient hop tolerance is invalid.
	ErrInvalidTransientHops = errors.New("cascade_max_transient_hops must be a positive integer")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
)

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	cfg.PrimaryHost = strings.TrimSpace(cfg.PrimaryHost)
	if cfg.PrimaryHost == "" {
		return ErrEmptyPrimaryHost
	}

	cfg.SecondaryHost = strings.TrimSpace(cfg.SecondaryHost)
	if cfg.SecondaryHost == "" {
		return ErrEmptySecondaryHost
	}

	if cfg.PrimaryHost == cfg.SecondaryHost {
		return ErrSameHosts
	}

	if !strings.HasPrefix(cfg.PrimaryLandingPath, "/") {
		return ErrInvalidLandingPath
	}

	if !strings.HasPrefix(cfg.SecondaryProtectedPath, "/") {
		return ErrInvalidProtectedPath
	}

	switch cfg.LoginMode {
	case LoginModeSSO, LoginModePassword:
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownLoginMode, cfg.LoginMode)
	}

	switch cfg.VaultPreference {
	case VaultPreferenceAuto, VaultPreferencePlatform, VaultPreferenceEncryptedFile,
		VaultPreferenceLegacyFile, VaultPreferenceNone:
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownVaultPreference, cfg.VaultPreference)
	}

	cfg.ParsedPollInterval, err = time.ParseDuration(cfg.PollInterval)
	if err != nil {
		return fmt.Errorf("failed to parse poll interval: %w", err)
	}

	if cfg.ParsedPollInterval < minPollInterval || cfg.ParsedPollInterval > maxPollInterval {
		return fmt.Errorf("%w: must be between %v and %v",
			ErrInvalidPollInterval, minPollInterval, maxPollInterval)
	}

	cfg.ParsedRefreshInterval, err = time.ParseDuration(cfg.RefreshInterval)
	if err != nil {
		return fmt.Errorf("failed to parse refresh interval: %w", err)
	}

	if cfg.ParsedRefreshInterval <= 0 {
		return ErrInvalidRefreshInterval
	}

	cfg.ParsedRefreshMargin, err = time.ParseDuration(cfg.RefreshMargin)
	if err != nil {
		return fmt.Errorf("failed to parse refresh margin: %w", err)
	}

	if cfg.ParsedRefreshMargin <= 0 {
		return ErrInvalidRefreshMargin
	}

	cfg.ParsedRefreshTimeout, err = time.ParseDuration(cfg.RefreshTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse refresh timeout: %w", err)
	}

	if cfg.ParsedRefreshTimeout <= 0 {
		return ErrInvalidRefreshTimeout
	}

	if cfg.CascadeMaxTransientHops <= 0 {
		return ErrInvalidTransientHops
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	return nil
}

// ResolvedTokenFilePath returns the token file location, defaulting to a
// file next to the configuration file.
func (cfg *Config) ResolvedTokenFilePath() string {
	if cfg.TokenFilePath != "" {
		return cfg.TokenFilePath
	}

	return filepath.Join(filepath.Dir(getConfigFilePath()), "tokens.json")
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
// Only the vault_preference key is rewritten: the login flow records the backend the
// resolver actually picked so later runs go straight to it.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.VaultPreference, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the vault_preference value in the node tree.
	updateVaultPreferenceInNode(&node, cfg.VaultPreference)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, vaultPreference string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	viper.Set("vault_preference", vaultPreference)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateVaultPreferenceInNode updates the vault_preference value in the YAML node tree.
func updateVaultPreferenceInNode(node *yaml.Node, vaultPreference string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == "vault_preference" {
			valueNode.Value = vaultPreference

			break
		}
	}
}
