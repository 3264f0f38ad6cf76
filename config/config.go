package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

const (
	defaultPort            = "52000"
	defaultTimezone        = "Europe/Brussels"
	defaultLandingPath     = "/staging-access"
	defaultVaultKVMount    = "secret"
	defaultVaultStagingKey = "storefront/staging"
)

// Config holds application configuration.
type Config struct {
	Env             Environment
	Port            string
	LogLevel        string
	LogFormat       string
	LogOutput       string
	LogFilePath     string
	Timezone        string
	DataDir         string
	DatabaseURL     string
	LocaleDetection bool
	TrustProxy      bool
	CORS            CORSConfig
	Staging         StagingConfig
	Vault           VaultConfig
}

// CORSConfig holds CORS-specific configuration.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// StagingConfig drives the staging access gate. Hosts outside
// ProductionHosts are gated; an empty list disables the gate.
type StagingConfig struct {
	ProductionHosts []string
	PIN             string
	LandingPath     string
}

// VaultConfig locates the staging PIN in a KV v2 engine.
type VaultConfig struct {
	Addr        string
	Token       string
	KVMount     string
	StagingPath string
	TLSInsecure bool
}

// Enabled reports whether the PIN should be read from Vault.
func (v VaultConfig) Enabled() bool {
	return strings.TrimSpace(v.Addr) != "" && strings.TrimSpace(v.Token) != ""
}

type SettingsFile struct {
	App     AppSettings     `json:"app"`
	Routing RoutingSettings `json:"routing"`
	Staging StagingSettings `json:"staging"`
	CORS    CORSSettings    `json:"cors"`
}

type AppSettings struct {
	Env        string          `json:"env"`
	Logging    LoggingSettings `json:"logging"`
	Port       int             `json:"port"`
	Timezone   string          `json:"timezone"`
	DataDir    string          `json:"data_dir"`
	TrustProxy bool            `json:"trust_proxy"`
}

type LoggingSettings struct {
	Level    string `json:"level"`
	Format   string `json:"format"`
	Output   string `json:"output"`
	FilePath string `json:"file_path"`
}

type RoutingSettings struct {
	LocaleDetection bool `json:"locale_detection"`
}

type StagingSettings struct {
	ProductionHosts []string `json:"production_hosts"`
	LandingPath     string   `json:"landing_path"`
}

type CORSSettings struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// Load reads configuration from a settings file when one exists, otherwise
// from environment variables. Secrets (staging PIN, database URL, Vault
// token) only ever come from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	settings, settingsPath, settingsErr := loadSettingsFile()
	if settingsErr != nil && !errors.Is(settingsErr, os.ErrNotExist) {
		return Config{}, fmt.Errorf("invalid settings file %s: %w", settingsPath, settingsErr)
	}

	var cfg Config
	if settings != nil {
		cfg = buildConfigFromSettings(*settings)
		applyLoggingEnv(cfg)
	} else {
		cfg = buildConfigFromEnv()
	}
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", ""))
	cfg.Staging.PIN = strings.TrimSpace(getEnv("STAGING_PIN", ""))
	cfg.Vault = loadVaultConfig()
	return cfg, nil
}

// loadSettingsFile returns os.ErrNotExist when no settings file applies.
// An explicit SETTINGS_PATH that cannot be read is an error.
func loadSettingsFile() (*SettingsFile, string, error) {
	if explicit := strings.TrimSpace(getEnv("SETTINGS_PATH", "")); explicit != "" {
		settings, path, err := readSettings(explicit)
		if errors.Is(err, os.ErrNotExist) {
			return nil, path, fmt.Errorf("SETTINGS_PATH: %v", err)
		}
		return settings, path, err
	}
	envName := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev")))
	for _, candidate := range []string{fmt.Sprintf("settings.%s.json", envName), "settings.json", "/etc/storefront/settings.json"} {
		settings, path, err := readSettings(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return settings, path, err
	}
	return nil, "", os.ErrNotExist
}

func readSettings(candidate string) (*SettingsFile, string, error) {
	absPath, err := filepath.Abs(candidate)
	if err != nil {
		return nil, candidate, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, absPath, err
	}
	var settings SettingsFile
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, absPath, err
	}
	return &settings, absPath, nil
}

func buildConfigFromEnv() Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	return Config{
		Env:             env,
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel(env)),
		LogFormat:       getEnv("LOG_FORMAT", defaultLogFormat(env)),
		LogOutput:       getEnv("LOG_OUTPUT", "stdout"),
		LogFilePath:     getEnv("LOG_FILE_PATH", ""),
		Timezone:        getEnv("TIMEZONE", defaultTimezone),
		DataDir:         strings.TrimSpace(getEnv("DATA_DIR", "")),
		LocaleDetection: getEnvBool("LOCALE_DETECTION", false),
		TrustProxy:      getEnvBool("TRUST_PROXY", false),
		CORS:            loadCORSConfig(env),
		Staging: StagingConfig{
			ProductionHosts: splitList(getEnv("PRODUCTION_HOSTS", "")),
			LandingPath:     getEnv("STAGING_LANDING_PATH", defaultLandingPath),
		},
	}
}

func buildConfigFromSettings(settings SettingsFile) Config {
	envValue := strings.TrimSpace(settings.App.Env)
	if envValue == "" {
		envValue = "dev"
	}
	env := parseEnv(envValue)
	port := defaultPort
	if settings.App.Port > 0 {
		port = strconv.Itoa(settings.App.Port)
	}
	cors := loadCORSConfig(env)
	if len(settings.CORS.AllowedOrigins) > 0 {
		cors.AllowedOrigins = settings.CORS.AllowedOrigins
		cors.AllowCredentials = settings.CORS.AllowCredentials
	}
	return Config{
		Env:             env,
		Port:            port,
		LogLevel:        orDefault(settings.App.Logging.Level, defaultLogLevel(env)),
		LogFormat:       orDefault(settings.App.Logging.Format, defaultLogFormat(env)),
		LogOutput:       orDefault(settings.App.Logging.Output, "stdout"),
		LogFilePath:     strings.TrimSpace(settings.App.Logging.FilePath),
		Timezone:        orDefault(settings.App.Timezone, defaultTimezone),
		DataDir:         strings.TrimSpace(settings.App.DataDir),
		LocaleDetection: settings.Routing.LocaleDetection,
		TrustProxy:      settings.App.TrustProxy,
		CORS:            cors,
		Staging: StagingConfig{
			ProductionHosts: trimAll(settings.Staging.ProductionHosts),
			LandingPath:     orDefault(settings.Staging.LandingPath, defaultLandingPath),
		},
	}
}

func applyLoggingEnv(cfg Config) {
	if strings.TrimSpace(cfg.LogOutput) != "" {
		_ = os.Setenv("LOG_OUTPUT", cfg.LogOutput)
	}
	if strings.TrimSpace(cfg.LogFormat) != "" {
		_ = os.Setenv("LOG_FORMAT", cfg.LogFormat)
	}
	if strings.TrimSpace(cfg.LogFilePath) != "" {
		_ = os.Setenv("LOG_FILE_PATH", cfg.LogFilePath)
	}
}

// IsDev returns true if the environment is development.
func (c Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsProd returns true if the environment is production.
func (c Config) IsProd() bool {
	return c.Env == EnvProd
}

func parseEnv(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return EnvProd
	default:
		return EnvDev
	}
}

func defaultLogLevel(env Environment) string {
	if env == EnvProd {
		return "info"
	}
	return "debug"
}

func defaultLogFormat(env Environment) string {
	if env == EnvProd {
		return "json"
	}
	return "console"
}

func loadCORSConfig(env Environment) CORSConfig {
	if origins := splitList(getEnv("CORS_ALLOWED_ORIGINS", "")); len(origins) > 0 {
		return CORSConfig{AllowedOrigins: origins, AllowCredentials: true}
	}
	if env == EnvProd {
		return CORSConfig{AllowedOrigins: []string{}, AllowCredentials: true}
	}
	return CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:4321"},
		AllowCredentials: true,
	}
}

func loadVaultConfig() VaultConfig {
	return VaultConfig{
		Addr:        strings.TrimSpace(getEnv("VAULT_ADDR", "")),
		Token:       strings.TrimSpace(getEnv("VAULT_TOKEN", "")),
		KVMount:     strings.Trim(getEnv("VAULT_KV_MOUNT", defaultVaultKVMount), "/ "),
		StagingPath: strings.Trim(getEnv("VAULT_STAGING_PATH", defaultVaultStagingKey), "/ "),
		TLSInsecure: getEnvBool("VAULT_TLS_INSECURE", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return trimAll(strings.Split(raw, ","))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
