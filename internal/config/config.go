package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ning0612/hfind/internal/domain"
)

// Config represents the complete configuration for hfind
type Config struct {
	// Home replaces a leading "." in the root path; empty asks the backend
	Home string `mapstructure:"home"`

	// DefaultScheme is used for roots given without a scheme. Empty means
	// the scheme of fs.defaultFS from the Hadoop configuration, or "file".
	DefaultScheme string `mapstructure:"default_scheme"`

	// ExitCodeOnError is the process exit code after a failed traversal
	ExitCodeOnError int `mapstructure:"exit_code_on_error"`

	Replication ReplicationConfig `mapstructure:"replication"`
	Log         LogConfig         `mapstructure:"log"`
	History     HistoryConfig     `mapstructure:"history"`
	HDFS        HDFSConfig        `mapstructure:"hdfs"`
	S3          S3Config          `mapstructure:"s3"`
	GDrive      GDriveConfig      `mapstructure:"gdrive"`
}

// ReplicationConfig backs the under-replicated shortcut
type ReplicationConfig struct {
	// Default is used when the backend does not report its own default
	Default int `mapstructure:"default"`
}

// LogConfig configures the logger package
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// HistoryConfig configures the query history database
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// HDFSConfig overrides what is discovered from HADOOP_CONF_DIR
type HDFSConfig struct {
	Namenodes []string `mapstructure:"namenodes"`
	User      string   `mapstructure:"user"`
}

// S3Config holds S3 connection settings
type S3Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// GDriveConfig holds Google Drive OAuth settings
type GDriveConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenPath    string `mapstructure:"token_path"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Replication.Default < 0 {
		return fmt.Errorf("%w: replication.default must not be negative: %d",
			domain.ErrConfigInvalid, c.Replication.Default)
	}
	if c.ExitCodeOnError < 0 || c.ExitCodeOnError > 125 {
		return fmt.Errorf("%w: exit_code_on_error out of range: %d",
			domain.ErrConfigInvalid, c.ExitCodeOnError)
	}
	if strings.Contains(c.DefaultScheme, ":") {
		return fmt.Errorf("%w: default_scheme must be a bare scheme name: %q",
			domain.ErrConfigInvalid, c.DefaultScheme)
	}
	if c.History.Enabled && c.History.Dir == "" {
		return fmt.Errorf("%w: history.dir cannot be empty when history is enabled", domain.ErrConfigInvalid)
	}
	if c.S3.AccessKey != "" && c.S3.SecretKey == "" {
		return fmt.Errorf("%w: s3.secret_key is required with s3.access_key", domain.ErrConfigInvalid)
	}
	return nil
}

// DefaultHistoryDir returns the default directory for the history database
func DefaultHistoryDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "hfind")
	}
	return ".hfind"
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	// Expand ~ to home directory
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	// Expand environment variables
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
