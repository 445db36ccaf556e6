package config

import (
	"fmt"
	"os"

	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	LogFile        string
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the pamforge.yaml structure. Every field can be
// overridden from the command line; the file only supplies defaults for
// a given environment or team.
type Definition struct {
	Version int    `yaml:"version"`
	Gateway string `yaml:"gateway"`
	CSV     string `yaml:"csv"`

	// NoHeader marks the CSV as the strict headerless three-column
	// variant instead of the default header form.
	NoHeader bool `yaml:"no_header,omitempty"`

	Folders    FolderConfig     `yaml:"folders"`
	Connection ConnectionConfig `yaml:"connection"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Probe      ProbeConfig      `yaml:"probe"`
	Output     OutputConfig     `yaml:"output"`

	SkipConfigBinding bool `yaml:"skip_config_binding,omitempty"`
	DryRun            bool `yaml:"dry_run,omitempty"`
	Shred             bool `yaml:"shred,omitempty"`
}

// FolderConfig names the shared folders the generated records land in.
type FolderConfig struct {
	Users     string `yaml:"users"`
	Resources string `yaml:"resources"`
	// Parent is an existing shared-folder path to nest both folders
	// under. Imports cannot create nested shared folders directly, so
	// a non-empty Parent adds folder-move commands to the setup stage.
	Parent string `yaml:"parent,omitempty"`
}

// ConnectionConfig describes how generated machines are connected to.
type ConnectionConfig struct {
	Protocol        string `yaml:"protocol"`
	Port            int    `yaml:"port,omitempty"` // 0 = protocol default
	OperatingSystem string `yaml:"os"`
	SSLVerification bool   `yaml:"ssl_verification,omitempty"`
	Recording       bool   `yaml:"recording,omitempty"`
}

// RotationConfig controls the rotation-scheduling stage.
type RotationConfig struct {
	// Admin references the credential used to perform resets. Empty
	// means self-administered rotation.
	Admin    string `yaml:"admin,omitempty"`
	Schedule string `yaml:"schedule,omitempty"`
}

// ProbeConfig controls the optional pre-generation reachability check.
type ProbeConfig struct {
	Enabled   bool `yaml:"enabled,omitempty"`
	Port      int  `yaml:"port,omitempty"`
	TimeoutMs int  `yaml:"timeout_ms,omitempty"`
	Workers   int  `yaml:"workers,omitempty"`
}

// OutputConfig names the generated artifact files.
type OutputConfig struct {
	Records  string `yaml:"records"`
	Commands string `yaml:"commands"`
}

// Defaults returns a Definition populated with the shipped defaults.
func Defaults() *Definition {
	return &Definition{
		Version: 1,
		CSV:     "servers_to_import.csv",
		Folders: FolderConfig{
			Users:     "PAM_Users",
			Resources: "PAM_Resources",
		},
		Connection: ConnectionConfig{
			Protocol:        "rdp",
			OperatingSystem: "Windows",
		},
		Probe: ProbeConfig{
			Port:      5986,
			TimeoutMs: 3000,
		},
		Output: OutputConfig{
			Records:  "pam_records_import.json",
			Commands: "pam_commands.txt",
		},
	}
}

// Load reads and parses the pamforge.yaml file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return pferrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Run 'pamforge init' to create a new configuration file",
			}
		}
		return pferrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def := Defaults()
	if err := yaml.Unmarshal(data, def); err != nil {
		return pferrors.ConfigError{
			Field:      "path",
			Value:      c.Path,
			Message:    fmt.Sprintf("invalid YAML: %v", err),
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}
	if def.Version != 1 {
		return pferrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 1'",
		}
	}

	c.Definition = def
	return nil
}

// LoadOrDefaults loads the configuration file when it exists and falls
// back to the shipped defaults otherwise. Flags still override either.
func (c *Config) LoadOrDefaults() error {
	if _, err := os.Stat(c.Path); err != nil {
		if os.IsNotExist(err) {
			c.Definition = Defaults()
			return nil
		}
		return pferrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	return c.Load()
}
