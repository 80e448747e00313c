package config

import (
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

var labIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// LabsConfig represents the lab roster configuration file
type LabsConfig struct {
	Labs []LabEntry `toml:"lab"`
}

// LabEntry is one lab declaration in the configuration file
type LabEntry struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	SlackChannel string `toml:"slack_channel"`
}

// Validate checks if the LabEntry is valid
func (l *LabEntry) Validate() error {
	if l.ID == "" {
		return goerr.Wrap(ErrMissingLabID, "lab entry without ID")
	}
	if !labIDPattern.MatchString(l.ID) {
		return goerr.Wrap(ErrInvalidLabID, "lab ID must be lowercase alphanumeric with hyphens",
			goerr.V(LabIDKey, l.ID))
	}
	if l.Name == "" {
		return goerr.Wrap(ErrMissingLabName, "lab entry without name", goerr.V(LabIDKey, l.ID))
	}
	return nil
}

// Validate checks if the LabsConfig is valid
func (c *LabsConfig) Validate() error {
	if len(c.Labs) == 0 {
		return ErrNoLabsConfigured
	}

	seen := make(map[string]bool)
	for i, lab := range c.Labs {
		if err := lab.Validate(); err != nil {
			return goerr.Wrap(err, "invalid lab entry", goerr.V(LabIndexKey, i))
		}
		if seen[lab.ID] {
			return goerr.Wrap(ErrDuplicateLabID, "lab declared twice", goerr.V(LabIDKey, lab.ID))
		}
		seen[lab.ID] = true
	}

	return nil
}

// LoadLabsConfiguration loads the lab roster from a TOML file
func LoadLabsConfiguration(path string) (*LabsConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "labs config file does not exist",
				goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read labs config file", goerr.V(ConfigPathKey, path))
	}

	var config LabsConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML labs config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "labs config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToRegistry converts the configuration to a LabRegistry
func (c *LabsConfig) ToRegistry() (*model.LabRegistry, error) {
	registry := model.NewLabRegistry()
	for _, lab := range c.Labs {
		if err := registry.Register(&model.Lab{
			ID:           lab.ID,
			Name:         lab.Name,
			SlackChannel: lab.SlackChannel,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to register lab", goerr.V(LabIDKey, lab.ID))
		}
	}
	return registry, nil
}

// Labs holds the CLI flag for the lab roster file
type Labs struct {
	path string
}

// Flags returns CLI flags for the lab roster
func (l *Labs) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "labs-config",
			Usage:       "Path to the TOML lab roster file",
			Required:    true,
			Sources:     cli.EnvVars("BEAKERHUB_LABS_CONFIG"),
			Destination: &l.path,
		},
	}
}

// Configure loads the roster file and builds the registry
func (l *Labs) Configure() (*model.LabRegistry, error) {
	config, err := LoadLabsConfiguration(l.path)
	if err != nil {
		return nil, err
	}
	return config.ToRegistry()
}
