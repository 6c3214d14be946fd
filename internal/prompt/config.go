package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

//go:embed defaults
var embeddedDefaults embed.FS

const defaultConfigFile = "defaults/enem.yaml"

// Config holds the model identifier and the prompt templates.
// SystemMessage and UserMessage are text/template sources rendered
// against Data.
type Config struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Model         string `yaml:"model"`
	SystemMessage string `yaml:"system_message"`
	UserMessage   string `yaml:"user_message"`
}

// Default returns the embedded ENEM configuration.
func Default() (*Config, error) {
	data, err := fs.ReadFile(embeddedDefaults, defaultConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompt config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded prompt config: %w", err)
	}
	return &cfg, nil
}

// Load reads a prompt configuration from path. Fields the file leaves
// empty keep their embedded defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Wrap(apperror.KindFile, err, "O arquivo de prompts '%s' não foi encontrado", path)
		}
		return nil, apperror.Wrap(apperror.KindFile, err, "Não foi possível ler o arquivo de prompts '%s'", path)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, apperror.Wrap(apperror.KindParse, err, "O arquivo de prompts '%s' não é um YAML válido", path)
	}

	cfg.merge(override)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Name != "" {
		c.Name = o.Name
	}
	if o.Description != "" {
		c.Description = o.Description
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.SystemMessage != "" {
		c.SystemMessage = o.SystemMessage
	}
	if o.UserMessage != "" {
		c.UserMessage = o.UserMessage
	}
}
