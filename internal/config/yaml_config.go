package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SettingsFile represents the structure of the settings.yaml file.
// Classification defaults are long prompt templates that are easier to
// manage in YAML than env vars. Zero values mean "keep the built-in default".
type SettingsFile struct {
	ConfidenceThreshold  *int     `yaml:"confidence_threshold"`
	Categories           []string `yaml:"categories"`
	ClassificationPrompt string   `yaml:"classification_prompt"`
	RelevancePrompt      string   `yaml:"relevance_prompt"`
	CategoryPrompt       string   `yaml:"category_prompt"`
}

// LoadSettingsFile loads the YAML classification defaults from path.
// Returns nil without error if the file doesn't exist.
func LoadSettingsFile(path string) (*SettingsFile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Settings file is optional
			return nil, nil
		}
		return nil, err
	}

	var sf SettingsFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}
