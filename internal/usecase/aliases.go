package usecase

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasFile is the on-disk format for alias overrides:
//
//	aliases:
//	  - canonical: tart
//	    variants: [crostatine, crostata]
//	blacklist: [ddar]
type AliasFile struct {
	Aliases   []AliasEntry `yaml:"aliases"`
	Blacklist []string     `yaml:"blacklist"`
}

// AliasEntry maps several variants onto one canonical name
type AliasEntry struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// LoadAliasFile reads an alias override file and flattens it to variant -> canonical
func LoadAliasFile(path string) (map[string]string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read alias file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes alias overrides from YAML
func ParseAliases(data []byte) (map[string]string, []string, error) {
	var file AliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse alias file: %w", err)
	}

	aliases := make(map[string]string)
	for i, entry := range file.Aliases {
		if entry.Canonical == "" {
			return nil, nil, fmt.Errorf("alias entry %d: canonical name is required", i)
		}
		for _, variant := range entry.Variants {
			aliases[variant] = entry.Canonical
		}
	}
	return aliases, file.Blacklist, nil
}
