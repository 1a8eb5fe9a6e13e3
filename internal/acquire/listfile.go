// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ReferenceList is the YAML form of a batch input file.
type ReferenceList struct {
	OutputDir  string   `yaml:"output_dir,omitempty"`
	References []string `yaml:"references"`
}

// LoadReferences reads a batch input file. Files ending in .yaml or .yml
// are parsed as a ReferenceList; anything else holds one reference per
// line, with blank lines and lines starting with # ignored.
func LoadReferences(path string) (ReferenceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReferenceList{}, fmt.Errorf("reading reference list: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var list ReferenceList
		if err := yaml.Unmarshal(data, &list); err != nil {
			return ReferenceList{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		return list, nil
	}

	var list ReferenceList
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.References = append(list.References, line)
	}
	if err := sc.Err(); err != nil {
		return ReferenceList{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return list, nil
}
