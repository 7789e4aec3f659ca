package orchestration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/beacon-audit/beacon/internal/validation"
	"gopkg.in/yaml.v3"
)

// LoadArtifacts reads a gatherer's artifacts file. Files ending in .yaml or
// .yml are decoded as YAML, anything else as JSON. The document is checked
// against the artifacts schema before decoding.
func LoadArtifacts(path string) (*models.Artifacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifacts: %w", err)
	}
	return ParseArtifacts(data, filepath.Ext(path))
}

// ParseArtifacts validates and decodes artifacts. ext selects the decoder as
// in LoadArtifacts.
func ParseArtifacts(data []byte, ext string) (*models.Artifacts, error) {
	if err := validation.ArtifactsDocument.Validate(data); err != nil {
		return nil, err
	}

	var artifacts models.Artifacts
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &artifacts); err != nil {
			return nil, fmt.Errorf("parsing artifacts: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &artifacts); err != nil {
			return nil, fmt.Errorf("parsing artifacts: %w", err)
		}
	}
	return &artifacts, nil
}
