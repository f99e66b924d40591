package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Job file formats understood by DecodeJob.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath picks the job file format from the file extension.
// ".yaml" and ".yml" are YAML; anything else is JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadJob reads and decodes the job file at path.
//
// Errors:
//   - Returns the open/read error or the decode error, prefixed with the path.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	j, err := DecodeJob(data, FormatFromPath(path))
	if err != nil {
		return Job{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return j, nil
}

// DecodeJob decodes a job file body in the given format.
//
// Edge cases:
//   - An empty body decodes to the zero Job.
//   - Config is never nil after a successful decode.
func DecodeJob(data []byte, format string) (Job, error) {
	var j Job
	if len(strings.TrimSpace(string(data))) > 0 {
		var err error
		switch format {
		case FormatYAML:
			err = yaml.Unmarshal(data, &j)
		case FormatJSON:
			err = json.Unmarshal(data, &j)
		default:
			return Job{}, fmt.Errorf("unsupported job format %q", format)
		}
		if err != nil {
			return Job{}, err
		}
	}
	if j.Config == nil {
		j.Config = Values{}
	}
	return j, nil
}
