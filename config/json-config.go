package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlasapi"
	"github.com/carbocation/brainatlas/connectivity"
	"github.com/carbocation/pfx"
	"github.com/kardianos/osext"
)

// DefaultFileName is looked for beside the executable when no config path is
// given.
const DefaultFileName = "brainatlas.json"

type JSONConfig struct {
	ConfigPath       string  `json:"-"`
	CacheDir         string  `json:"cache_dir"`
	APIBaseURL       string  `json:"api_base_url"`
	PageSize         int     `json:"page_size"`
	ProjectionMetric string  `json:"projection_metric"`
	VolumeThreshold  float64 `json:"volume_threshold"`
	Cre              bool    `json:"cre"`
	Port             int     `json:"port"`
}

func Default() JSONConfig {
	return JSONConfig{
		CacheDir:         "~/.brainatlas",
		APIBaseURL:       atlasapi.DefaultBaseURL,
		PageSize:         atlasapi.DefaultPageSize,
		ProjectionMetric: string(brainatlas.DefaultMetric),
		VolumeThreshold:  connectivity.DefaultVolumeThreshold,
		Port:             9019,
	}
}

// DefaultPath is DefaultFileName in the folder of the running executable.
func DefaultPath() string {
	folder, err := osext.ExecutableFolder()
	if err != nil {
		return DefaultFileName
	}

	return filepath.Join(folder, DefaultFileName)
}

// Load reads the config at path. With an empty path, the config beside the
// executable is used if it exists, and the defaults otherwise.
func Load(path string) (JSONConfig, error) {
	if path != "" {
		return ParseJSONConfigFromPath(path)
	}

	path = DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return ParseJSONConfigFromPath(path)
}

// ParseJSONConfigFromPath overlays the JSON file at path onto the defaults.
func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := Default()
	out.ConfigPath = brainatlas.ExpandHome(path)

	f, err := os.Open(out.ConfigPath)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return out, pfx.Err(err)
	}

	if _, err := brainatlas.ParseMetric(out.ProjectionMetric); err != nil {
		return out, pfx.Err(err)
	}
	if out.VolumeThreshold < 0 {
		return out, pfx.Err(fmt.Errorf("volume_threshold must not be negative, got %v", out.VolumeThreshold))
	}

	// Interpret ~ if present
	out.CacheDir = brainatlas.ExpandHome(out.CacheDir)

	return out, nil
}
