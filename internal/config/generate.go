package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const defaultHeader = `# world-cities configuration.
# Every key can be overridden with a WORLDCITIES_ environment variable,
# e.g. WORLDCITIES_OUTPUT_PATH=out/cities.csv.
# Empty export paths disable the corresponding exporter.
`

// WriteDefault writes the default configuration as YAML to path. An
// existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return eris.Errorf("config: %s already exists (use --force to overwrite)", path)
		}
	}

	cfg, err := Defaults()
	if err != nil {
		return err
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "config: create dir %s", dir)
		}
	}

	data := append([]byte(defaultHeader), body...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}
