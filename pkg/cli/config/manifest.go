package config

import (
	"bytes"
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

//go:embed default_manifest.toml
var defaultManifest []byte

// Manifest holds the location of the dependency manifest
type Manifest struct {
	Path string
}

// Flags returns CLI flags for manifest configuration
func (c *Manifest) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "manifest",
			Usage:       "TOML file listing dependency versions and repositories (built-in list when empty)",
			Destination: &c.Path,
			Sources:     cli.EnvVars("GROUNDWORK_MANIFEST"),
		},
	}
}

// Load reads and validates the manifest
func (c *Manifest) Load() (*model.Manifest, error) {
	data := defaultManifest
	if c.Path != "" {
		path, err := homedir.Expand(c.Path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to expand manifest path", goerr.V("path", c.Path))
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
		}
	}

	return ParseManifest(data)
}

// ParseManifest decodes a TOML manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (*model.Manifest, error) {
	var m model.Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, goerr.Wrap(err, "failed to decode manifest")
	}

	if err := m.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid manifest")
	}
	return &m, nil
}

// EncodeManifest renders m as TOML
func EncodeManifest(m *model.Manifest) ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode manifest")
	}
	return data, nil
}
