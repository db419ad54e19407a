package graph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MetaFileName is the per-module metadata file carrying the attributes that
// go.mod cannot express.
const MetaFileName = ".pkgmeta.yaml"

// Meta is the parsed contents of a module's metadata file. Every field is
// optional; see DefaultMeta for the values used when the file is absent.
type Meta struct {
	Version string   `yaml:"version"`
	Authors []string `yaml:"authors"`
	License string   `yaml:"license"`
	Publish publish  `yaml:"publish"`
}

// publish accepts `true`, `false`, or a list of registry names.
type publish struct {
	policy PublishPolicy
	set    bool
}

func (p *publish) UnmarshalYAML(value *yaml.Node) error {
	p.set = true
	var b bool
	if err := value.Decode(&b); err == nil {
		if b {
			p.policy = PublishPolicy{Kind: PublishUnrestricted}
		} else {
			p.policy = PublishPolicy{Kind: PublishNever}
		}
		return nil
	}
	var registries []string
	if err := value.Decode(&registries); err == nil {
		p.policy = PublishPolicy{Kind: PublishRegistries, Registries: registries}
		return nil
	}
	return fmt.Errorf("publish must be a boolean or a list of registries")
}

// DefaultMeta returns the metadata assumed for a module without a metadata
// file: an unversioned, unrestricted package.
func DefaultMeta() Meta {
	return Meta{Version: "v0.0.0"}
}

// Policy returns the publish policy, defaulting to unrestricted.
func (m Meta) Policy() PublishPolicy {
	if !m.Publish.set {
		return PublishPolicy{Kind: PublishUnrestricted}
	}
	return m.Publish.policy
}

// LoadMeta reads a module's metadata file from dir. A missing file yields
// DefaultMeta; a malformed one is an error.
func LoadMeta(dir string) (Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if errors.Is(err, os.ErrNotExist) {
		return DefaultMeta(), nil
	}
	if err != nil {
		return Meta{}, fmt.Errorf("reading %s: %w", MetaFileName, err)
	}
	meta := DefaultMeta()
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("parsing %s in %s: %w", MetaFileName, dir, err)
	}
	if meta.Version == "" {
		meta.Version = "v0.0.0"
	}
	return meta, nil
}
