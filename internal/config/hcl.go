package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// manifest is the on-disk shape of a resources.hcl file: a flat list of
// resource blocks, each labeled with the logical URI it answers for.
//
//	resource "file:///etc/foo" {
//	  path = "./testdata/foo.bin"
//	}
type manifest struct {
	Resources []resourceBlock `hcl:"resource,block"`
}

type resourceBlock struct {
	URI  string `hcl:"uri,label"`
	Path string `hcl:"path"`
}

// HCLConfiguration is a Configuration backed by a single parsed HCL
// manifest file mapping logical URIs onto filesystem paths.
type HCLConfiguration struct {
	baseDir string
	paths   map[string]string
}

// LoadManifest parses the HCL manifest at manifestPath and returns a
// Configuration resolving every declared resource URI relative to the
// manifest's own directory.
func LoadManifest(manifestPath string) (*HCLConfiguration, error) {
	var m manifest
	if err := hclsimple.DecodeFile(manifestPath, nil, &m); err != nil {
		return nil, fmt.Errorf("config: parsing manifest %s: %w", manifestPath, err)
	}

	baseDir := filepath.Dir(manifestPath)
	paths := make(map[string]string, len(m.Resources))
	for _, r := range m.Resources {
		resolved := r.Path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(baseDir, resolved)
		}
		paths[r.URI] = resolved
	}

	return &HCLConfiguration{baseDir: baseDir, paths: paths}, nil
}

// Load reads the resource's resolved file from disk. The context is
// accepted for interface symmetry with network-backed Configuration
// implementations; plain file reads are not cancellable mid-read.
func (c *HCLConfiguration) Load(ctx context.Context, uri string) ([]byte, error) {
	path, ok := c.Locate(uri)
	if !ok {
		return nil, fmt.Errorf("config: no resource declared for %q", uri)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s (resource %q): %w", path, uri, err)
	}
	return data, nil
}

// Locate reports the resolved filesystem path for uri, if the manifest
// declares one.
func (c *HCLConfiguration) Locate(uri string) (string, bool) {
	path, ok := c.paths[uri]
	return path, ok
}
