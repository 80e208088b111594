package model

import (
	"path"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Manifest lists every dependency groundwork materializes
type Manifest struct {
	ThirdPartyDir string       `toml:"thirdparty_dir"`
	Premake       Tool         `toml:"premake"`
	Vulkan        Tool         `toml:"vulkan"`
	SDL2          Tool         `toml:"sdl2"`
	Repositories  []Repository `toml:"repository"`
}

// Tool is a prebuilt dependency pinned to a version
type Tool struct {
	Version string `toml:"version"`
}

// DefaultThirdPartyDir is the container directory used when a manifest does not name one
const DefaultThirdPartyDir = "Thirdparty"

// Validate checks that every dependency can be materialized and fills defaults
func (m *Manifest) Validate() error {
	if m.ThirdPartyDir == "" {
		m.ThirdPartyDir = DefaultThirdPartyDir
	}
	if !filepath.IsLocal(m.ThirdPartyDir) {
		return goerr.New("thirdparty_dir must be a relative path inside the project", goerr.V("thirdparty_dir", m.ThirdPartyDir))
	}

	for name, tool := range map[string]Tool{"premake": m.Premake, "vulkan": m.Vulkan, "sdl2": m.SDL2} {
		if tool.Version == "" {
			return goerr.New("tool version is required", goerr.V("tool", name))
		}
	}

	seen := make(map[string]bool, len(m.Repositories))
	for i, repo := range m.Repositories {
		if repo.Name == "" || repo.URL == "" {
			return goerr.New("repository requires name and url", goerr.V("index", i))
		}
		if !filepath.IsLocal(filepath.FromSlash(repo.Name)) {
			return goerr.New("repository name must be a relative folder", goerr.V("name", repo.Name))
		}
		if seen[repo.Name] {
			return goerr.New("duplicated repository", goerr.V("name", repo.Name))
		}
		seen[repo.Name] = true

		// nested repositories are cloned after their parent
		if parent := path.Dir(repo.Name); parent != "." && !seen[parent] && m.hasRepository(parent) {
			return goerr.New("nested repository listed before its parent", goerr.V("name", repo.Name), goerr.V("parent", parent))
		}
	}

	return nil
}

func (m *Manifest) hasRepository(name string) bool {
	for _, repo := range m.Repositories {
		if repo.Name == name {
			return true
		}
	}
	return false
}
