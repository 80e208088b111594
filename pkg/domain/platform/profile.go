// Package platform holds per-platform knowledge of where dependencies come
// from and which premake target a host generates by default.
package platform

import (
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

const (
	premakeReleaseURL = "https://github.com/premake/premake-core/releases/download/v%[1]s/%[2]s"
	vulkanInstallURL  = "https://sdk.lunarg.com/sdk/download/%[1]s/windows/VulkanSDK-%[1]s-Installer.exe"
	sdl2ReleaseURL    = "https://github.com/libsdl-org/SDL/releases/download/release-%[1]s/SDL2-devel-%[1]s-VC.zip"
)

// Profile is the recipe book of one host platform
type Profile interface {
	Platform() model.Platform

	// Premake returns how the premake archive is obtained
	Premake(version string) model.Recipe

	// Vulkan returns how the Vulkan SDK is obtained
	Vulkan(version string) model.Recipe

	// SDL2 returns how SDL2 development libraries are obtained
	SDL2(version string) model.Recipe

	// DefaultGenerator is the premake action used when none is given
	DefaultGenerator() string

	// Executable returns the on-disk file name of an executable
	Executable(name string) string
}

var (
	registryMu sync.RWMutex
	registry   = map[model.Platform]Profile{}
)

// Register adds a profile, replacing any profile of the same platform
func Register(p Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Platform()] = p
}

// Lookup returns the profile registered for p
func Lookup(p model.Platform) (Profile, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	profile, ok := registry[p]
	if !ok {
		return nil, goerr.Wrap(types.ErrUnsupportedPlatform, "no profile for platform",
			goerr.V("platform", p),
			goerr.V("supported", supportedLocked()),
		)
	}
	return profile, nil
}

// Supported returns the registered platforms sorted by name
func Supported() []model.Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return supportedLocked()
}

func supportedLocked() []model.Platform {
	platforms := make([]model.Platform, 0, len(registry))
	for p := range registry {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

func init() {
	Register(windows{})
	Register(linux{})
	Register(darwin{})
}
