package platform

import (
	"fmt"
	"strings"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

// linuxPackages maps package managers to the packages providing a dependency
type linuxPackages struct {
	Tool     string
	Packages []string
}

var (
	vulkanPackages = []linuxPackages{
		{Tool: "apt", Packages: []string{"libvulkan-dev", "vulkan-tools", "vulkan-validationlayers"}},
		{Tool: "dnf", Packages: []string{"vulkan-loader-devel", "vulkan-tools", "vulkan-validation-layers"}},
		{Tool: "pacman", Packages: []string{"vulkan-devel"}},
	}
	sdl2Packages = []linuxPackages{
		{Tool: "apt", Packages: []string{"libsdl2-dev"}},
		{Tool: "dnf", Packages: []string{"SDL2-devel"}},
		{Tool: "pacman", Packages: []string{"sdl2"}},
	}
)

func guidance(what string, pkgs []linuxPackages) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s must be installed as a package, ignore this if already installed", what)
	for _, p := range pkgs {
		fmt.Fprintf(&sb, "\n  %s: %s", p.Tool, strings.Join(p.Packages, " "))
	}
	return sb.String()
}

type linux struct{}

func (linux) Platform() model.Platform { return model.PlatformLinux }

func (linux) Premake(version string) model.Recipe {
	name := fmt.Sprintf("premake-%s-linux.tar.gz", version)
	return model.Recipe{
		Kind:     model.RecipeFetch,
		URL:      fmt.Sprintf(premakeReleaseURL, version, name),
		FileName: name,
	}
}

func (linux) Vulkan(string) model.Recipe {
	return model.Recipe{Kind: model.RecipeGuidance, Message: guidance("Vulkan SDK", vulkanPackages)}
}

func (linux) SDL2(string) model.Recipe {
	return model.Recipe{Kind: model.RecipeGuidance, Message: guidance("SDL2", sdl2Packages)}
}

func (linux) DefaultGenerator() string { return "gmake2" }

func (linux) Executable(name string) string { return name }
