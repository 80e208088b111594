package platform

import (
	"fmt"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

type darwin struct{}

func (darwin) Platform() model.Platform { return model.PlatformDarwin }

func (darwin) Premake(version string) model.Recipe {
	name := fmt.Sprintf("premake-%s-macosx.tar.gz", version)
	return model.Recipe{
		Kind:     model.RecipeFetch,
		URL:      fmt.Sprintf(premakeReleaseURL, version, name),
		FileName: name,
	}
}

func (darwin) Vulkan(string) model.Recipe {
	return model.Recipe{Kind: model.RecipeUnsupported, Message: "Vulkan SDK installation for macOS is not yet supported, skipping"}
}

func (darwin) SDL2(string) model.Recipe {
	return model.Recipe{Kind: model.RecipeUnsupported, Message: "SDL2 download for macOS is not yet supported, skipping"}
}

func (darwin) DefaultGenerator() string { return "xcode4" }

func (darwin) Executable(name string) string { return name }
