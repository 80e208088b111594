package platform

import (
	"fmt"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

type windows struct{}

func (windows) Platform() model.Platform { return model.PlatformWindows }

func (windows) Premake(version string) model.Recipe {
	name := fmt.Sprintf("premake-%s-windows.zip", version)
	return model.Recipe{
		Kind:     model.RecipeFetch,
		URL:      fmt.Sprintf(premakeReleaseURL, version, name),
		FileName: name,
	}
}

func (windows) Vulkan(version string) model.Recipe {
	return model.Recipe{
		Kind:     model.RecipeFetch,
		URL:      fmt.Sprintf(vulkanInstallURL, version),
		FileName: fmt.Sprintf("VulkanSDK-%s-Installer.exe", version),
	}
}

func (windows) SDL2(version string) model.Recipe {
	return model.Recipe{
		Kind:     model.RecipeFetch,
		URL:      fmt.Sprintf(sdl2ReleaseURL, version),
		FileName: fmt.Sprintf("SDL2-devel-%s-VC.zip", version),
	}
}

func (windows) DefaultGenerator() string { return "vs2022" }

func (windows) Executable(name string) string { return name + ".exe" }
