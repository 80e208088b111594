package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/groundwork-dev/groundwork/pkg/cli/config"
	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

func TestManifest_Load_Default(t *testing.T) {
	var cfg config.Manifest
	m, err := cfg.Load()
	gt.NoError(t, err)

	gt.Value(t, m.ThirdPartyDir).Equal("Thirdparty")
	gt.Value(t, m.Premake.Version).Equal("5.0.0-beta2")
	gt.Value(t, m.Vulkan.Version).Equal("1.3.236.0")
	gt.Value(t, m.SDL2.Version).Equal("2.30.2")

	names := make([]string, 0, len(m.Repositories))
	for _, r := range m.Repositories {
		names = append(names, r.Name+"@"+r.Ref)
	}
	gt.Value(t, names).Equal([]string{
		"glm@0.9.8",
		"volk@master",
		"vma@master",
		"stb@master",
		"imgui@docking",
		"imgui/imguizmo@master",
	})
}

func TestManifest_Load_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`
[premake]
version = "5.0.0-beta3"
[vulkan]
version = "1.4.304.0"
[sdl2]
version = "2.32.0"
[[repository]]
name = "glm"
url = "https://github.com/g-truc/glm"
ref = "1.0.1"
`), 0644))

	cfg := config.Manifest{Path: path}
	m, err := cfg.Load()
	gt.NoError(t, err)
	gt.Value(t, m.ThirdPartyDir).Equal(model.DefaultThirdPartyDir)
	gt.Value(t, m.Premake.Version).Equal("5.0.0-beta3")
	gt.Value(t, len(m.Repositories)).Equal(1)
	gt.Value(t, m.Repositories[0].Ref).Equal("1.0.1")
}

func TestManifest_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "premak = 1\n", want: "failed to decode manifest"},
		{name: "broken toml", content: "[premake\n", want: "failed to decode manifest"},
		{name: "missing version", content: "[premake]\nversion = \"5.0.0\"\n", want: "invalid manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "deps.toml")
			gt.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg := config.Manifest{Path: path}
			_, err := cfg.Load()
			gt.Error(t, err)
			gt.String(t, err.Error()).Contains(tt.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		cfg := config.Manifest{Path: filepath.Join(t.TempDir(), "nope.toml")}
		_, err := cfg.Load()
		gt.Error(t, err)
	})
}

func TestEncodeManifest_RoundTrip(t *testing.T) {
	var cfg config.Manifest
	m, err := cfg.Load()
	gt.NoError(t, err)

	data, err := config.EncodeManifest(m)
	gt.NoError(t, err)

	decoded, err := config.ParseManifest(data)
	gt.NoError(t, err)
	gt.Value(t, decoded).Equal(m)
}

func TestGenerator_ExtraArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    []string
		wantErr bool
	}{
		{name: "empty", args: "", want: nil},
		{name: "simple", args: "--cc=clang --os=linux", want: []string{"--cc=clang", "--os=linux"}},
		{name: "quoted", args: `--file="premake5 custom.lua" --verbose`, want: []string{"--file=premake5 custom.lua", "--verbose"}},
		{name: "unterminated quote", args: `--file="oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Generator{Args: tt.args}
			got, err := cfg.ExtraArgs()
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestFetch_RootDir(t *testing.T) {
	cfg := config.Fetch{Root: ".."}
	root, err := cfg.RootDir()
	gt.NoError(t, err)
	gt.Value(t, root).Equal("..")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg = config.Fetch{Root: "~/projects/engine"}
	root, err = cfg.RootDir()
	gt.NoError(t, err)
	gt.Value(t, root).Equal(filepath.Join(home, "projects", "engine"))
}

func TestFetch_HostPlatform(t *testing.T) {
	gt.Value(t, (&config.Fetch{}).HostPlatform()).Equal(model.Platform(runtime.GOOS))
	gt.Value(t, (&config.Fetch{Platform: "windows"}).HostPlatform()).Equal(model.PlatformWindows)
}

func TestFetch_Flags(t *testing.T) {
	cfg := &config.Fetch{}
	flags := cfg.Flags()
	gt.Value(t, len(flags)).Equal(4)
	gt.Value(t, cfg.Timeout).Equal(time.Duration(0))
}
