package model

// Platform identifies a host operating system family.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
)

func (p Platform) String() string {
	return string(p)
}
