package model

// Repository is a git source dependency cloned into the third-party directory
type Repository struct {
	Name string `toml:"name"` // Folder under the third-party directory, may be nested (imgui/imguizmo)
	URL  string `toml:"url"`  // Remote URL
	Ref  string `toml:"ref"`  // Branch or tag checked out after clone
}

// RecipeKind tells what a platform does for an SDK dependency
type RecipeKind string

const (
	// RecipeFetch downloads an artifact from URL
	RecipeFetch RecipeKind = "fetch"
	// RecipeGuidance prints an install hint and does nothing else
	RecipeGuidance RecipeKind = "guidance"
	// RecipeUnsupported prints a notice that the platform has no recipe
	RecipeUnsupported RecipeKind = "unsupported"
)

// Recipe describes how one dependency is obtained on one platform
type Recipe struct {
	Kind     RecipeKind
	URL      string // Download URL, RecipeFetch only
	FileName string // Local file name of the downloaded artifact, RecipeFetch only
	Message  string // Hint printed for RecipeGuidance and RecipeUnsupported
}
