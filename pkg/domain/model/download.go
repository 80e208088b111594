package model

// ExtractResult represents the result of an archive extraction
type ExtractResult struct {
	DestDir string   // Directory the archive was extracted into
	Files   []string // List of extracted entries
	Size    int64    // Total size in bytes
}
