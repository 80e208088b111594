package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/interfaces"
	"github.com/groundwork-dev/groundwork/pkg/domain/model"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

// Format is a supported archive format
type Format string

const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
)

type extractor struct{}

// NewExtractor creates a new archive extractor
func NewExtractor() interfaces.Extractor {
	return &extractor{}
}

// Decompress extracts archive into destDir
func (x *extractor) Decompress(ctx context.Context, archive, destDir string) (*model.ExtractResult, error) {
	logger := ctxlog.From(ctx)

	if _, err := os.Stat(archive); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(types.ErrMissingInput, "archive does not exist", goerr.V("archive", archive))
		}
		return nil, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to stat archive", goerr.V("archive", archive))
	}

	format, err := DetectFormat(archive)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to create destination directory", goerr.V("dest", destDir))
	}

	logger.Debug("Extracting archive", "archive", archive, "format", format, "dest", destDir)

	result := &model.ExtractResult{DestDir: destDir}
	switch format {
	case FormatZip:
		err = extractZip(archive, destDir, result)
	case FormatTarGz:
		err = extractTarGz(archive, destDir, result)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract archive", goerr.V("archive", archive), goerr.V("dest", destDir))
	}

	logger.Info("Extracted archive",
		"archive", archive,
		"dest", destDir,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)

	return result, nil
}

// DetectFormat picks the archive format from the file extension and falls
// back to sniffing the content.
func DetectFormat(archive string) (Format, error) {
	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, nil
	}

	f, err := os.Open(archive)
	if err != nil {
		return "", goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to open archive", goerr.V("archive", archive))
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to read archive header", goerr.V("archive", archive))
	}

	kind, err := filetype.Match(head[:n])
	if err == nil {
		switch kind.Extension {
		case "zip":
			return FormatZip, nil
		case "gz":
			return FormatTarGz, nil
		}
	}

	return "", goerr.Wrap(types.ErrUnsupportedArchive, "unknown archive format", goerr.V("archive", archive))
}

// safeJoin resolves name under destDir and rejects entries escaping it
func safeJoin(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, name)
	if destPath == filepath.Clean(destDir) {
		return destPath, nil
	}
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", goerr.New("invalid file path detected", goerr.V("file", name), goerr.V("dest", destPath))
	}
	return destPath, nil
}

func extractZip(archive, destDir string, result *model.ExtractResult) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrUnsupportedArchive, err), "failed to open zip")
	}
	defer zr.Close()

	for _, file := range zr.File {
		if err := extractZipFile(file, destDir); err != nil {
			return goerr.Wrap(err, "failed to extract file", goerr.V("file", file.Name))
		}
		result.Files = append(result.Files, file.Name)
		result.Size += int64(file.UncompressedSize64)
	}
	return nil
}

func extractZipFile(file *zip.File, destDir string) error {
	destPath, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return mkdir(destPath, file.Mode().Perm()|0700)
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrUnsupportedArchive, err), "failed to open file in zip")
	}
	defer rc.Close()

	return writeFile(destPath, rc, file.Mode().Perm())
}

func extractTarGz(archive, destDir string, result *model.ExtractResult) error {
	f, err := os.Open(archive)
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to open archive")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrUnsupportedArchive, err), "failed to open gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return goerr.Wrap(errors.Join(types.ErrUnsupportedArchive, err), "failed to read tar entry")
		}

		destPath, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := mkdir(destPath, os.FileMode(hdr.Mode).Perm()|0700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(destPath, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return goerr.Wrap(err, "failed to extract file", goerr.V("file", hdr.Name))
			}
			result.Size += hdr.Size
		default:
			// links and devices are not part of any supported release archive
			continue
		}
		result.Files = append(result.Files, hdr.Name)
	}
}

func mkdir(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to create directory", goerr.V("path", path))
	}
	return nil
}

func writeFile(destPath string, r io.Reader, perm os.FileMode) error {
	if err := mkdir(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to create destination file", goerr.V("path", destPath))
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to copy file content", goerr.V("path", destPath))
	}
	return nil
}
