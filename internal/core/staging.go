package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StagedFile is a selected upload copied into the staging directory.
type StagedFile struct {
	Path string // Location of the staged copy
	Name string // Original base name, used as the records' file name
	Size int64  // Size in bytes
}

// SizeMB returns the file size in megabytes.
func (f StagedFile) SizeMB() float64 {
	return float64(f.Size) / (1024 * 1024)
}

// LocalFile describes a file already on disk without copying it.
func LocalFile(path string) (StagedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StagedFile{}, IOError("import.stat", err, "cannot read %s", path)
	}
	if info.IsDir() {
		return StagedFile{}, ValidationError("import.stat", "%s is a directory", path)
	}
	return StagedFile{Path: path, Name: filepath.Base(path), Size: info.Size()}, nil
}

// StageUpload copies r into dir under a unique name and returns the staged file.
// name is reduced to its base name.
func StageUpload(dir, name string, r io.Reader) (StagedFile, error) {
	const op = "upload.stage"

	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return StagedFile{}, ValidationError(op, "no file provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StagedFile{}, IOError(op, err, "create staging directory %s", dir)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s", uuid.NewString(), base))
	out, err := os.Create(path)
	if err != nil {
		return StagedFile{}, IOError(op, err, "stage %s", base)
	}

	n, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return StagedFile{}, IOError(op, copyErr, "stage %s", base)
	}

	return StagedFile{Path: path, Name: base, Size: n}, nil
}

// RemoveStaged deletes a staged copy. Missing files are ignored.
func RemoveStaged(f StagedFile) error {
	if f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
