package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/menta2k/facecrop/pkg/types"
)

// CroppedSuffix is appended to the file stem of every output
const CroppedSuffix = "_cropped"

// imageExts lists the accepted input extensions, lowercase and without the dot
var imageExts = []string{"jpg", "jpeg", "png", "bmp", "tif", "tiff", "webp"}

// SupportedExtensions returns a copy of the accepted input extensions
func SupportedExtensions() []string {
	out := make([]string, len(imageExts))
	copy(out, imageExts)
	return out
}

// EnsureDir creates a directory and its parents if it doesn't exist
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w: %w", dir, types.ErrIO, err)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot, lowercased.
// Dotfiles such as ".profile" have no extension.
func GetFileExtension(filename string) string {
	_, ext := splitName(filepath.Base(filename))
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// IsImageFile checks if a file has one of the accepted image extensions
func IsImageFile(filename string) bool {
	ext := GetFileExtension(filename)
	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// CroppedFilename returns stem + "_cropped" + extension for the input's file name
func CroppedFilename(inputFile string) (string, error) {
	name, ok := fileName(inputFile)
	if !ok {
		return "", fmt.Errorf("input file %q has no file name: %w", inputFile, types.ErrPath)
	}
	stem, ext := splitName(name)
	return stem + CroppedSuffix + ext, nil
}

// DefaultOutputPath places the cropped file next to the input
func DefaultOutputPath(inputFile string) (string, error) {
	name, err := CroppedFilename(inputFile)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(inputFile), name), nil
}

// OutputPathInDir places the cropped file inside outputDir
func OutputPathInDir(inputFile, outputDir string) (string, error) {
	name, err := CroppedFilename(inputFile)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputDir, name), nil
}

// PlanFile resolves the output path for single-file mode. An explicit output
// is used exactly as given.
func PlanFile(inputFile, output string) (types.PathPlan, error) {
	if output != "" {
		return types.PathPlan{Input: inputFile, Output: output}, nil
	}
	out, err := DefaultOutputPath(inputFile)
	if err != nil {
		return types.PathPlan{}, err
	}
	return types.PathPlan{Input: inputFile, Output: out}, nil
}

// PlanDirEntry resolves the output path for a file found in directory mode.
// An empty outputDir keeps the crop next to its source.
func PlanDirEntry(inputFile, outputDir string) (types.PathPlan, error) {
	var (
		out string
		err error
	)
	if outputDir != "" {
		out, err = OutputPathInDir(inputFile, outputDir)
	} else {
		out, err = DefaultOutputPath(inputFile)
	}
	if err != nil {
		return types.PathPlan{}, err
	}
	return types.PathPlan{Input: inputFile, Output: out}, nil
}

// ListImageFiles lists the image files directly inside dir, sorted by name.
// Sub-directories are not descended into.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w: %w", dir, types.ErrIO, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// symlinks are followed, anything that isn't a regular file is dropped
		if !FileExists(path) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// fileName returns the last path element, or false when there is none
func fileName(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	base := filepath.Base(path)
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", false
	}
	return base, true
}

// splitName splits a file name into stem and extension (with the dot).
// A leading dot does not start an extension.
func splitName(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
