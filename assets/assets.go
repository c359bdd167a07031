// Package assets holds files compiled into the binary.
package assets

import (
	"embed"
	"fmt"

	"github.com/menta2k/facecrop/pkg/types"
)

// DefaultModel is the name of the embedded face cascade
const DefaultModel = "facefinder"

//go:embed models/*
var models embed.FS

// Model returns the embedded model with the given name
func Model(name string) ([]byte, error) {
	data, err := models.ReadFile("models/" + name)
	if err != nil {
		return nil, fmt.Errorf("embedded model %q is not available: %w: %w", name, types.ErrModel, err)
	}
	return data, nil
}

// Models lists the names of the embedded models
func Models() []string {
	entries, err := models.ReadDir("models")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == "README.md" {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
