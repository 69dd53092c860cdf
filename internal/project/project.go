// Package project provides detection workspace file handling and
// persistence.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// File represents a detection workspace file (.bonkproj): the catalog and
// template locations plus persisted engine settings, so repeated runs over
// the same game install share one configuration and correction history.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Data file paths (relative to the workspace file)
	CatalogPath  string `json:"catalog,omitempty"`
	TemplateDir  string `json:"templates,omitempty"`
	FeedbackPath string `json:"feedback,omitempty"`

	// User settings
	Settings Settings `json:"settings,omitempty"`
}

// Settings holds persisted engine preferences for the workspace.
type Settings struct {
	Strategy          string  `json:"strategy,omitempty"`
	VarianceThreshold float64 `json:"variance_threshold,omitempty"`
	OCRFallback       bool    `json:"ocr_fallback"`
}

// New creates a new workspace file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: Settings{
			Strategy:    "current",
			OCRFallback: true,
		},
	}
}

// Load loads a workspace from a .bonkproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the workspace to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetCatalog sets the catalog path (relative to the workspace file).
func (p *File) SetCatalog(projectPath, catalogPath string) {
	p.CatalogPath = relativize(projectPath, catalogPath)
	p.Modified = time.Now()
}

// SetTemplateDir sets the template directory (relative to the workspace
// file).
func (p *File) SetTemplateDir(projectPath, dir string) {
	p.TemplateDir = relativize(projectPath, dir)
	p.Modified = time.Now()
}

// GetCatalogPath returns the absolute path to the catalog file.
func (p *File) GetCatalogPath(projectPath string) string {
	return absolutize(projectPath, p.CatalogPath, "")
}

// GetTemplateDir returns the absolute path to the template directory.
func (p *File) GetTemplateDir(projectPath string) string {
	return absolutize(projectPath, p.TemplateDir, "")
}

// GetFeedbackPath returns the absolute path to the correction log,
// defaulting to <workspace>_feedback.json beside the workspace file.
func (p *File) GetFeedbackPath(projectPath string) string {
	base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
	return absolutize(projectPath, p.FeedbackPath, base+"_feedback.json")
}

func relativize(projectPath, target string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), target)
	if err != nil {
		return target
	}
	return rel
}

func absolutize(projectPath, stored, fallback string) string {
	if stored == "" {
		return fallback
	}
	if filepath.IsAbs(stored) {
		return stored
	}
	return filepath.Join(filepath.Dir(projectPath), stored)
}
