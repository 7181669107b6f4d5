// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kics/internal/errs"
	"kics/internal/matching"
	"kics/internal/series"
)

// CurrentVersion is the project file format version written by Save.
const CurrentVersion = 1

// File represents a kics project file (.kics.json).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	SessionID   string    `json:"session_id"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Input paths (relative to project file)
	ImagePath     string `json:"image,omitempty"`
	ScaffoldsPath string `json:"scaffolds,omitempty"`
	EstimatesPath string `json:"estimates,omitempty"`

	Options MatchOptions `json:"options"`
	// GenomeSize in Mb; zero when unknown.
	GenomeSize float64 `json:"genome_size,omitempty"`

	// Current matching, as indices into the prepared (filtered and sorted)
	// series.
	Mode  matching.Mode   `json:"mode,omitempty"`
	Pairs []matching.Pair `json:"pairs"`
}

// MatchOptions are the persisted matching parameters.
type MatchOptions struct {
	UnmatchedPenalty float64 `json:"unmatched_penalty"`
	MinScaffoldSize  int64   `json:"min_scaffold_size"`
	MaxScaffolds     int     `json:"max_scaffolds"`
	ByName           bool    `json:"by_name"`
	NoOptimize       bool    `json:"no_optimize"`
}

// MatchOptionsFrom copies the persisted fields of opts.
func MatchOptionsFrom(opts matching.Options) MatchOptions {
	return MatchOptions{
		UnmatchedPenalty: opts.UnmatchedPenalty,
		MinScaffoldSize:  opts.MinScaffoldSize,
		MaxScaffolds:     opts.MaxScaffolds,
		ByName:           opts.ByName,
		NoOptimize:       opts.NoOptimize,
	}
}

// Matching returns matching options with the persisted fields set.
func (o MatchOptions) Matching() matching.Options {
	return matching.Options{
		UnmatchedPenalty: o.UnmatchedPenalty,
		MinScaffoldSize:  o.MinScaffoldSize,
		MaxScaffolds:     o.MaxScaffolds,
		ByName:           o.ByName,
		NoOptimize:       o.NoOptimize,
	}
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:   CurrentVersion,
		Name:      name,
		SessionID: uuid.NewString(),
		Created:   now,
		Modified:  now,
		Options:   MatchOptionsFrom(matching.DefaultOptions()),
	}
}

// Load loads a project from a file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("project %s: %v: %w", path, err, errs.ErrParse)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project %s has version %d, newest supported is %d: %w",
			path, proj.Version, CurrentVersion, errs.ErrInvalidInput)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetSession records the pairs and ID of s.
func (p *File) SetSession(s *matching.Session, mode matching.Mode) {
	p.SessionID = s.ID()
	p.Mode = mode
	p.Pairs = s.Pairs()
	p.Modified = time.Now()
}

// Restore prepares the inputs with the saved options and reopens the saved
// matching on them.
func (p *File) Restore(estimates, scaffolds series.Series, opts ...matching.SessionOption) (*matching.Session, error) {
	estimates, scaffolds, err := matching.Prepare(estimates, scaffolds, p.Options.Matching())
	if err != nil {
		return nil, err
	}
	if p.SessionID != "" {
		opts = append([]matching.SessionOption{matching.WithID(p.SessionID)}, opts...)
	}
	return matching.NewSession(estimates, scaffolds, p.Pairs, opts...)
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	p.ImagePath = relative(projectPath, imagePath)
	p.Modified = time.Now()
}

// SetScaffolds sets the scaffold sizes path (relative to project).
func (p *File) SetScaffolds(projectPath, path string) {
	p.ScaffoldsPath = relative(projectPath, path)
	p.Modified = time.Now()
}

// SetEstimates sets the estimates path (relative to project).
func (p *File) SetEstimates(projectPath, path string) {
	p.EstimatesPath = relative(projectPath, path)
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (p *File) GetImagePath(projectPath string) string {
	return resolve(projectPath, p.ImagePath)
}

// GetScaffoldsPath returns the absolute path to the scaffold sizes.
func (p *File) GetScaffoldsPath(projectPath string) string {
	return resolve(projectPath, p.ScaffoldsPath)
}

// GetEstimatesPath returns the absolute path to the estimates.
func (p *File) GetEstimatesPath(projectPath string) string {
	return resolve(projectPath, p.EstimatesPath)
}

// GetExportPath returns the default matching export path next to the
// project: project_name_matching.csv.
func (p *File) GetExportPath(projectPath string) string {
	base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
	return base + "_matching.csv"
}

func relative(projectPath, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	dir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return path
	}
	return rel
}

func resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
