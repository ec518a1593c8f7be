package dataset

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

// Resolved is a manifest entry located on disk.
type Resolved struct {
	SourceFile
	// Path is the absolute path of the file as found on disk. Its base name
	// may differ from SourceFile.Name in case only.
	Path string
}

// Resolver locates the source extracts described by the dataset config.
type Resolver struct {
	config models.DatasetConfig
	logger *zap.Logger

	// cacheDir holds git checkouts; empty means the app home cache.
	cacheDir string
}

// NewResolver creates a resolver for the given dataset configuration.
func NewResolver(cfg models.DatasetConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		config: cfg,
		logger: logger,
	}
}

// Resolve locates all six source files and returns them in manifest order.
// Any missing file fails the whole batch before a single load starts.
func (r *Resolver) Resolve(ctx context.Context) ([]Resolved, error) {
	root := r.config.Path
	if r.config.GitURL != "" {
		synced, err := r.syncRepo(ctx)
		if err != nil {
			return nil, err
		}
		root = synced
	}

	return resolveDir(root)
}

// resolveDir walks root looking for each manifest entry. File names are
// matched case-insensitively and may live in subdirectories (the upstream
// layout keeps CRM and ERP extracts in separate folders).
func resolveDir(root string) ([]Resolved, error) {
	found := make(map[string]string, len(Manifest))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		base := strings.ToLower(d.Name())
		if _, ok := found[base]; !ok {
			found[base] = path
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to scan dataset directory").
			WithContext("path", root).
			WithSuggestions(
				"Check that the dataset path in config.yaml exists",
				"Run 'flakeforge validate' to verify the configuration",
			)
	}

	resolved := make([]Resolved, 0, len(Manifest))
	for _, sf := range Manifest {
		path, ok := found[strings.ToLower(sf.Name)]
		if !ok {
			return nil, errors.DatasetError(fmt.Sprintf("Source file %s missing from dataset", sf.Name), sf.Name).
				WithContext("path", root).
				WithSuggestions(
					"Ensure all six source extracts are present before running a batch",
					"Expected files: cust_info.csv, prd_info.csv, sales_details.csv, CUST_AZ12.csv, LOC_A101.csv, PX_CAT_G1V2.csv",
				)
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		resolved = append(resolved, Resolved{SourceFile: sf, Path: abs})
	}

	return resolved, nil
}
