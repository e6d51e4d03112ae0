package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/appspec/server/appspec/projects"
	"codeberg.org/appspec/server/internal/config"
	"codeberg.org/appspec/server/internal/logger"
)

// the repository operations the seeder needs
type Repository interface {
	Create(ctx context.Context, req projects.CreateProjectRequest) (*projects.Project, error)
	DeleteTemplates(ctx context.Context) (int64, error)
}

// loads project JSON and creates each project through the repository
func Seed(ctx context.Context, repo Repository, flags config.Flags) (int, error) {
	logger.Info("starting project seeding", "path", flags.Path, "clear", flags.Clear, "templates", flags.Templates)

	// clear existing templates if requested
	if flags.Clear {
		logger.Info("clearing existing templates")

		deleted, err := repo.DeleteTemplates(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to clear existing templates: %w", err)
		}

		logger.Info("cleared existing templates", "count", deleted)
	}

	requests, err := LoadProjects(flags.Path)
	if err != nil {
		return 0, err
	}

	logger.Info("loaded projects", "count", len(requests))

	seeded := 0
	for _, req := range requests {
		if flags.Templates {
			req.Metadata.IsTemplate = true
		}

		project, err := repo.Create(ctx, req)
		if err != nil {
			logger.ErrorErr(err, "failed to seed project", "name", req.Name)
			continue
		}

		logger.Debug("seeded project", "slug", project.Slug)
		seeded++
	}

	if seeded == 0 && len(requests) > 0 {
		return 0, fmt.Errorf("none of %d projects could be seeded", len(requests))
	}

	return seeded, nil
}

// reads one JSON file, or every *.json file in a directory in name order.
// each file holds a single project object or an array of them.
func LoadProjects(path string) ([]projects.CreateProjectRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed path: %w", err)
	}

	files := []string{path}

	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to list seed files: %w", err)
		}
		sort.Strings(files)
	}

	var requests []projects.CreateProjectRequest
	for _, file := range files {
		loaded, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		requests = append(requests, loaded...)
	}

	return requests, nil
}

func loadFile(file string) ([]projects.CreateProjectRequest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") {
		var many []projects.CreateProjectRequest
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		return many, nil
	}

	var one projects.CreateProjectRequest
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	return []projects.CreateProjectRequest{one}, nil
}
