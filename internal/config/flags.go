package config

import (
	"flag"
)

// parses CLI flags for the seeder
func ParseSeedFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	path := fs.String("path", "./resources/projects", "path to a project JSON file or a directory of them")
	clearFlag := fs.Bool("clear", false, "delete seeded templates before loading")
	templates := fs.Bool("templates", false, "mark every loaded project as a template")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{Path: *path, Clear: *clearFlag, Templates: *templates}, nil
}

// returns default flags for seeding
func DefaultSeedFlags() Flags {
	return Flags{Path: "./resources/projects", Clear: false, Templates: false}
}
