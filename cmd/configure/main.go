// Command configure customizes the project tree: name, color palette, and
// dashboard pages. All file writes go through a computed plan applied with
// atomic renames, so a rerun or interrupted run never corrupts the tree.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cradle/internal/configure"
	dErrors "cradle/pkg/domain-errors"
)

func main() {
	root := flag.String("root", ".", "Project root to configure")
	fromFile := flag.String("from-file", "", "Read configuration from a JSON file instead of flags")
	reset := flag.Bool("reset", false, "Write the default configuration file and exit")
	dryRun := flag.Bool("dry-run", false, "Print the files the plan would write without writing them")

	name := flag.String("name", "", "Project name")
	description := flag.String("description", "", "Project description")
	color := flag.String("color", "", "Primary color: "+strings.Join(configure.Palette, ", "))
	pages := flag.String("pages", "", "Comma-separated page names, e.g. dashboard,settings,analytics")
	flag.Parse()

	if err := run(*root, *fromFile, *name, *description, *color, *pages, *reset, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(root, fromFile, name, description, color, pages string, reset, dryRun bool) error {
	configPath := filepath.Join(root, configure.ConfigFile)

	if reset {
		if err := configure.Save(configPath, configure.Default()); err != nil {
			return err
		}
		fmt.Println("wrote default configuration to", configPath)
		return nil
	}

	cfg, err := loadConfig(configPath, fromFile)
	if err != nil {
		return err
	}

	if name != "" {
		cfg.ProjectName = name
	}
	if description != "" {
		cfg.Description = description
	}
	if color != "" {
		cfg.PrimaryColor = color
	}
	if pages != "" {
		cfg.Pages = nil
		for _, p := range strings.Split(pages, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Pages = append(cfg.Pages, configure.PageFromName(p))
			}
		}
	}

	plan, err := configure.BuildPlan(root, cfg)
	if err != nil {
		return err
	}

	if dryRun {
		for _, path := range plan.Paths() {
			fmt.Println(path)
		}
		return nil
	}

	if err := configure.Apply(root, plan); err != nil {
		return err
	}
	if err := configure.Save(configPath, cfg); err != nil {
		return err
	}
	fmt.Printf("configured %q: %d files written\n", cfg.ProjectName, len(plan.Changes))
	return nil
}

// loadConfig prefers an explicit file, then the existing project config,
// then the built-in defaults.
func loadConfig(configPath, fromFile string) (configure.Config, error) {
	if fromFile != "" {
		return configure.Load(fromFile)
	}
	cfg, err := configure.Load(configPath)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return configure.Default(), nil
		}
		return configure.Config{}, err
	}
	return cfg, nil
}
