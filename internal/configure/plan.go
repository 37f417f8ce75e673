package configure

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileChange is one output of a plan: the complete new content for a path
// relative to the project root.
type FileChange struct {
	Path    string
	Content []byte
}

// Plan is the full set of writes a configuration produces. Building a plan
// only reads the tree; nothing is modified until Apply.
type Plan struct {
	Changes []FileChange
}

// Paths lists the files the plan would write.
func (p *Plan) Paths() []string {
	paths := make([]string, 0, len(p.Changes))
	for _, change := range p.Changes {
		paths = append(paths, change.Path)
	}
	return paths
}

// BuildPlan computes every file the configuration produces for the project
// tree rooted at root. Missing template files are skipped, mirroring a
// partially customized tree.
func BuildPlan(root string, cfg Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}

	var plan Plan

	targeted := targetedReplacements(cfg)
	skip := make(map[string]bool, len(targeted))
	for path, replacements := range targeted {
		skip[path] = true
		if strings.HasSuffix(path, ".tsx") {
			for anchor, value := range componentSubstitutions(cfg) {
				replacements[anchor] = value
			}
		}
		change, ok, err := substituteFile(root, path, replacements)
		if err != nil {
			return Plan{}, err
		}
		if ok {
			plan.Changes = append(plan.Changes, change)
		}
	}

	componentChanges, err := componentReplacements(root, cfg, skip)
	if err != nil {
		return Plan{}, err
	}
	plan.Changes = append(plan.Changes, componentChanges...)

	pageChanges, err := scaffoldPages(cfg)
	if err != nil {
		return Plan{}, err
	}
	plan.Changes = append(plan.Changes, pageChanges...)

	layout, err := renderLayout(cfg)
	if err != nil {
		return Plan{}, err
	}
	plan.Changes = append(plan.Changes, FileChange{
		Path:    filepath.Join("frontend", "src", "app", "(dashboard)", "layout.tsx"),
		Content: layout,
	})

	readme, err := renderReadme(cfg)
	if err != nil {
		return Plan{}, err
	}
	plan.Changes = append(plan.Changes, FileChange{Path: "README.md", Content: readme})

	return plan, nil
}

// targetedReplacements maps known template files to their substitutions.
// Replacements use the template tree's default identifiers as anchors, so
// re-running against an already-configured tree is a no-op for these files.
func targetedReplacements(cfg Config) map[string]map[string]string {
	defaults := Default()
	return map[string]map[string]string{
		filepath.Join("frontend", "package.json"): {
			`"name": "cradle-frontend"`: fmt.Sprintf("%q: %q", "name", cfg.Kebab()+"-frontend"),
		},
		filepath.Join("frontend", "src", "app", "layout.tsx"): {
			"title: 'Cradle'": "title: '" + cfg.ProjectName + "'",
			"description: '" + defaults.Description + "'": "description: '" + cfg.Description + "'",
		},
		filepath.Join("frontend", "src", "lib", "auth.ts"): {
			"cradle_access_token":  cfg.Snake() + "_access_token",
			"cradle_refresh_token": cfg.Snake() + "_refresh_token",
		},
		"docker-compose.yml": {
			"cradle-uploads":      cfg.Lower() + "-uploads",
			"cradle-exports":      cfg.Lower() + "-exports",
			"POSTGRES_DB: cradle": "POSTGRES_DB: " + cfg.Lower(),
		},
		filepath.Join("config", "profile.dev.yaml"): {
			"cradle-uploads": cfg.Lower() + "-uploads",
			"cradle-exports": cfg.Lower() + "-exports",
		},
		filepath.Join("config", "profile.prod.yaml"): {
			"cradle-uploads": cfg.Lower() + "-uploads",
			"cradle-exports": cfg.Lower() + "-exports",
		},
		filepath.Join("infra", "localstack", "init-aws.sh"): {
			"cradle-uploads": cfg.Lower() + "-uploads",
			"cradle-exports": cfg.Lower() + "-exports",
			"cradle/":        cfg.Lower() + "/",
		},
	}
}

// componentReplacements rewrites the project name and color classes across
// every frontend component. Files with targeted replacements are skipped so
// the plan never carries two changes for one path.
func componentReplacements(root string, cfg Config, skip map[string]bool) ([]FileChange, error) {
	componentsDir := filepath.Join(root, "frontend", "src")
	if _, err := os.Stat(componentsDir); os.IsNotExist(err) {
		return nil, nil
	}

	replacements := componentSubstitutions(cfg)

	var changes []FileChange
	err := filepath.WalkDir(componentsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tsx") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if skip[rel] {
			return nil
		}
		change, ok, err := substituteFile(root, rel, replacements)
		if err != nil {
			return err
		}
		if ok {
			changes = append(changes, change)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan components: %w", err)
	}
	return changes, nil
}

// componentSubstitutions is the replacement set applied to every frontend
// component: the visible project name and, when the color changed, every
// Tailwind utility class built on the default blue.
func componentSubstitutions(cfg Config) map[string]string {
	replacements := map[string]string{
		">Cradle<": ">" + cfg.ProjectName + "<",
	}
	if cfg.PrimaryColor != "blue" {
		for _, prefix := range []string{"bg-", "text-", "border-", "ring-"} {
			replacements[prefix+"blue-"] = prefix + cfg.PrimaryColor + "-"
		}
	}
	return replacements
}

// substituteFile reads a file and applies replacements in memory. Returns
// ok=false when the file does not exist or nothing changed.
func substituteFile(root, relPath string, replacements map[string]string) (FileChange, bool, error) {
	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return FileChange{}, false, nil
		}
		return FileChange{}, false, fmt.Errorf("read %s: %w", relPath, err)
	}

	content := string(data)
	for anchor, value := range replacements {
		content = strings.ReplaceAll(content, anchor, value)
	}
	if content == string(data) {
		return FileChange{}, false, nil
	}
	return FileChange{Path: relPath, Content: []byte(content)}, true, nil
}

// scaffoldPages generates a placeholder page component for every page
// except the dashboard, which the template tree already ships.
func scaffoldPages(cfg Config) ([]FileChange, error) {
	var changes []FileChange
	for _, page := range cfg.Pages {
		if page.Path == "dashboard" {
			continue
		}
		content, err := renderPage(page)
		if err != nil {
			return nil, err
		}
		changes = append(changes, FileChange{
			Path:    filepath.Join("frontend", "src", "app", "(dashboard)", page.Path, "page.tsx"),
			Content: content,
		})
	}
	return changes, nil
}
