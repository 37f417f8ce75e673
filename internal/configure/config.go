// Package configure implements the project quickstart wizard as a pure
// transform: a configuration is turned into a plan of complete output
// files, and the plan is applied with atomic writes (temp file + rename)
// so a failure partway leaves the tree untouched and the operation is
// safely retryable.
package configure

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	dErrors "cradle/pkg/domain-errors"
	s "cradle/pkg/string"
)

// ConfigFile is the default configuration file name at the project root.
const ConfigFile = "quickstart.config.json"

// Palette is the set of allowed primary colors, matching the Tailwind
// color names the frontend templates use.
var Palette = []string{
	"blue", "indigo", "purple", "pink", "red",
	"orange", "green", "teal", "cyan", "gray",
}

// pageIcons maps well-known page names to their icons.
var pageIcons = map[string]string{
	"dashboard":    "home",
	"settings":     "cog",
	"projects":     "folder",
	"analytics":    "chart-bar",
	"users":        "users",
	"reports":      "document",
	"integrations": "puzzle",
	"billing":      "credit-card",
}

// Page describes one dashboard page to scaffold.
type Page struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Features toggles optional project features.
type Features struct {
	AIDisclosure bool `json:"aiDisclosure"`
	DarkMode     bool `json:"darkMode"`
	MultiTenant  bool `json:"multiTenant"`
}

// Auth holds the seeded development credentials echoed into docs.
type Auth struct {
	DefaultEmail    string `json:"defaultEmail"`
	DefaultPassword string `json:"defaultPassword"`
}

// Config is the full wizard configuration.
type Config struct {
	ProjectName  string   `json:"projectName"`
	Description  string   `json:"description"`
	PrimaryColor string   `json:"primaryColor"`
	Pages        []Page   `json:"pages"`
	Features     Features `json:"features"`
	Auth         Auth     `json:"auth"`
}

// Default returns the configuration the template tree ships with.
func Default() Config {
	return Config{
		ProjectName:  "Cradle",
		Description:  "Enterprise Multi-Platform Architecture",
		PrimaryColor: "blue",
		Pages: []Page{
			PageFromName("dashboard"),
			PageFromName("settings"),
		},
		Features: Features{AIDisclosure: true, DarkMode: true, MultiTenant: true},
		Auth:     Auth{DefaultEmail: "admin@example.com", DefaultPassword: "password"},
	}
}

// PageFromName derives a page's title, path, and icon from a bare name.
func PageFromName(name string) Page {
	title := s.ToTitleCase(name)
	icon, ok := pageIcons[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		icon = "circle"
	}
	return Page{
		Name:        title,
		Path:        s.ToKebabCase(name),
		Icon:        icon,
		Description: title + " page",
	}
}

// Validate checks the configuration before any plan is built.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectName) == "" {
		return dErrors.New(dErrors.CodeValidation, "project name is required")
	}
	if !validColor(c.PrimaryColor) {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("unknown color %q, must be one of: %s", c.PrimaryColor, strings.Join(Palette, ", ")))
	}
	if len(c.Pages) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one page is required")
	}
	for _, page := range c.Pages {
		if page.Path == "" {
			return dErrors.New(dErrors.CodeValidation, "page path is required")
		}
	}
	return nil
}

func validColor(color string) bool {
	for _, allowed := range Palette {
		if color == allowed {
			return true
		}
	}
	return false
}

// Snake returns the project name in snake_case for token storage keys.
func (c *Config) Snake() string { return s.ToSnakeCase(c.ProjectName) }

// Kebab returns the project name in kebab-case for package names.
func (c *Config) Kebab() string { return s.ToKebabCase(c.ProjectName) }

// Lower returns the lowercased project name for bucket names.
func (c *Config) Lower() string { return strings.ToLower(c.ProjectName) }

// Load reads a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, dErrors.New(dErrors.CodeNotFound, "configuration file not found")
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed configuration file")
	}
	return cfg, nil
}

// Save writes the configuration atomically.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}
