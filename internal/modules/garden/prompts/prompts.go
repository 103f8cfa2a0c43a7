// Package prompts renders the generator prompts from an embedded YAML catalog.
// PROMPTS_YAML points at a replacement file for local tuning.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

const promptsEnv = "PROMPTS_YAML"

const (
	Recommendations = "recommendations"
	Custom          = "custom"
	Diagnosis       = "diagnosis"
)

//go:embed prompts.yaml
var promptsFS embed.FS

type yamlCatalog struct {
	Catalog string       `yaml:"catalog"`
	Version int          `yaml:"version"`
	Prompts []yamlPrompt `yaml:"prompts"`
}

type yamlPrompt struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Prompt is a rendered system/user pair.
type Prompt struct {
	System string
	User   string
}

type entry struct {
	system *template.Template
	user   *template.Template
}

type Catalog struct {
	entries map[string]entry
}

// SurveyInput feeds the recommendations and custom templates.
type SurveyInput struct {
	Location       string
	SunlightHours  float64
	AvailableSpace string
	PlantName      string
	Limit          int
}

// DiagnosisInput feeds the diagnosis template.
type DiagnosisInput struct {
	PlantName      string
	CompletedSteps []string
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default loads the catalog once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := readCatalog()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(promptsEnv)); path != "" {
		return os.ReadFile(path)
	}
	return promptsFS.ReadFile("prompts.yaml")
}

// Parse builds a catalog from YAML and checks that every known prompt is present.
func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompts: decode catalog: %w", err)
	}
	if len(raw.Prompts) == 0 {
		return nil, errors.New("prompts: catalog is empty")
	}

	c := &Catalog{entries: make(map[string]entry, len(raw.Prompts))}
	for _, p := range raw.Prompts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, errors.New("prompts: prompt name is required")
		}
		if _, dup := c.entries[name]; dup {
			return nil, fmt.Errorf("prompts: duplicate prompt %q", name)
		}
		sys, err := template.New(name + ".system").Option("missingkey=error").Parse(p.System)
		if err != nil {
			return nil, fmt.Errorf("prompts: %s system: %w", name, err)
		}
		usr, err := template.New(name + ".user").Option("missingkey=error").Parse(p.User)
		if err != nil {
			return nil, fmt.Errorf("prompts: %s user: %w", name, err)
		}
		c.entries[name] = entry{system: sys, user: usr}
	}
	for _, required := range []string{Recommendations, Custom, Diagnosis} {
		if _, ok := c.entries[required]; !ok {
			return nil, fmt.Errorf("prompts: missing prompt %q", required)
		}
	}
	return c, nil
}

// Render executes the named prompt with data.
func (c *Catalog) Render(name string, data any) (Prompt, error) {
	e, ok := c.entries[name]
	if !ok {
		return Prompt{}, fmt.Errorf("prompts: unknown prompt %q", name)
	}
	var sys, usr bytes.Buffer
	if err := e.system.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("prompts: render %s system: %w", name, err)
	}
	if err := e.user.Execute(&usr, data); err != nil {
		return Prompt{}, fmt.Errorf("prompts: render %s user: %w", name, err)
	}
	return Prompt{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(usr.String()),
	}, nil
}
