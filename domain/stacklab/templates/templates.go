// Package templates provides named example programs that demonstrate the
// interpreter's behavior.
package templates

import (
	"bytes"
	_ "embed"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// Template is a named example program together with its expected verdict.
type Template struct {
	Name          string
	Title         string
	Description   string
	ExpectSuccess bool
	program       []interpreter.Instruction
}

// Program returns the template's instructions.
func (t *Template) Program() []interpreter.Instruction {
	return append([]interpreter.Instruction(nil), t.program...)
}

type templateDocument struct {
	Name          string        `yaml:"name"`
	Title         string        `yaml:"title"`
	Description   string        `yaml:"description"`
	Program       []interface{} `yaml:"program"`
	ExpectSuccess bool          `yaml:"expectSuccess"`
}

type document struct {
	Templates []templateDocument `yaml:"templates"`
}

// Registry is an immutable set of templates in document order.
type Registry struct {
	templates []*Template
	byName    map[string]*Template
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Get returns the registry built from the embedded templates.
func Get() *Registry {
	defaultRegistryOnce.Do(func() {
		registry, err := Load(embeddedTemplates)
		if err != nil {
			panic(errors.Wrap(err, "embedded templates are invalid"))
		}
		defaultRegistry = registry
	})
	return defaultRegistry
}

// Load parses a templates document. Every invalid template is reported.
func Load(data []byte) (*Registry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc document
	err := decoder.Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	registry := &Registry{byName: make(map[string]*Template, len(doc.Templates))}
	var result *multierror.Error
	for i, raw := range doc.Templates {
		if raw.Name == "" {
			result = multierror.Append(result, errors.Errorf("template #%d: empty name", i))
			continue
		}
		if _, exists := registry.byName[raw.Name]; exists {
			result = multierror.Append(result, errors.Errorf("template #%d: duplicate name %s", i, raw.Name))
			continue
		}
		if len(raw.Program) == 0 {
			result = multierror.Append(result, errors.Errorf("template %s: empty program", raw.Name))
			continue
		}
		program, err := interpreter.ParseProgram(raw.Program)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "template %s", raw.Name))
			continue
		}
		template := &Template{
			Name:          raw.Name,
			Title:         raw.Title,
			Description:   raw.Description,
			ExpectSuccess: raw.ExpectSuccess,
			program:       program,
		}
		registry.templates = append(registry.templates, template)
		registry.byName[template.Name] = template
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d templates", len(registry.templates))
	return registry, nil
}

// Names returns the sorted template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for _, template := range r.templates {
		names = append(names, template.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named template.
func (r *Registry) Lookup(name string) (*Template, bool) {
	template, ok := r.byName[name]
	return template, ok
}

// All returns every template in document order.
func (r *Registry) All() []*Template {
	return append([]*Template(nil), r.templates...)
}
