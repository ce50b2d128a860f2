// Package opcodecatalog holds the human-readable opcode reference: the
// category, stack effect and description of every opcode the lab knows
// about. The interpreter's dispatch table stays authoritative for what
// actually executes; CheckAgainstDispatch reports where the two disagree.
package opcodecatalog

import (
	"bytes"
	_ "embed"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const opcodePrefix = "OP_"

//go:embed catalog.yaml
var embeddedCatalog []byte

// Entry describes a single opcode.
type Entry struct {
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Stack       string `yaml:"stack" json:"stack"`
	Description string `yaml:"description" json:"description"`
	Disabled    bool   `yaml:"disabled" json:"disabled"`
}

// Enabled returns whether the opcode may be executed.
func (e Entry) Enabled() bool {
	return !e.Disabled
}

type document struct {
	Opcodes []Entry `yaml:"opcodes"`
}

// Catalog is an immutable, ordered collection of opcode entries.
type Catalog struct {
	entries    []Entry
	byName     map[string]int
	categories []string
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Get returns the catalog built from the embedded document. It is loaded on
// first use and shared afterwards.
func Get() *Catalog {
	defaultCatalogOnce.Do(func() {
		catalog, err := Load(embeddedCatalog)
		if err != nil {
			panic(errors.Wrap(err, "embedded opcode catalog is invalid"))
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

// Load parses and validates a catalog document. Every validation problem is
// reported, not only the first.
func Load(data []byte) (*Catalog, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var doc document
	err := decoder.Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse opcode catalog")
	}

	catalog := &Catalog{
		entries: make([]Entry, 0, len(doc.Opcodes)),
		byName:  make(map[string]int, len(doc.Opcodes)),
	}
	seenCategories := make(map[string]struct{})
	var result *multierror.Error
	for i, entry := range doc.Opcodes {
		entryErr := validateEntry(i, entry)
		if entryErr != nil {
			result = multierror.Append(result, entryErr)
			continue
		}
		if _, exists := catalog.byName[entry.Name]; exists {
			result = multierror.Append(result,
				errors.Errorf("entry #%d: duplicate opcode %s", i, entry.Name))
			continue
		}
		catalog.byName[entry.Name] = len(catalog.entries)
		catalog.entries = append(catalog.entries, entry)
		if _, exists := seenCategories[entry.Category]; !exists {
			seenCategories[entry.Category] = struct{}{}
			catalog.categories = append(catalog.categories, entry.Category)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d opcode catalog entries in %d categories",
		len(catalog.entries), len(catalog.categories))
	return catalog, nil
}

func validateEntry(i int, entry Entry) error {
	var result *multierror.Error
	if entry.Name == "" {
		result = multierror.Append(result, errors.Errorf("entry #%d: empty name", i))
	} else if !strings.HasPrefix(entry.Name, opcodePrefix) {
		result = multierror.Append(result,
			errors.Errorf("entry #%d: name %s does not start with %s", i, entry.Name, opcodePrefix))
	}
	if entry.Category == "" {
		result = multierror.Append(result, errors.Errorf("entry #%d: empty category", i))
	}
	return result.ErrorOrNil()
}

// Lookup returns the entry of the named opcode.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Entries returns every entry in catalog order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Categories returns the category names in the order they first appear.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// ByCategory returns the entries of a category in catalog order.
func (c *Catalog) ByCategory(category string) []Entry {
	var entries []Entry
	for _, entry := range c.entries {
		if entry.Category == category {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Enabled returns the entries that are not disabled.
func (c *Catalog) Enabled() []Entry {
	var entries []Entry
	for _, entry := range c.entries {
		if entry.Enabled() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CheckAgainstDispatch returns the names of enabled entries for which
// supported returns false, i.e. documented opcodes the interpreter cannot
// execute.
func (c *Catalog) CheckAgainstDispatch(supported func(name string) bool) []string {
	var missing []string
	for _, entry := range c.entries {
		if entry.Enabled() && !supported(entry.Name) {
			missing = append(missing, entry.Name)
		}
	}
	if len(missing) > 0 {
		log.Debugf("Catalog entries without a handler: %s", strings.Join(missing, ", "))
	}
	return missing
}
