package opcodecatalog

import (
	"strings"
	"testing"

	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalog(t *testing.T) {
	catalog := Get()
	require.Same(t, catalog, Get(), "Get must return the shared catalog")

	entry, ok := catalog.Lookup("OP_ADD")
	require.True(t, ok)
	require.Equal(t, "arithmetic", entry.Category)
	require.True(t, entry.Enabled())

	entry, ok = catalog.Lookup("OP_CAT")
	require.True(t, ok)
	require.False(t, entry.Enabled())

	_, ok = catalog.Lookup("OP_NOSUCHTHING")
	require.False(t, ok)

	require.Equal(t, []string{"constants", "flow", "stack", "splice", "bitwise",
		"arithmetic", "crypto", "locktime"}, catalog.Categories())
}

// TestCatalogMatchesDispatch checks that the catalog and the interpreter's
// dispatch table agree on what is executable.
func TestCatalogMatchesDispatch(t *testing.T) {
	catalog := Get()

	missing := catalog.CheckAgainstDispatch(interpreter.IsSupported)
	require.ElementsMatch(t, []string{"OP_PUSHDATA1", "OP_PUSHDATA2", "OP_PUSHDATA4",
		"OP_CODESEPARATOR"}, missing)

	for _, name := range interpreter.SupportedOpcodes() {
		entry, ok := catalog.Lookup(name)
		require.True(t, ok, "%s is executable but not documented", name)
		require.True(t, entry.Enabled(), "%s is executable but documented as disabled", name)
	}
	for _, entry := range catalog.Entries() {
		if !entry.Enabled() {
			require.True(t, interpreter.IsDisabled(entry.Name),
				"%s is documented as disabled but the interpreter does not reject it", entry.Name)
		}
	}
}

func TestEntriesAreCopies(t *testing.T) {
	catalog := Get()
	entries := catalog.Entries()
	entries[0].Name = "OP_CHANGED"
	require.Equal(t, "OP_0", catalog.Entries()[0].Name)

	categories := catalog.Categories()
	categories[0] = "changed"
	require.Equal(t, "constants", catalog.Categories()[0])
}

func TestByCategoryAndEnabled(t *testing.T) {
	catalog := Get()

	locktime := catalog.ByCategory("locktime")
	require.Len(t, locktime, 2)
	require.Equal(t, "OP_CHECKLOCKTIMEVERIFY", locktime[0].Name)
	require.Empty(t, catalog.ByCategory("no such category"))

	total := 0
	for _, category := range catalog.Categories() {
		total += len(catalog.ByCategory(category))
	}
	require.Equal(t, len(catalog.Entries()), total)

	for _, entry := range catalog.Enabled() {
		require.False(t, entry.Disabled)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		document string
		errors   []string
	}{
		{
			name: "valid",
			document: `
opcodes:
  - name: OP_A
    category: test
`,
		},
		{
			name: "every problem is reported",
			document: `
opcodes:
  - name: ""
    category: test
  - name: NOPREFIX
    category: test
  - name: OP_A
    category: ""
  - name: OP_B
    category: test
  - name: OP_B
    category: test
`,
			errors: []string{"entry #0: empty name", "entry #1: name NOPREFIX does not start with OP_",
				"entry #2: empty category", "entry #4: duplicate opcode OP_B"},
		},
		{
			name:     "unknown field",
			document: "opcodes:\n  - name: OP_A\n    category: test\n    color: red\n",
			errors:   []string{"failed to parse opcode catalog"},
		},
		{
			name:     "malformed",
			document: "opcodes: [",
			errors:   []string{"failed to parse opcode catalog"},
		},
	}

	for _, test := range tests {
		catalog, err := Load([]byte(test.document))
		if len(test.errors) == 0 {
			require.NoError(t, err, test.name)
			require.NotNil(t, catalog, test.name)
			continue
		}
		require.Error(t, err, test.name)
		require.Nil(t, catalog, test.name)
		for _, expected := range test.errors {
			require.True(t, strings.Contains(err.Error(), expected),
				"%s: %q does not mention %q", test.name, err, expected)
		}
	}
}
