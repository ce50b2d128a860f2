package app

import (
	"io/ioutil"
	"strings"

	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/kaspanet/stacklab/domain/stacklab/templates"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const hexPrefix = "0x"

// programSource is a program together with where it came from.
type programSource struct {
	name     string
	template *templates.Template
	program  []interpreter.Instruction
}

// loadProgram returns the program to run. It comes from a template, the
// positional tokens, the program file or stdin, in that order.
func (s *stackLab) loadProgram() (*programSource, error) {
	switch {
	case s.cfg.Template != "":
		template, ok := templates.Get().Lookup(s.cfg.Template)
		if !ok {
			return nil, errors.Errorf("unknown template %s (available: %s)", s.cfg.Template,
				strings.Join(templates.Get().Names(), ", "))
		}
		return &programSource{
			name:     "template " + template.Name,
			template: template,
			program:  template.Program(),
		}, nil

	case len(s.cfg.Tokens) > 0:
		return &programSource{
			name:    "command line program",
			program: interpreter.ParseProgramStrings(s.cfg.Tokens...),
		}, nil

	case s.cfg.ProgramFile != "":
		data, err := ioutil.ReadFile(s.cfg.ProgramFile)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading program file")
		}
		program, err := parseProgramDocument(data)
		if err != nil {
			return nil, errors.Wrapf(err, "error in program file %s", s.cfg.ProgramFile)
		}
		return &programSource{name: s.cfg.ProgramFile, program: program}, nil

	case !s.streams.stdinIsTerminal:
		data, err := ioutil.ReadAll(s.streams.stdin)
		if err != nil {
			return nil, errors.Wrap(err, "error reading the program from stdin")
		}
		program, err := parseProgramDocument(data)
		if err != nil {
			return nil, errors.Wrap(err, "error in the program read from stdin")
		}
		return &programSource{name: "stdin", program: program}, nil
	}
	return nil, errors.New("no program given: pass tokens, --program-file or --template, " +
		"or pipe a program into stdin")
}

// parseProgramDocument parses a program given either as a YAML or JSON list
// of tokens, as a document with a "program" list, or as plain
// whitespace-separated tokens.
func parseProgramDocument(data []byte) ([]interpreter.Instruction, error) {
	var root yaml.Node
	err := yaml.Unmarshal(data, &root)
	if err == nil && len(root.Content) == 1 {
		node := root.Content[0]
		switch node.Kind {
		case yaml.SequenceNode:
			return parseTokenNodes(node.Content)
		case yaml.MappingNode:
			var doc struct {
				Program []*yaml.Node `yaml:"program"`
			}
			err := node.Decode(&doc)
			if err != nil {
				return nil, errors.Wrap(err, "failed to decode the program")
			}
			return parseTokenNodes(doc.Program)
		}
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, errors.New("the program is empty")
	}
	return interpreter.ParseProgramStrings(fields...), nil
}

// parseTokenNodes decodes the tokens of a program list. Unquoted 0x tokens
// are kept as hex strings, the same as on the command line, instead of the
// integers YAML reads them as.
func parseTokenNodes(nodes []*yaml.Node) ([]interpreter.Instruction, error) {
	if len(nodes) == 0 {
		return nil, errors.New("the program is empty")
	}
	tokens := make([]interface{}, len(nodes))
	for i, node := range nodes {
		if node.Kind == yaml.ScalarNode && strings.HasPrefix(node.Value, hexPrefix) {
			tokens[i] = node.Value
			continue
		}
		err := node.Decode(&tokens[i])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode token #%d", i)
		}
	}
	return interpreter.ParseProgram(tokens)
}
