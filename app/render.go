package app

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/kaspanet/stacklab/domain/stacklab/opcodecatalog"
	"github.com/kaspanet/stacklab/domain/stacklab/stackitem"
	"github.com/kaspanet/stacklab/domain/stacklab/templates"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// palette holds the colors of the human readable output.
type palette struct {
	success *color.Color
	skipped *color.Color
	failure *color.Color
	title   *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		success: color.New(color.FgGreen, color.Bold),
		skipped: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		title:   color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.success, p.skipped, p.failure, p.title} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) stepStatus(step *interpreter.ExecutionStep) string {
	switch {
	case !step.Success:
		return p.failure.Sprint("FAILED: " + step.ErrorMessage())
	case step.Skipped:
		return p.skipped.Sprint("skipped")
	}
	return p.success.Sprint("ok")
}

// selectSteps returns the steps to render, honoring --step.
func (s *stackLab) selectSteps(result *interpreter.ExecutionResult) ([]interpreter.ExecutionStep, error) {
	if s.cfg.Step < 0 {
		return result.Steps, nil
	}
	if s.cfg.Step >= len(result.Steps) {
		return nil, errors.Errorf("--step %d is out of range: %d steps were executed",
			s.cfg.Step, len(result.Steps))
	}
	return result.Steps[s.cfg.Step : s.cfg.Step+1], nil
}

func (s *stackLab) renderTable(source *programSource, result *interpreter.ExecutionResult) error {
	steps, err := s.selectSteps(result)
	if err != nil {
		return err
	}

	out := s.streams.stdout
	if source.template != nil {
		fmt.Fprintln(out, s.palette.title.Sprint(source.template.Title))
		fmt.Fprintln(out, source.template.Description)
		fmt.Fprintln(out)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Step", "Instruction", "Stack before", "Stack after", "Status"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for i := range steps {
		step := &steps[i]
		table.Append([]string{
			strconv.Itoa(step.Index),
			step.OpCode,
			stackitem.FormatStack(step.StackBefore),
			stackitem.FormatStack(step.StackAfter),
			s.palette.stepStatus(step),
		})
	}
	table.Render()

	fmt.Fprintf(out, "Final stack: %s\n", stackitem.FormatStack(result.FinalStack))
	if result.Success {
		fmt.Fprintln(out, s.palette.success.Sprint("Script succeeded"))
	} else {
		fmt.Fprintln(out, s.palette.failure.Sprint("Script failed: "+result.ErrorMessage()))
	}
	return nil
}

type jsonStep struct {
	Index       int              `json:"index"`
	OpCode      string           `json:"opcode"`
	StackBefore []stackitem.Item `json:"stackBefore"`
	StackAfter  []stackitem.Item `json:"stackAfter"`
	Success     bool             `json:"success"`
	Skipped     bool             `json:"skipped"`
	Error       string           `json:"error,omitempty"`
}

type jsonResult struct {
	Success    bool             `json:"success"`
	FinalStack []stackitem.Item `json:"finalStack"`
	Steps      []jsonStep       `json:"steps"`
	Error      string           `json:"error,omitempty"`
}

func newJSONResult(result *interpreter.ExecutionResult, steps []interpreter.ExecutionStep) *jsonResult {
	converted := make([]jsonStep, len(steps))
	for i := range steps {
		step := &steps[i]
		converted[i] = jsonStep{
			Index:       step.Index,
			OpCode:      step.OpCode,
			StackBefore: step.StackBefore,
			StackAfter:  step.StackAfter,
			Success:     step.Success,
			Skipped:     step.Skipped,
			Error:       step.ErrorMessage(),
		}
	}
	return &jsonResult{
		Success:    result.Success,
		FinalStack: result.FinalStack,
		Steps:      converted,
		Error:      result.ErrorMessage(),
	}
}

func (s *stackLab) renderJSON(result *interpreter.ExecutionResult) error {
	steps, err := s.selectSteps(result)
	if err != nil {
		return err
	}
	return s.writeJSON(newJSONResult(result, steps))
}

func (s *stackLab) writeJSON(value interface{}) error {
	encoder := json.NewEncoder(s.streams.stdout)
	encoder.SetIndent("", "  ")
	return errors.WithStack(encoder.Encode(value))
}

type jsonTemplate struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Program       string `json:"program"`
	ExpectSuccess bool   `json:"expectSuccess"`
}

func (s *stackLab) listTemplates() error {
	all := templates.Get().All()
	if s.cfg.JSON {
		converted := make([]jsonTemplate, len(all))
		for i, template := range all {
			converted[i] = jsonTemplate{
				Name:          template.Name,
				Title:         template.Title,
				Description:   template.Description,
				Program:       interpreter.FormatProgram(template.Program()),
				ExpectSuccess: template.ExpectSuccess,
			}
		}
		return s.writeJSON(converted)
	}

	table := tablewriter.NewWriter(s.streams.stdout)
	table.SetHeader([]string{"Name", "Title", "Expected"})
	table.SetAutoFormatHeaders(false)
	for _, template := range all {
		expected := s.palette.failure.Sprint("failure")
		if template.ExpectSuccess {
			expected = s.palette.success.Sprint("success")
		}
		table.Append([]string{template.Name, template.Title, expected})
	}
	table.Render()
	return nil
}

type jsonOpcode struct {
	opcodecatalog.Entry
	Executable bool `json:"executable"`
}

func (s *stackLab) listOpcodes() error {
	catalog := opcodecatalog.Get()
	entries := catalog.Entries()
	if s.cfg.Category != "" {
		entries = catalog.ByCategory(s.cfg.Category)
		if len(entries) == 0 {
			return errors.Errorf("unknown category %s (available: %s)", s.cfg.Category,
				catalog.Categories())
		}
	}

	documentationOnly := make(map[string]struct{})
	for _, name := range catalog.CheckAgainstDispatch(interpreter.IsSupported) {
		documentationOnly[name] = struct{}{}
	}

	if s.cfg.JSON {
		converted := make([]jsonOpcode, len(entries))
		for i, entry := range entries {
			converted[i] = jsonOpcode{Entry: entry, Executable: interpreter.IsSupported(entry.Name)}
		}
		return s.writeJSON(converted)
	}

	table := tablewriter.NewWriter(s.streams.stdout)
	table.SetHeader([]string{"Opcode", "Category", "Stack", "Status", "Description"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, entry := range entries {
		status := s.palette.success.Sprint("enabled")
		if !entry.Enabled() {
			status = s.palette.failure.Sprint("disabled")
		} else if _, ok := documentationOnly[entry.Name]; ok {
			status = s.palette.skipped.Sprint("reference only")
		}
		table.Append([]string{entry.Name, entry.Category, entry.Stack, status, entry.Description})
	}
	table.Render()
	return nil
}
