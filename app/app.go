package app

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/stacklab/domain/stacklab/interpreter"
	"github.com/kaspanet/stacklab/infrastructure/config"
	"github.com/kaspanet/stacklab/infrastructure/logger"
	"github.com/kaspanet/stacklab/util/panics"
	"github.com/kaspanet/stacklab/version"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Exit codes of the stacklab command.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// streams are the standard streams of a run, replaced in tests.
type streams struct {
	stdin           io.Reader
	stdinIsTerminal bool
	stdout          io.Writer
	stderr          io.Writer
	// colorSupported is whether stdout can display colors.
	colorSupported bool
}

func osStreams() streams {
	stdoutFd := os.Stdout.Fd()
	return streams{
		stdin:           os.Stdin,
		stdinIsTerminal: term.IsTerminal(int(os.Stdin.Fd())),
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		colorSupported:  isatty.IsTerminal(stdoutFd) || isatty.IsCygwinTerminal(stdoutFd),
	}
}

// StartApp parses the command line, runs the requested command and returns
// the process exit code.
func StartApp() int {
	cfg, err := config.LoadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		return ExitFailure
	}

	if cfg.ShowVersion {
		fmt.Println("stacklab version", version.Version())
		return ExitSuccess
	}
	if cfg.ShowSubsystems {
		logger.ShowSubsystems()
		return ExitSuccess
	}

	err = logger.InitLog(cfg.LogFile(), cfg.ErrLogFile(), logger.LevelTrace)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitFailure
	}
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "StartApp", nil)

	return newStackLab(cfg, osStreams()).run()
}

// stackLab runs a single command described by a config.
type stackLab struct {
	cfg         *config.Config
	streams     streams
	interpreter *interpreter.Interpreter
	palette     *palette
}

func newStackLab(cfg *config.Config, s streams) *stackLab {
	return &stackLab{
		cfg:         cfg,
		streams:     s,
		interpreter: interpreter.New(),
		palette:     newPalette(s.colorSupported && !cfg.NoColor),
	}
}

func (s *stackLab) run() int {
	var err error
	switch {
	case s.cfg.ListTemplates:
		err = s.listTemplates()
	case s.cfg.ListOpcodes:
		err = s.listOpcodes()
	default:
		return s.runProgram()
	}
	if err != nil {
		s.fail(err)
		return ExitFailure
	}
	return ExitSuccess
}

// runProgram executes the requested program and renders the result. The exit
// code reflects the script's verdict.
func (s *stackLab) runProgram() int {
	source, err := s.loadProgram()
	if err != nil {
		s.fail(err)
		return ExitFailure
	}
	log.Debugf("Running %s: %s", source.name, interpreter.FormatProgram(source.program))

	result := s.interpreter.Execute(source.program)
	log.Tracef("Final stack of %s:\n%s", source.name, logger.NewLogClosure(func() string {
		return spew.Sdump(result.FinalStack)
	}))
	if !result.Success {
		log.Infof("Script %s failed: %s", source.name, result.ErrorMessage())
	}

	if s.cfg.JSON {
		err = s.renderJSON(result)
	} else {
		err = s.renderTable(source, result)
	}
	if err != nil {
		s.fail(err)
		return ExitFailure
	}
	if !result.Success {
		return ExitFailure
	}
	return ExitSuccess
}

func (s *stackLab) fail(err error) {
	log.Errorf("%s", err)
	fmt.Fprintln(s.streams.stderr, s.palette.failure.Sprint("error: ")+err.Error())
}
