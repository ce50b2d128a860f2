// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/stacklab/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	appName               = "stacklab"
	defaultConfigFilename = "stacklab.conf"
	defaultLogLevel       = "warn"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "stacklab.log"
	defaultErrLogFilename = "stacklab_err.log"

	// AllSteps is the value of Flags.Step when every step is shown.
	AllSteps = -1
)

var (
	// DefaultAppDir is the default home directory for stacklab.
	DefaultAppDir = btcutil.AppDataDir(appName, false)

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for stacklab.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoLogFiles    bool   `long:"nologfiles" description:"Only log to the console"`
	LogLevel      string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	ProgramFile   string `short:"f" long:"program-file" description:"YAML or JSON file holding the list of instructions to run"`
	Template      string `short:"t" long:"template" description:"Run the named template"`
	ListTemplates bool   `long:"list-templates" description:"List the available templates and exit"`
	ListOpcodes   bool   `long:"list-opcodes" description:"List the opcode catalog and exit"`
	Category      string `long:"category" description:"Only list opcodes of this category (requires --list-opcodes)"`
	JSON          bool   `short:"j" long:"json" description:"Print the execution result as JSON"`
	Step          int    `long:"step" description:"Only print the state after the step with this index"`
	NoColor       bool   `long:"no-color" description:"Disable colored output"`
}

// Config defines the configuration options for stacklab.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	*Flags
	// Tokens are the program tokens given as positional arguments.
	Tokens []string
	// ShowSubsystems is set when the log level is "show".
	ShowSubsystems bool
}

// LogFile returns the path of the main log file, or "" if log files are
// disabled.
func (cfg *Config) LogFile() string {
	if cfg.NoLogFiles {
		return ""
	}
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file, or "" if log files are
// disabled.
func (cfg *Config) ErrLogFile() string {
	if cfg.NoLogFiles {
		return ""
	}
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() Flags {
	return Flags{
		ConfigFile: defaultConfigFile,
		LogDir:     defaultLogDir,
		LogLevel:   defaultLogLevel,
		Step:       AllSteps,
	}
}

// LoadConfig initializes and parses the config using a config file and
// command line options. Usage and parsing messages are written to out.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in stacklab functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options. Command line options always take
// precedence.
//
// When the version flag is set the returned config is only pre-parsed. A
// help request is returned as a *flags.Error of type flags.ErrHelp.
func LoadConfig(args []string, out io.Writer) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfgFlags
	preParser := flags.NewNamedParser(appName, flags.HelpFlag)
	_, err := preParser.AddGroup("Application Options", "", &preCfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	_, err = preParser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(out, err)
			return nil, err
		}
	}

	if preCfg.ShowVersion {
		return &Config{Flags: &preCfg}, nil
	}

	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)

	// Load additional config from file. A missing default config file is
	// fine, a missing explicitly requested one is not.
	parser := flags.NewNamedParser(appName, flags.Default&^flags.PrintErrors)
	_, err = parser.AddGroup("Application Options", "", &cfgFlags)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok || preCfg.ConfigFile != defaultConfigFile {
			fmt.Fprintln(out, usageMessage)
			return nil, errors.Wrapf(err, "error parsing config file %s", configFile)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(out, usageMessage)
		}
		return nil, err
	}

	cfg := &Config{
		Flags:  &cfgFlags,
		Tokens: remainingArgs,
	}
	err = cfg.validate()
	if err != nil {
		fmt.Fprintln(out, usageMessage)
		return nil, err
	}
	return cfg, nil
}

// validate checks option combinations and normalizes paths.
func (cfg *Config) validate() error {
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	if cfg.ProgramFile != "" {
		cfg.ProgramFile = cleanAndExpandPath(cfg.ProgramFile)
	}

	// Special show command to list supported subsystems.
	if cfg.LogLevel == "show" {
		cfg.ShowSubsystems = true
	} else {
		err := logger.ParseAndSetLogLevels(cfg.LogLevel)
		if err != nil {
			return err
		}
	}

	sources := 0
	if len(cfg.Tokens) > 0 {
		sources++
	}
	if cfg.ProgramFile != "" {
		sources++
	}
	if cfg.Template != "" {
		sources++
	}
	if sources > 1 {
		return errors.New("only one of program tokens, --program-file and --template may be given")
	}
	if cfg.Category != "" && !cfg.ListOpcodes {
		return errors.New("--category requires --list-opcodes")
	}
	if cfg.Step < AllSteps {
		return errors.Errorf("invalid --step %d: step indexes are not negative", cfg.Step)
	}
	return nil
}
