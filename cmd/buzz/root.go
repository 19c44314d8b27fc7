package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/WriteNaN/buzz/internal/diagfmt"
	"github.com/WriteNaN/buzz/internal/driver"
	"github.com/WriteNaN/buzz/internal/ui"
	"github.com/WriteNaN/buzz/internal/version"

	tea "github.com/charmbracelet/bubbletea"
)

// exitCode is set by RunE before returning and read by main after
// rootCmd.Execute returns, mirroring §6 "Exit codes: 0 success, 1
// runtime failure or compile error" without cobra's own error-path exit
// status (which would also fire on flag-parsing mistakes).
var exitCode int

var (
	flagTest       bool
	flagCheck      bool
	flagShowVer    bool
	flagLibPaths   []string
	flagTrace      bool
	flagCycleLimit int
	flagCacheDir   string
)

var rootCmd = &cobra.Command{
	Use:           "buzz [flags] <script> [args...]",
	Short:         "Run, check, or test a Buzz script",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagTest, "test", "t", false, "run every test block instead of main")
	rootCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "parse and type-check without running")
	rootCmd.Flags().BoolVarP(&flagShowVer, "version-banner", "v", false, "print the version banner")
	rootCmd.Flags().StringArrayVarP(&flagLibPaths, "libpath", "L", nil, "add a library search directory (repeatable)")
	rootCmd.Flags().BoolVar(&flagTrace, "trace", false, "print every dispatched VM instruction to stderr")
	rootCmd.Flags().IntVar(&flagCycleLimit, "cycle-limit", 0, "abort after this many VM instructions (0 = unlimited)")
	rootCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "on-disk compiled-chunk cache directory (disabled when empty)")
}

func runRoot(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if flagShowVer {
		version.Banner(out)
		return nil
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	script := args[0]

	invokeDir, err := os.Getwd()
	if err != nil {
		return err
	}
	d, err := driver.New(invokeDir, driver.Options{
		SearchPaths: flagLibPaths,
		BuzzPath:    os.Getenv("BUZZ_PATH"),
		Trace:       flagTrace,
		CycleLimit:  flagCycleLimit,
		Stdout:      out,
		Stderr:      errOut,
		CacheDir:    flagCacheDir,
	})
	if err != nil {
		return err
	}

	switch {
	case flagCheck:
		return runCheck(d, script, errOut)
	case flagTest:
		return runTests(d, script, out, errOut)
	default:
		return runScript(d, script, errOut)
	}
}

func runScript(d *driver.Driver, script string, errOut io.Writer) error {
	res, err := d.Run(script)
	if err != nil {
		return err
	}
	if res.Diagnostics.HasErrors() {
		diagfmt.Print(errOut, res.Diagnostics, d.FileSet())
		exitCode = 1
		return nil
	}
	if res.RuntimeErr != nil {
		io.WriteString(errOut, res.RuntimeErr.Error())
		exitCode = 1
	}
	return nil
}

func runCheck(d *driver.Driver, script string, errOut io.Writer) error {
	report, err := d.Check(script)
	if err != nil {
		return err
	}
	if report.HasErrors() {
		diagfmt.Print(errOut, report, d.FileSet())
		exitCode = 1
	}
	return nil
}

func runTests(d *driver.Driver, script string, out, errOut io.Writer) error {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	if !interactive {
		report, err := d.RunTests(script, nil)
		if err != nil {
			return err
		}
		return renderTestReport(report, out, errOut, d)
	}

	names := d.TestNames(script)
	events := make(chan driver.Event, len(names)+1)
	model := ui.NewModel(script, names, events)

	var report *driver.TestReport
	var runErr error
	done := make(chan struct{})
	go func() {
		report, runErr = d.RunTests(script, events)
		close(done)
	}()

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return err
	}
	<-done
	if runErr != nil {
		return runErr
	}
	return renderTestReport(report, out, errOut, d)
}

func renderTestReport(report *driver.TestReport, out, errOut io.Writer, d *driver.Driver) error {
	if report.Diagnostics.HasErrors() {
		diagfmt.Print(errOut, report.Diagnostics, d.FileSet())
		exitCode = 1
		return nil
	}
	for _, r := range report.Results {
		if r.Passed {
			io.WriteString(out, "✓ "+r.Name+"\n")
		} else {
			io.WriteString(out, "✗ "+r.Name+"\n")
			io.WriteString(errOut, r.Message)
		}
	}
	if report.Aborted {
		exitCode = 1
	}
	return nil
}
