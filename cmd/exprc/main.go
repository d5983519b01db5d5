// Command exprc compiles Calyx expressions: it reports diagnostics
// with source positions, dumps the synthesized trees, and can watch a
// source file and recompile on every change.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/calyx-lang/calyx/internal/parser"
	"github.com/calyx-lang/calyx/internal/symtab"
)

type checkCmd struct {
	Path string `arg:"" type:"existingfile" help:"Calyx source file to compile."`
}

type dumpCmd struct {
	Path        string `arg:"" type:"existingfile" help:"Calyx source file to compile."`
	Unoptimized bool   `help:"Dump the unoptimized tree instead of the optimized one."`
}

type watchCmd struct {
	Path string `arg:"" type:"existingfile" help:"Calyx source file to watch and recompile."`
}

type versionCmd struct{}

var cli struct {
	Settings string `type:"path" help:"YAML settings file controlling parser features and limits."`

	Check   checkCmd   `cmd:"" help:"Compile a source file and report diagnostics."`
	Dump    dumpCmd    `cmd:"" help:"Compile a source file and print its expression tree."`
	Watch   watchCmd   `cmd:"" help:"Recompile a source file whenever it changes."`
	Version versionCmd `cmd:"" help:"Print the language version."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("exprc"),
		kong.Description("Calyx expression compiler front end."),
		kong.UsageOnError(),
	)

	settings, err := loadSettings(cli.Settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		os.Exit(2)
	}

	switch ctx.Command() {
	case "check <path>":
		os.Exit(runCheck(cli.Check.Path, settings))
	case "dump <path>":
		os.Exit(runDump(cli.Dump.Path, cli.Dump.Unoptimized, settings))
	case "watch <path>":
		os.Exit(runWatch(cli.Watch.Path, settings))
	case "version":
		fmt.Println("calyx", parser.LanguageVersion)
	default:
		ctx.PrintUsage(false)
		os.Exit(2)
	}
}

// compileFile compiles one source file and writes its diagnostics to
// stderr. The returned expression is nil on failure.
func compileFile(path string, settings *parser.Settings) (*parser.Expression, *parser.Parser, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	p := parser.New(symtab.NewResolver(symtab.NewSymbolTable()), settings)
	expr, ok := p.Compile(string(source))
	if !ok {
		reportDiagnostics(path, p)
		return nil, p, nil
	}
	return expr, p, nil
}

// reportDiagnostics renders every collected diagnostic with its source
// position and a caret line.
func reportDiagnostics(path string, p *parser.Parser) {
	for _, e := range p.Errors().All() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: [%s] %s\n",
			path, e.LineNo, e.ColumnNo, e.Category, e.Diagnostic)
		if e.ErrorLine != "" && e.ColumnNo > 0 {
			fmt.Fprintf(os.Stderr, "  %s\n  %s^\n",
				e.ErrorLine, strings.Repeat(" ", e.ColumnNo-1))
		}
	}
	fmt.Fprintf(os.Stderr, "%s: %d error(s)\n", path, p.ErrorCount())
}

func runCheck(path string, settings *parser.Settings) int {
	expr, _, err := compileFile(path, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		return 2
	}
	if expr == nil {
		return 1
	}
	fmt.Printf("%s: ok\n", path)
	if v, constant := expr.Value(); constant {
		fmt.Printf("constant result: %g\n", v)
	}
	return 0
}

func runDump(path string, unoptimized bool, settings *parser.Settings) int {
	expr, _, err := compileFile(path, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		return 2
	}
	if expr == nil {
		return 1
	}

	root := expr.Root
	if unoptimized {
		root = expr.UnoptimizedRoot
	}
	fmt.Println(root.String())

	if len(expr.Locals) > 0 {
		fmt.Println("locals:")
		for _, l := range expr.Locals {
			fmt.Printf("  %s (kind %d, size %d, depth %d)\n", l.Name, l.Kind, l.Size, l.Depth)
		}
	}
	return 0
}

// runWatch recompiles the file on every write event. Editors often
// replace files via rename, so the parent directory is watched and
// events are debounced.
func runWatch(path string, settings *parser.Settings) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		return 2
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		return 2
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		fmt.Fprintln(os.Stderr, "exprc:", err)
		return 2
	}

	recompile := func() {
		if _, _, err := compileFile(abs, settings); err != nil {
			fmt.Fprintln(os.Stderr, "exprc:", err)
			return
		}
		fmt.Fprintf(os.Stderr, "%s: recompiled at %s\n", path, time.Now().Format(time.TimeOnly))
	}
	recompile()

	var pending <-chan time.Time
	for {
		select {
		case ev, open := <-watcher.Events:
			if !open {
				return 0
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(100 * time.Millisecond)
			}
		case err, open := <-watcher.Errors:
			if !open {
				return 0
			}
			fmt.Fprintln(os.Stderr, "exprc: watch:", err)
		case <-pending:
			pending = nil
			recompile()
		}
	}
}
