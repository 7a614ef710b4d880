// Command kslc translates KSL shader modules into GLSL.
//
// Usage:
//
//	kslc build [-o out.glsl] [--watch] input.ksl
//	kslc repl
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/parser"
	"github.com/tsumiki/ksl/printers/glsl"
	"github.com/tsumiki/ksl/repl"
	"github.com/tsumiki/ksl/resolver"
	"github.com/tsumiki/ksl/types"
)

const version = "0.1.0"

const banner = `  _  __ ____   _
 | |/ // ___| | |
 | ' / \___ \ | |
 | . \  ___) || |___
 |_|\_\|____/ |_____|`

var (
	redColor  = color.New(color.FgRed)
	cyanColor = color.New(color.FgCyan)
)

func main() {
	app := &cli.App{
		Name:    "kslc",
		Usage:   "translate KSL shader modules into GLSL",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "translate a KSL file",
				ArgsUsage: "<input.ksl>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write GLSL to `FILE` instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "recompile whenever the input file changes",
					},
				},
				Action: buildCommand,
			},
			{
				Name:   "repl",
				Usage:  "interactive translate-as-you-type session",
				Action: replCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		redColor.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

func buildCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file")
	}

	input := c.Args().First()
	output := c.String("output")

	if err := buildOnce(input, output); err != nil {
		if !c.Bool("watch") {
			return err
		}
		// In watch mode a broken build is not fatal; report and wait
		// for the next save.
		redColor.Fprintf(os.Stderr, "%s\n", err.Error())
	}

	if c.Bool("watch") {
		return watch(input, output)
	}

	return nil
}

func replCommand(c *cli.Context) error {
	line := "------------------------------------------------------------"
	repl.NewRepl(banner, version, line, "ksl> ").Start(os.Stdin, os.Stdout)
	return nil
}

// buildOnce reads the input file, runs the pipeline, and writes the GLSL
// to the output file or stdout.
func buildOnce(input string, output string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	translated, err := translate(string(source))
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Print(translated)
		return nil
	}

	return os.WriteFile(output, []byte(translated), 0644)
}

// translate runs the full pipeline over one source string.
func translate(source string) (string, error) {
	ctx := ast.NewContext()

	par := parser.NewParser(ctx, parser.Options{
		ErrorCallback: func(message string) {
			redColor.Fprintf(os.Stderr, "%s\n", message)
		},
	})

	module, err := par.Parse(source)
	if err != nil {
		return "", err
	}

	res := resolver.NewResolver(ctx, types.NewSystem())

	info, err := res.Resolve(module)
	if err != nil {
		return "", fmt.Errorf("RESOLVER ERROR: %s", err.Error())
	}

	return glsl.NewPrinter(ctx, info).Print(module), nil
}

// watch recompiles the input whenever it changes on disk. Editors often
// replace files on save, so the watcher follows the parent directory and
// keeps only the write and create events whose path is the input file.
func watch(input string, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	cyanColor.Fprintf(os.Stderr, "watching %s\n", input)

	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			path, err := filepath.Abs(event.Name)
			if err != nil || path != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := buildOnce(input, output); err != nil {
				redColor.Fprintf(os.Stderr, "%s\n", err.Error())
			} else {
				cyanColor.Fprintf(os.Stderr, "rebuilt %s\n", input)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			redColor.Fprintf(os.Stderr, "watch error: %s\n", err.Error())
		}
	}
}
