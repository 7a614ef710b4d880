// Package repl implements the interactive translate-as-you-type loop for
// the KSL translator. The REPL provides an environment where users can:
//   - enter KSL declarations line by line
//   - see the translated GLSL as soon as the input forms a complete unit
//   - navigate input history using arrow keys
//   - receive colored feedback for errors and results
//
// Input is accumulated until its braces balance, so multi-line functions
// and structs translate as one module.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/parser"
	"github.com/tsumiki/ksl/printers/glsl"
	"github.com/tsumiki/ksl/resolver"
	"github.com/tsumiki/ksl/types"
)

// Color definitions for REPL output:
// - blueColor: decorative lines and separators
// - yellowColor: translated GLSL output
// - redColor: error messages
// - greenColor: banner
// - cyanColor: informational messages and instructions
var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl represents one interactive session's configuration.
type Repl struct {
	Banner  string // banner displayed at startup
	Version string // version string of the translator
	Line    string // separator line for visual formatting
	Prompt  string // prompt shown to the user (e.g. "ksl> ")
}

// NewRepl creates and initializes a new REPL instance.
func NewRepl(banner string, version string, line string, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Line: line, Prompt: prompt}
}

// PrintBannerInfo displays the welcome banner and usage instructions.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Type KSL declarations and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Input translates once braces balance")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start begins the REPL main loop. It reads lines through readline,
// accumulates them until the braces balance, then translates the unit and
// prints the GLSL (or the errors) before starting the next one.
//
// The loop continues until the user types '.exit' or EOF is reached.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	var pending []string
	depth := 0

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or error occurred (e.g. Ctrl+D pressed)
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		trimmed := strings.Trim(line, " \n\t\r")

		if trimmed == "" && len(pending) == 0 {
			continue
		}

		if trimmed == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		rl.SaveHistory(line)

		pending = append(pending, line)
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		if depth > 0 {
			// Inside an unfinished declaration; keep reading.
			continue
		}

		source := strings.Join(pending, "\n")
		pending = pending[:0]
		depth = 0

		r.executeWithRecovery(writer, source)
	}
}

// executeWithRecovery runs the full translation pipeline over one input
// unit. Unlike file mode, the REPL keeps running after errors so the user
// can correct mistakes and try again.
func (r *Repl) executeWithRecovery(writer io.Writer, source string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[INTERNAL ERROR] %v\n", recovered)
		}
	}()

	ctx := ast.NewContext()

	par := parser.NewParser(ctx, parser.Options{
		ErrorCallback: func(message string) {
			redColor.Fprintf(writer, "%s\n", message)
		},
	})

	module, err := par.Parse(source)
	if err != nil || !module.Valid() {
		if err != nil && !par.HasErrors() {
			redColor.Fprintf(writer, "%s\n", err.Error())
		}
		return
	}

	res := resolver.NewResolver(ctx, types.NewSystem())

	info, err := res.Resolve(module)
	if err != nil {
		redColor.Fprintf(writer, "RESOLVER ERROR: %s\n", err.Error())
		return
	}

	output := glsl.NewPrinter(ctx, info).Print(module)

	yellowColor.Fprintf(writer, "%s", output)
}
