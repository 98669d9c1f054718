package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sambeau/chervil/config"
	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/formatter"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/lower"
	"github.com/sambeau/chervil/pkg/chervil/parser"
	"github.com/sambeau/chervil/pkg/chervil/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	prettyPrintFlag = flag.Bool("pp", false, "Pretty-print HTML output")
	prettyLongFlag  = flag.Bool("pretty", false, "Pretty-print HTML output")

	// Evaluation flags
	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	rawFlag      = flag.Bool("r", false, "Output raw print string instead of a literal")
	rawLongFlag  = flag.Bool("raw", false, "Output raw print string instead of a literal")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	lowerFlag    = flag.Bool("lower", false, "Print the program after markup lowering, without executing")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("chervil version %s\n", Version)
		os.Exit(0)
	}

	// Project config supplies defaults; flags override
	cfg, err := config.Find(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	prettyPrint := *prettyPrintFlag || *prettyLongFlag || cfg.Output.Pretty
	raw := *rawFlag || *rawLongFlag || cfg.Output.Raw

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	// Mode dispatch
	switch {
	case evalCode != "":
		executeInline(evalCode, prettyPrint, raw, *lowerFlag)
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))
	case *lowerFlag && len(flag.Args()) > 0:
		os.Exit(lowerFile(flag.Args()[0]))
	case len(flag.Args()) > 0:
		executeFile(flag.Args()[0], prettyPrint)
	default:
		repl.Start(os.Stdin, os.Stdout, Version, repl.Options{
			HistoryFile: cfg.HistoryFilePath(),
			HistorySize: cfg.History.Size,
		})
	}
}

func printHelp() {
	fmt.Printf(`chervil - Chervil language interpreter version %s

Usage:
  chervil [options] [file]
  chervil -e "code"
  chervil --check <file>...

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -pp, --pretty         Pretty-print HTML output with proper indentation

Evaluation Options:
  -e, --eval <code>     Evaluate code string (outputs a Chervil literal)
  -r, --raw             Output raw print string instead of a literal (with -e)
  --check               Check syntax without executing (can specify multiple files)
  --lower               Print the program after markup lowering, without executing

Examples:
  chervil                        Start interactive REPL
  chervil page.chv               Execute a Chervil script
  chervil -pp page.chv           Execute and pretty-print HTML output
  chervil -e "1 + 2"             Evaluate inline code (outputs: 3)
  chervil -e '<p>"hi"</p>' -r    Render markup to HTML
  chervil --check page.chv       Check syntax without executing
  chervil --lower page.chv       Show the element() calls markup lowers to

Defaults can be set in a .chervil.yaml file in the project directory.
`, Version)
}

// parseSource lexes and parses source. On error it prints diagnostics with
// source context and returns nil.
func parseSource(source, filename string) *ast.Program {
	l := lexer.NewWithFilename(source, filename)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) != 0 {
		printStructuredErrors(source, errs)
		return nil
	}
	return program
}

// executeInline evaluates inline code provided via -e flag
func executeInline(code string, prettyPrint, raw, lowerOnly bool) {
	program := parseSource(code, "<eval>")
	if program == nil {
		os.Exit(1)
	}

	lowered := lower.Lower(program)
	if lowerOnly {
		fmt.Println(lowered.String())
		return
	}

	env := evaluator.NewEnvironment()
	env.Filename = "<eval>"
	evaluated := evaluator.Eval(lowered, env)

	if evaluated == nil {
		if !raw {
			fmt.Println("null")
		}
		return
	}

	if evaluated.Type() == evaluator.ERROR_OBJ {
		if errObj, ok := evaluated.(*evaluator.Error); ok {
			printRuntimeError("<eval>", code, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", evaluated.Inspect())
		}
		os.Exit(1)
	}

	if raw {
		if evaluated.Type() != evaluator.NULL_OBJ {
			output := evaluator.ObjectToPrintString(evaluated)
			if prettyPrint {
				output = formatter.FormatHTML(output)
			}
			fmt.Println(output)
		}
	} else {
		if evaluated.Type() == evaluator.NULL_OBJ {
			fmt.Println("null")
		} else {
			fmt.Println(evaluator.ObjectToReprString(evaluated))
		}
	}
}

// checkFiles checks the syntax of one or more files without executing them
func checkFiles(files []string) int {
	hasErrors := false

	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filename, err)
			return 2
		}

		l := lexer.NewWithFilename(string(content), filename)
		p := parser.New(l)
		_ = p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(string(content), errs)
			hasErrors = true
		}
	}

	if hasErrors {
		return 1
	}
	return 0
}

// lowerFile prints a file's program after markup lowering
func lowerFile(filename string) int {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}

	program := parseSource(string(content), filename)
	if program == nil {
		return 1
	}

	fmt.Println(lower.Lower(program).String())
	return 0
}

// executeFile reads and executes a chervil source file
func executeFile(filename string, prettyPrint bool) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", filename, err)
		os.Exit(1)
	}

	program := parseSource(string(content), filename)
	if program == nil {
		os.Exit(1)
	}

	env := evaluator.NewEnvironment()
	env.Filename = filename
	evaluated := evaluator.Eval(lower.Lower(program), env)

	if evaluated != nil && evaluated.Type() == evaluator.ERROR_OBJ {
		if errObj, ok := evaluated.(*evaluator.Error); ok {
			printRuntimeError(filename, string(content), errObj)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filename, evaluated.Inspect())
		}
		os.Exit(1)
	}

	if evaluated != nil && evaluated.Type() != evaluator.NULL_OBJ {
		output := evaluator.ObjectToPrintString(evaluated)
		if prettyPrint {
			output = formatter.FormatHTML(output)
		}
		fmt.Println(output)
	}
}

// printStructuredErrors prints parser errors with source context
func printStructuredErrors(source string, errs []*errors.ChervilError) {
	lines := strings.Split(source, "\n")

	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err.PrettyString())
		printSourceContext(lines, err.Line, err.Column)
	}
}

// printRuntimeError prints a runtime error with source context
func printRuntimeError(filename string, source string, err *evaluator.Error) {
	lines := strings.Split(source, "\n")

	fmt.Fprint(os.Stderr, "Runtime error")
	if err.Line > 0 {
		fmt.Fprintf(os.Stderr, " in %s: line %d, column %d\n", filename, err.Line, err.Column)
	} else if filename != "" {
		fmt.Fprintf(os.Stderr, " in %s\n", filename)
	} else {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "  %s\n", err.Message)

	for _, hint := range err.Hints {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}

	if err.Line > 0 {
		printSourceContext(lines, err.Line, err.Column)
	}
}

// printSourceContext prints the source line and error pointer
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	// Tabs count as 8 columns for pointer alignment
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' {
			trimCount++
		} else if sourceLine[i] == '\t' {
			trimCount += 8
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(sourceLine, " \t")
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	if colNum > 0 {
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := visualCol - trimCount
		if adjustedCol < 0 {
			adjustedCol = 0
		}

		pointer := strings.Repeat(" ", adjustedCol) + "^"
		fmt.Fprintf(os.Stderr, "    %s\n", pointer)
	}
}
