package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/lower"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

const PROMPT = ">> "
const PROMPT_RAW = ":> "
const CONTINUATION_PROMPT = ".. "

const CHERVIL_LOGO = `
█▀▀ █░█ █▀▀ █▀█ █░█ █ █░░
█▄▄ █▀█ ██▄ █▀▄ ▀▄▀ █ █▄▄ `

// Chervil keywords and builtins for tab completion
var completionWords = []string{
	// Keywords
	"let", "if", "else", "for", "in", "fn", "return",
	// Builtins - markup
	"element", "html", "markdown",
	// Builtins - collections
	"len", "range", "first", "last", "rest", "push", "join", "keys", "values",
	// Builtins - strings
	"split", "trim", "upper", "lower",
	// Builtins - other
	"string", "type", "print", "log",
	// Common values
	"true", "false", "null",
}

// Options configures a REPL session. The zero value uses the defaults.
type Options struct {
	HistoryFile string // history file path (default: $TMPDIR/.chervil_history)
	HistorySize int    // max entries kept in the history file (0 = keep all)
}

// Start starts the REPL with line editing, history, and tab completion
func Start(in io.Reader, out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	// Set up tab completion
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	// Load command history from file
	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".chervil_history")
	}
	if data, err := os.ReadFile(historyFile); err == nil {
		line.ReadHistory(strings.NewReader(trimHistory(string(data), opts.HistorySize)))
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			var history strings.Builder
			line.WriteHistory(&history)
			io.WriteString(f, trimHistory(history.String(), opts.HistorySize))
			f.Close()
		}
	}()

	env := evaluator.NewEnvironment()

	fmt.Fprintf(out, "%s", CHERVIL_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder
	rawMode := false // When true, output is like running a .chv script
	basePrompt := PROMPT

	for {
		currentPrompt := basePrompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			// Ctrl+D or Ctrl+C
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				// Ctrl+D - exit
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		// Check for exit command
		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		// Handle REPL commands (start with :)
		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			newRawMode, handled := handleReplCommand(trimmed, env, out, rawMode)
			if handled {
				rawMode = newRawMode
				if rawMode {
					basePrompt = PROMPT_RAW
				} else {
					basePrompt = PROMPT
				}
			}
			continue
		}

		// Skip empty lines when no input buffered
		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		// Add to input buffer
		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		// Check if input is complete (no unclosed braces, brackets, or tags)
		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			// Continue multi-line input
			continue
		}

		// Add complete input to history
		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		// Parse and evaluate
		l := lexer.New(fullInput)
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.StructuredErrors(); len(errs) != 0 {
			printStructuredErrors(out, errs)
			inputBuffer.Reset()
			continue
		}

		evaluated := evaluator.Eval(lower.Lower(program), env)
		if evaluated != nil {
			// Check if it's an error
			if errObj, ok := evaluated.(*evaluator.Error); ok {
				printRuntimeError(out, errObj)
			} else if evaluated.Type() == evaluator.NULL_OBJ {
				if !rawMode {
					io.WriteString(out, "OK\n")
				}
			} else {
				if rawMode {
					// Raw mode: output like running a .chv script
					result := evaluator.ObjectToPrintString(evaluated)
					if result != "" {
						io.WriteString(out, result)
						if !strings.HasSuffix(result, "\n") {
							// Add newline if the output doesn't end with one
							io.WriteString(out, "\n")
						}
					}
				} else {
					// Normal mode: pretty-printed Chervil literal output
					result := evaluator.ObjectToReprString(evaluated)
					if result != "" {
						io.WriteString(out, result)
						io.WriteString(out, "\n")
					} else {
						io.WriteString(out, "OK\n")
					}
				}
			}
		}

		// Clear buffer for next input
		inputBuffer.Reset()
	}
}

// handleReplCommand handles REPL meta-commands that start with ':'
// Returns (newRawMode, handled) - if handled is true, the command was recognized
func handleReplCommand(cmd string, env *evaluator.Environment, out io.Writer, rawMode bool) (bool, bool) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :clear          Clear all user variables")
		fmt.Fprintln(out, "  :raw            Toggle raw output mode (script-style output)")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Output Modes:")
		fmt.Fprintln(out, "  >> (normal)     Shows Chervil literals (strings quoted, etc.)")
		fmt.Fprintln(out, "  :> (raw)        Shows output like running a .chv script")
		return rawMode, true

	case ":env":
		printEnvironment(env, out)
		return rawMode, true

	case ":clear":
		// Create a fresh environment
		*env = *evaluator.NewEnvironment()
		fmt.Fprintln(out, "Environment cleared")
		return rawMode, true

	case ":raw":
		newMode := !rawMode
		if newMode {
			fmt.Fprintln(out, "Raw output mode ON (script-style output)")
		} else {
			fmt.Fprintln(out, "Raw output mode OFF (Chervil literal output)")
		}
		return newMode, true

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
		return rawMode, true
	}
}

// printEnvironment displays all user-defined variables in the environment
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	vars := env.UserVariables()
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no user variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obj := vars[name]
		typeStr := string(obj.Type())
		value := obj.Inspect()

		// For multi-line values, indent continuation lines by 2 spaces
		if strings.Contains(value, "\n") {
			lines := strings.Split(value, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = "  " + lines[i]
			}
			value = strings.Join(lines, "\n")
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}

		fmt.Fprintf(out, "  %s: %s = %s\n", name, typeStr, value)
	}
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		return nil
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	lastWord := words[len(words)-1]

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, brackets,
// parentheses, or tags. It runs the real lexer over the buffered input: if
// lexing ends inside a tag or element body, or with open tags or unbalanced
// delimiters, the input is incomplete. The lexer already knows that `2 < 3`
// is a comparison and that a '{' inside a string doesn't count.
func needsMoreInput(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	l := lexer.New(input)
	depth := 0
	for {
		tok := l.NextToken()
		switch tok.Type {
		case lexer.EOF:
			return depth > 0 || l.Mode() != lexer.CODE || len(l.OpenTags()) > 0
		case lexer.ILLEGAL:
			// Submit as-is and let the parser report the error
			return false
		case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
			depth++
		case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
			depth--
		}
	}
}

// trimHistory keeps the most recent max lines of history file content.
// max <= 0 keeps everything.
func trimHistory(history string, max int) string {
	if max <= 0 {
		return history
	}
	lines := strings.Split(strings.TrimRight(history, "\n"), "\n")
	if len(lines) <= max {
		return history
	}
	return strings.Join(lines[len(lines)-max:], "\n") + "\n"
}

// printStructuredErrors prints parser errors using structured error format
func printStructuredErrors(out io.Writer, errs []*errors.ChervilError) {
	for _, err := range errs {
		io.WriteString(out, err.PrettyString())
		io.WriteString(out, "\n")
	}
}

// printRuntimeError prints a runtime error with structured formatting
func printRuntimeError(out io.Writer, err *evaluator.Error) {
	io.WriteString(out, "Runtime error")

	if err.Line > 0 {
		fmt.Fprintf(out, ": line %d, column %d\n  %s\n", err.Line, err.Column, err.Message)
	} else {
		io.WriteString(out, "\n  "+err.Message+"\n")
	}

	for _, hint := range err.Hints {
		io.WriteString(out, "  hint: "+hint+"\n")
	}
}
