// Command schemy is the reference CLI driver: one positional argument
// evaluates that file and prints the last value, otherwise it starts an
// interactive REPL over stdin/stdout (spec.md §6).
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/microsoft/schemy"
	"github.com/microsoft/schemy/runtime"
)

var (
	verbose  = flag.Bool("v", false, "log interpreter setup and session diagnostics to stderr")
	initPath = flag.String("init", ".init.ss", "path to an optional host-side bootstrap script")
	prompt   = flag.String("prompt", "schemy> ", "REPL prompt text")
)

// infoLog is silenced unless -v is given; errorLog always writes.
var (
	infoLog  = log.New(io.Discard, "schemy: ", 0)
	errorLog = log.New(os.Stderr, "schemy: ", 0)
)

func main() {
	flag.Parse()
	if *verbose {
		infoLog.SetOutput(os.Stderr)
	}

	in, err := schemy.New(
		schemy.WithAccessor(runtime.ReadOnlyAccessor{}),
		schemy.WithInitPath(*initPath),
	)
	if err != nil {
		errorLog.Fatal(err)
	}
	infoLog.Print("interpreter constructed")

	args := flag.Args()
	if len(args) > 0 {
		runFile(in, args[0])
		return
	}
	runREPL(in)
}

func runFile(in *schemy.Interpreter, path string) {
	f, err := os.Open(path)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer f.Close()

	infoLog.Printf("evaluating %s", path)
	val, err := in.Evaluate(f)
	if err != nil {
		errorLog.Fatal(err)
	}
	fmt.Println(val.WriteString())
}

func runREPL(in *schemy.Interpreter) {
	if !isInteractive() {
		infoLog.Print("stdin is not a terminal, falling back to a buffered REPL")
		runBufferedREPL(in, bufio.NewReader(os.Stdin))
		return
	}
	runInteractiveREPL(in)
}

func isIncomplete(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unexpected end of input")
}

func runBufferedREPL(in *schemy.Interpreter, r *bufio.Reader) {
	var buffer strings.Builder

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if buffer.Len() == 0 {
					return
				}
			} else {
				errorLog.Printf("read error: %v", err)
				return
			}
		}
		buffer.WriteString(line)

		results, evalErr := in.EvalString(buffer.String())
		if evalErr != nil && isIncomplete(evalErr) && !errors.Is(err, io.EOF) {
			continue
		}
		buffer.Reset()
		for _, v := range results {
			fmt.Println(v.WriteString())
		}
		if evalErr != nil {
			errorLog.Print(evalErr)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

func runInteractiveREPL(in *schemy.Interpreter) {
	infoLog.Print("starting interactive REPL")
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if historyPath := replHistoryPath(); historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		linePrompt := *prompt
		if buffer.Len() > 0 {
			linePrompt = "..... "
		}
		input, err := state.Prompt(linePrompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				errorLog.Printf("read error: %v", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		results, evalErr := in.EvalString(src)
		if evalErr != nil && isIncomplete(evalErr) {
			continue
		}

		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
		for _, v := range results {
			fmt.Println(v.WriteString())
		}
		if evalErr != nil {
			errorLog.Print(evalErr)
		}
	}
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".schemy_history")
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
