// Command loxvm is the CLI driver: run a source file, or start an
// interactive REPL, against the Lox bytecode compiler and VM.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/re4388/craftinginterpreters-compiler/pkg/lox"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("loxvm", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: loxvm [flags] [path]")
		fs.PrintDefaults()
	}

	trace := fs.BoolP("trace", "t", false, "trace each instruction before it executes")
	fingerprint := fs.Bool("fingerprint", false, "print a chunk fingerprint after each REPL line")
	configPath := fs.StringP("config", "c", ".loxvm.json", "path to a hujson config file (missing is not an error)")

	if err := fs.Parse(args); err != nil {
		return int(lox.ExitUsage)
	}

	cfg, err := lox.LoadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(lox.ExitUsage)
	}
	cfg.Trace = cfg.Trace || *trace

	positional := fs.Args()
	switch len(positional) {
	case 0:
		return runREPL(cfg, *fingerprint)
	case 1:
		return runFile(cfg, positional[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: loxvm [flags] [path]")
		return int(lox.ExitUsage)
	}
}

func runFile(cfg *lox.Config, path string) int {
	it, err := lox.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(lox.ExitUsage)
	}
	defer it.Close()

	return int(it.RunFile(path))
}

// repl is the interactive command loop, built the way a teacher's
// interactive tool builds one: a liner.State for readline-style editing
// and persistent history, continuing after interpret errors instead of
// exiting (spec.md §6: print errors but continue).
type repl struct {
	it          *lox.Interpreter
	liner       *liner.State
	historyPath string
	fingerprint bool
}

func runREPL(cfg *lox.Config, fingerprint bool) int {
	it, err := lox.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(lox.ExitUsage)
	}
	defer it.Close()

	r := &repl{
		it:          it,
		historyPath: historyFile(cfg.HistoryFile),
		fingerprint: fingerprint,
	}
	return r.run()
}

func historyFile(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".loxvm_history")
}

func (r *repl) run() int {
	r.liner = liner.NewLiner()
	defer r.liner.Close()
	r.liner.SetCtrlCAborts(true)

	if f, err := os.Open(r.historyPath); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	for {
		line, err := r.liner.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintln(os.Stderr, err)
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		r.liner.AppendHistory(line)

		r.it.Run(line)
		if r.fingerprint {
			fmt.Fprintf(os.Stderr, "fingerprint=%s\n", r.it.LastChunkFingerprint())
		}
	}

	r.saveHistory()
	return int(lox.ExitOK)
}

// saveHistory writes the history file atomically so a crash mid-write
// never leaves a torn history behind.
func (r *repl) saveHistory() {
	if r.historyPath == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := r.liner.WriteHistory(&buf); err != nil {
		return
	}
	atomic.WriteFile(r.historyPath, &buf)
}
