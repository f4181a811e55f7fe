// Package cli provides the plain-terminal front end: a read-eval-print loop
// over an engine.Engine, meta-commands for saving/restoring/transcribing a
// session, and an ioface.Handler implementation backed by stdin/stdout.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/nathoo/questcore/engine"
	"github.com/nathoo/questcore/fsio"
	"github.com/nathoo/questcore/ioface"
)

// StdIO is the default ioface.Handler: plain line-buffered stdin/stdout,
// with Style only affecting whether Markdown-flavored emphasis (*word*,
// **word**) is rendered through MarkdownRenderer before printing.
type StdIO struct {
	in       *bufio.Scanner
	out      io.Writer
	renderer *MarkdownRenderer
}

// NewStdIO wires a StdIO to the given streams. render may be nil to print
// output verbatim (used by tests and `--plain`).
func NewStdIO(in io.Reader, out io.Writer, render *MarkdownRenderer) *StdIO {
	return &StdIO{in: bufio.NewScanner(in), out: out, renderer: render}
}

func (s *StdIO) ReadLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *StdIO) Write(text string, style ioface.Style) {
	if s.renderer != nil {
		text = s.renderer.Render(text, style)
	}
	fmt.Fprintln(s.out, text)
}

func (s *StdIO) Flush() {
	if f, ok := s.out.(interface{ Sync() error }); ok {
		_ = f.Sync()
	}
}

// MarkdownRenderer renders room/narration text through glamour, falling
// back to the plain string on any rendering error (a malformed blueprint
// description should never crash the front end).
type MarkdownRenderer struct {
	r *glamour.TermRenderer
}

func NewMarkdownRenderer() (*MarkdownRenderer, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{r: r}, nil
}

func (m *MarkdownRenderer) Render(text string, style ioface.Style) string {
	if style == ioface.Code {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// CLI runs the read-eval-print loop: prompt, read a line, either intercept
// it as a front-end-local meta-command (transcript, again) or hand it to
// the engine, then react to any Result.Meta the engine's builtin verbs
// signalled (save/restore/restart/quit) since those need fsio/ioface access
// the engine package deliberately doesn't have.
type CLI struct {
	Engine   *engine.Engine
	IO       ioface.Handler
	GameName string

	lastInput  string
	transcript io.WriteCloser
	ExitCode   int
}

// New creates a CLI wired to the given engine and I/O handler.
func New(eng *engine.Engine, io ioface.Handler, gameName string) *CLI {
	return &CLI{Engine: eng, IO: io, GameName: gameName}
}

// Run shows the intro and loops until the player quits or input ends
// (EOF). It returns the process exit code (spec.md §6): 0 on a clean quit
// or EOF, 1 if a turn's change batch violated an engine invariant.
func (c *CLI) Run() int {
	introLines := c.Engine.Intro()
	for _, line := range introLines {
		c.IO.Write(line, ioface.Normal)
	}
	c.logTranscript("", introLines)

	for {
		c.IO.Write("> ", ioface.Normal)
		c.IO.Flush()
		input, ok := c.IO.ReadLine()
		if !ok {
			return 0
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if handled, code, stop := c.handleLocalMeta(input); handled {
			if stop {
				return code
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastInput == "" {
				c.IO.Write("Nothing to repeat.", ioface.Normal)
				continue
			}
			input = c.lastInput
		} else {
			c.lastInput = input
		}

		result, err := c.Engine.Step(input)
		if err != nil {
			c.IO.Write(fmt.Sprintf("Something went wrong: %v", err), ioface.Strong)
			return 1
		}
		for _, line := range result.Output {
			c.IO.Write(line, ioface.Normal)
		}
		c.logTranscript(input, result.Output)

		if result.Meta != "" {
			if stop := c.handleEngineMeta(result.Meta); stop {
				return 0
			}
		}
	}
}

// handleLocalMeta intercepts commands that never reach the engine at all:
// "transcript on|off" (a front-end concern with no game-state equivalent)
// and blank-line handling already done by the caller.
func (c *CLI) handleLocalMeta(input string) (handled bool, code int, stop bool) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return false, 0, false
	}
	if fields[0] == "transcript" {
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		c.setTranscript(arg == "on")
		return true, 0, false
	}
	return false, 0, false
}

// handleEngineMeta reacts to the "__meta__" kind the engine stripped out of
// a builtin verb's output (spec.md §6's save/restore/restart/quit). Returns
// true if the REPL should stop.
func (c *CLI) handleEngineMeta(kind string) bool {
	switch kind {
	case "save":
		c.cmdSave("quicksave")
	case "restore":
		c.cmdRestore("quicksave")
	case "restart":
		c.Engine.Restart()
		c.IO.Write("Restarting.", ioface.Strong)
		for _, line := range c.Engine.Intro() {
			c.IO.Write(line, ioface.Normal)
		}
	case "quit":
		c.IO.Write("Goodbye.", ioface.Strong)
		return true
	}
	return false
}

func (c *CLI) cmdSave(name string) {
	data, err := c.Engine.Save()
	if err != nil {
		c.IO.Write(fmt.Sprintf("Save failed: %v", err), ioface.Strong)
		return
	}
	path := fsio.SaveFileURL(c.GameName, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.IO.Write(fmt.Sprintf("Save failed: %v", err), ioface.Strong)
		return
	}
	c.IO.Write(fmt.Sprintf("Saved to %s.", path), ioface.Strong)
}

func (c *CLI) cmdRestore(name string) {
	path := fsio.SaveFileURL(c.GameName, name)
	data, err := os.ReadFile(path)
	if err != nil {
		c.IO.Write(fmt.Sprintf("Restore failed: %v", err), ioface.Strong)
		return
	}
	if err := c.Engine.Restore(data); err != nil {
		c.IO.Write(fmt.Sprintf("Restore failed: %v", err), ioface.Strong)
		return
	}
	c.IO.Write(fmt.Sprintf("Restored from %s (turn %d).", path, c.Engine.State.Turn), ioface.Strong)
}

func (c *CLI) setTranscript(on bool) {
	if !on {
		if c.transcript != nil {
			_ = c.transcript.Close()
			c.transcript = nil
			c.IO.Write("Transcript stopped.", ioface.Strong)
		}
		return
	}
	path := fsio.TranscriptFileURL(c.GameName, time.Now())
	f, err := os.Create(path)
	if err != nil {
		c.IO.Write(fmt.Sprintf("Could not start transcript: %v", err), ioface.Strong)
		return
	}
	c.transcript = f
	c.IO.Write(fmt.Sprintf("Transcript started: %s.", path), ioface.Strong)
}

func (c *CLI) logTranscript(input string, output []string) {
	if c.transcript == nil {
		return
	}
	if input != "" {
		fmt.Fprintf(c.transcript, "\n> %s\n\n", input)
	}
	for _, line := range output {
		fmt.Fprintln(c.transcript, line)
	}
}
