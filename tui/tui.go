// Package tui provides a Bubble Tea terminal front end over the same
// engine.Engine and meta-command vocabulary the plain cli package drives,
// styled with lipgloss instead of printed verbatim.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/questcore/engine"
	"github.com/nathoo/questcore/fsio"
	"github.com/nathoo/questcore/ioface"
)

// styledLine stores one rendered-or-pending output line with its styling
// classification, so the whole transcript can be re-wrapped and re-styled
// on a window resize without re-running the turn that produced it.
type styledLine struct {
	text    string
	kind    lineKind
	isInput bool
}

// Model is the Bubble Tea model wired to an engine.Engine. It mirrors
// cli.CLI's REPL semantics (again/g repeat, transcript on|off, and the
// engine's save/restore/restart/quit Result.Meta signals) in a scrolling
// viewport instead of a line-buffered terminal.
type Model struct {
	engine   *engine.Engine
	gameName string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	lines []styledLine

	width       int
	height      int
	ready       bool
	quitting    bool
	engineError bool
	lastInput   string
	transcript  *os.File
}

// New creates a Model wired to the given engine.
func New(eng *engine.Engine, gameName string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		gameName: gameName,
		input:    ti,
		history:  NewHistory(100),
	}
}

// Run starts the Bubble Tea program and returns the process exit code
// (spec.md §6): 0 on a clean quit, 1 if a turn's change batch violated an
// engine invariant.
func Run(eng *engine.Engine, gameName string) int {
	m := New(eng, gameName)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return 1
	}
	if fm, ok := final.(Model); ok {
		return fm.exitCode()
	}
	return 0
}

func (m Model) exitCode() int {
	if m.engineError {
		return 1
	}
	return 0
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.introOutput())
}

type turnOutputMsg struct {
	input string
	lines []ioface.Style
	text  []string
}

func (m Model) introOutput() tea.Cmd {
	return func() tea.Msg {
		lines := m.engine.Intro()
		styles := make([]ioface.Style, len(lines))
		return turnOutputMsg{lines: styles, text: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case turnOutputMsg:
		m = m.appendOutput(msg)
		if m.quitting {
			return m, tea.Quit
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line: local meta-commands
// (transcript), the again/g repeat, then the engine itself.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	fields := strings.Fields(strings.ToLower(input))
	if len(fields) > 0 && fields[0] == "transcript" {
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}
		msg := m.setTranscript(arg == "on")
		m = m.appendOutput(turnOutputMsg{input: input, text: []string{msg}, lines: []ioface.Style{ioface.Strong}})
		return m, nil
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastInput == "" {
			m = m.appendOutput(turnOutputMsg{
				input: input, text: []string{"Nothing to repeat."}, lines: []ioface.Style{ioface.Normal},
			})
			return m, nil
		}
		input = m.lastInput
	} else {
		m.lastInput = input
	}

	result, err := m.engine.Step(input)
	if err != nil {
		m = m.appendOutput(turnOutputMsg{
			input: input,
			text:  []string{fmt.Sprintf("Something went wrong: %v", err)},
			lines: []ioface.Style{ioface.Strong},
		})
		m.engineError = true
		m.quitting = true
		return m, tea.Quit
	}

	styles := make([]ioface.Style, len(result.Output))
	m = m.appendOutput(turnOutputMsg{input: input, text: result.Output, lines: styles})
	m.logTranscript(input, result.Output)

	if result.Meta != "" {
		stop, lines := m.handleEngineMeta(result.Meta)
		if len(lines) > 0 {
			metaStyles := make([]ioface.Style, len(lines))
			for i := range metaStyles {
				metaStyles[i] = ioface.Strong
			}
			m = m.appendOutput(turnOutputMsg{text: lines, lines: metaStyles})
		}
		if stop {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleEngineMeta reacts to a builtin verb's Result.Meta signal, same as
// cli.CLI.handleEngineMeta.
func (m *Model) handleEngineMeta(kind string) (stop bool, lines []string) {
	switch kind {
	case "save":
		return false, []string{m.cmdSave("quicksave")}
	case "restore":
		msg, introLines := m.cmdRestore("quicksave")
		return false, append([]string{msg}, introLines...)
	case "restart":
		m.engine.Restart()
		return false, append([]string{"Restarting."}, m.engine.Intro()...)
	case "quit":
		return true, []string{"Goodbye."}
	}
	return false, nil
}

func (m *Model) cmdSave(name string) string {
	data, err := m.engine.Save()
	if err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	path := fsio.SaveFileURL(m.gameName, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	return fmt.Sprintf("Saved to %s.", path)
}

func (m *Model) cmdRestore(name string) (string, []string) {
	path := fsio.SaveFileURL(m.gameName, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Restore failed: %v", err), nil
	}
	if err := m.engine.Restore(data); err != nil {
		return fmt.Sprintf("Restore failed: %v", err), nil
	}
	return fmt.Sprintf("Restored from %s (turn %d).", path, m.engine.State.Turn), nil
}

func (m *Model) setTranscript(on bool) string {
	if !on {
		if m.transcript != nil {
			_ = m.transcript.Close()
			m.transcript = nil
			return "Transcript stopped."
		}
		return "Transcript was not running."
	}
	path := fsio.TranscriptFileURL(m.gameName, time.Now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Sprintf("Could not start transcript: %v", err)
	}
	m.transcript = f
	return fmt.Sprintf("Transcript started: %s.", path)
}

func (m *Model) logTranscript(input string, output []string) {
	if m.transcript == nil {
		return
	}
	fmt.Fprintf(m.transcript, "\n> %s\n\n", input)
	for _, line := range output {
		fmt.Fprintln(m.transcript, line)
	}
}

// appendOutput adds styled lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg turnOutputMsg) Model {
	if msg.input != "" {
		m.lines = append(m.lines, styledLine{text: "> " + msg.input, isInput: true})
	}

	for i, line := range msg.text {
		kind := styleFor(msg.lines[i])
		m.lines = append(m.lines, styledLine{text: line, kind: classifyLine(kind, line)})
	}

	m.lines = append(m.lines, styledLine{})

	m.refreshViewport()
	return m
}

func styleFor(s ioface.Style) lineKind {
	switch s {
	case ioface.Strong:
		return kindStrong
	case ioface.Emphasis:
		return kindEmphasis
	case ioface.Code:
		return kindCode
	default:
		return kindNormal
	}
}

// refreshViewport re-wraps and re-styles all lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var rendered []string
	for _, l := range m.lines {
		if l.text == "" {
			rendered = append(rendered, "")
			continue
		}
		wrapped := wordWrap(l.text, width)
		if l.isInput {
			rendered = append(rendered, stylePlayerInput.Render(wrapped))
			continue
		}
		rendered = append(rendered, renderLineKind(wrapped, l.kind))
	}

	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within width, breaking at word boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled (those are
// used for input history instead).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
