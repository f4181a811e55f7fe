package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleStrong = lipgloss.NewStyle().
			Bold(true)

	styleEmphasis = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("228"))

	styleCode = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// lineKind identifies the type of an output line for styling, derived from
// the ioface.Style tag the engine/cli layer attached to it plus a couple of
// textual heuristics the teacher's TUI used for room-description substrings.
type lineKind int

const (
	kindNormal lineKind = iota
	kindStrong
	kindEmphasis
	kindCode
	kindYouSee
	kindExits
)

// classifyLine refines a Normal lineKind using the rendered text, for two
// conventional prefixes ("You see:", "Exits:"). narrate.go emits neither
// (it lists items as "You can see … here." and prints no exits line), so
// only lines from other sources, such as blueprint text, are picked out.
func classifyLine(kind lineKind, line string) lineKind {
	if kind != kindNormal {
		return kind
	}
	switch {
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	default:
		return kind
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindStrong:
		return styleStrong.Render(line)
	case kindEmphasis:
		return styleEmphasis.Render(line)
	case kindCode:
		return styleCode.Render(line)
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleSystem.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}

// styledYouSee renders "You see: item1, item2." with the item list bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleRoomDesc.Render(line)
	}
	return styleRoomDesc.Render(prefix) + styleStrong.Render(line[len(prefix):])
}

// styledSystemMsg renders a local meta-command acknowledgment in gray brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
