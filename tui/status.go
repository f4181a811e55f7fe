package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questcore/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// current room, its exits, carried inventory, and turn count.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	loc := s.Locations[s.Player.Location]

	dirs := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		dirs = append(dirs, string(dir))
	}
	sort.Strings(dirs)
	exitStr := strings.Join(dirs, ",")

	left := fmt.Sprintf(" %s | Exits: %s", loc.Name, exitStr)
	right := fmt.Sprintf("T:%d ", s.Turn)

	inv := state.Inventory(s)
	if len(inv) > 0 {
		names := make([]string, 0, len(inv))
		for _, id := range inv {
			names = append(names, state.ItemName(s, id))
		}
		invStr := strings.Join(names, ", ")
		candidate := fmt.Sprintf("Inv: %s | T:%d ", invStr, s.Turn)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", len(inv), s.Turn)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
