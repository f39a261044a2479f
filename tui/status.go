package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/dungeonmaster/types"
)

// renderStatusBar produces a full-width inverted status line showing
// health, level, experience progress, gold, and the session state.
func (m Model) renderStatusBar() string {
	ch := m.character

	left := fmt.Sprintf(" %s | HP %d/%d | Lv %d (%d xp) | %dg",
		ch.Name, ch.Health, ch.MaxHealth, ch.Level, ch.Experience, ch.Gold)

	right := " "
	switch m.state {
	case types.StateInCombat:
		if m.combat != nil {
			right = fmt.Sprintf("FIGHTING %s %d/%d ",
				m.combat.Enemy.Name, m.combat.Enemy.Health, m.combat.Enemy.MaxHealth)
		} else {
			right = "FIGHTING "
		}
	case types.StateChoicePending:
		right = "CHOOSE 1-" + fmt.Sprint(optionCount(m.choice)) + " "
	default:
		right = locationName(ch.Location) + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

func optionCount(p *types.ChoicePrompt) int {
	if p == nil {
		return 0
	}
	return len(p.Options)
}

// locationName derives a display name from a location ID.
// "crystal_caverns" -> "Crystal Caverns".
func locationName(id string) string {
	if id == "" {
		return "Unknown"
	}
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
