package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/dungeonmaster/engine"
	"github.com/nathoo/dungeonmaster/engine/inventory"
	"github.com/nathoo/dungeonmaster/narrative"
	"github.com/nathoo/dungeonmaster/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the DungeonMaster TUI.
type Model struct {
	engine   *engine.Engine
	narrator narrative.Provider
	playerID string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	// Last snapshot from the engine, for the status bar.
	character types.Character
	state     types.SessionState
	combat    *types.CombatSession
	choice    *types.ChoicePrompt

	width    int
	height   int
	ready    bool
	quitting bool
}

// gameOutputMsg carries one command's rendered output into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for the opening text)
	lines    []string // output lines
	isSystem bool
	result   *types.Result
}

// New creates a TUI model wired to the given engine and narrator.
func New(eng *engine.Engine, narrator narrative.Provider, playerID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		narrator: narrator,
		playerID: playerID,
		input:    ti,
		history:  NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, narrator narrative.Provider, playerID string) error {
	m := New(eng, narrator, playerID)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the session and produces the opening text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.runCommand("", "start", ""))
}

// runCommand dispatches one engine command off the Update loop, resolves
// narrative text for the result, and delivers everything as one message.
func (m Model) runCommand(echo, command, arg string) tea.Cmd {
	eng, narrator, playerID := m.engine, m.narrator, m.playerID
	return func() tea.Msg {
		ctx := context.Background()
		result, err := eng.Dispatch(ctx, playerID, command, arg)
		if err != nil {
			return gameOutputMsg{input: echo, lines: []string{errorText(err)}, isSystem: true}
		}

		var lines []string
		if result.Narrative != nil && narrator != nil {
			if text, nerr := narrator.Generate(ctx, *result.Narrative); nerr == nil && text != "" {
				lines = append(lines, text)
			}
		}
		lines = append(lines, result.Lines...)
		return gameOutputMsg{input: echo, lines: lines, result: &result}
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

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	switch lower {
	case "quit", "exit", "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "help", "/help":
		m = m.appendOutput(gameOutputMsg{input: input, lines: helpText(), isSystem: true})
		return m, nil
	}

	command, arg := splitCommand(lower)
	if isNumber(command) {
		arg = command
		command = "choose"
	}
	return m, m.runCommand(input, command, arg)
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.result != nil {
		m.character = msg.result.Character
		m.state = msg.result.State
		m.combat = msg.result.Combat
		m.choice = msg.result.Choice
	}

	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}

	for i, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
			// The narrative line leads each result; style it as such.
			if i == 0 && msg.result != nil && msg.result.Narrative != nil {
				rl.kind = kindNarrative
			}
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap breaks text into lines no wider than width, splitting only
// between words. A single word longer than width keeps its own line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			b.WriteByte('\n')
			lineLen = len(word)
		default:
			b.WriteByte(' ')
			lineLen += 1 + len(word)
		}
		b.WriteString(word)
	}
	return b.String()
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

func errorText(err error) string {
	switch {
	case errors.Is(err, engine.ErrStateMismatch):
		return "You can't do that right now."
	case errors.Is(err, inventory.ErrItemNotFound):
		return "You don't have that."
	case errors.Is(err, inventory.ErrNotUsable):
		return "That item has no use like that."
	case errors.Is(err, inventory.ErrCapacityExceeded):
		return "Your pack is full."
	case errors.Is(err, engine.ErrInvalidChoice):
		return "Pick one of the numbered options."
	case errors.Is(err, engine.ErrPersistence):
		return "The scribes dropped their quills; try that again."
	default:
		return err.Error()
	}
}

func helpText() []string {
	return []string{
		"explore          — Venture forth (combat, loot, or story)",
		"attack           — Strike the enemy you are fighting",
		"use <item>       — Drink a potion or read a scroll",
		"equip <item>     — Ready a weapon or armor",
		"flee             — Abandon the fight",
		"<number>         — Answer a pending choice",
		"status           — Your character sheet",
		"reset            — Abandon this character and start over",
		"quit             — Leave the game",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func splitCommand(input string) (command, arg string) {
	input = strings.TrimPrefix(input, "/")
	parts := strings.SplitN(input, " ", 2)
	command = parts[0]
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return command, arg
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
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
