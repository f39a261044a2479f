// Package cli provides a line-oriented terminal adapter for the engine:
// prompt → command → engine dispatch → rendered result. It drives a
// single local player and resolves narrative text after each command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/dungeonmaster/engine"
	"github.com/nathoo/dungeonmaster/engine/inventory"
	"github.com/nathoo/dungeonmaster/narrative"
	"github.com/nathoo/dungeonmaster/storage"
	"github.com/nathoo/dungeonmaster/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Narrator  narrative.Provider
	PlayerID  string
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine and narrator.
func New(eng *engine.Engine, narrator narrative.Provider) *CLI {
	return &CLI{
		Engine:   eng,
		Narrator: narrator,
		PlayerID: "local",
		In:       os.Stdin,
		Out:      os.Stdout,
	}
}

// Run starts the command loop: prompt → input → dispatch → output.
func (c *CLI) Run(ctx context.Context) error {
	result, err := c.Engine.Start(ctx, c.PlayerID, playerName())
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	c.printResult(ctx, result)

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if input == "quit" || input == "exit" {
			c.printLine("Farewell, adventurer.")
			return nil
		}
		c.handle(ctx, input)
	}
}

// handle dispatches one player command and renders the outcome.
func (c *CLI) handle(ctx context.Context, input string) {
	command, arg := splitCommand(input)

	switch command {
	case "help":
		c.printHelp()
		return
	case "inventory", "inv", "i":
		c.printInventory(ctx)
		return
	case "stats":
		command = "status"
	}

	// Bare numbers select choice options.
	if isNumber(command) {
		arg = command
		command = "choose"
	}

	result, err := c.Engine.Dispatch(ctx, c.PlayerID, command, arg)
	if err != nil {
		c.printError(err)
		return
	}
	c.printResult(ctx, result)
}

func (c *CLI) printResult(ctx context.Context, result types.Result) {
	// Narrative first, mechanical detail after — the way a DM speaks.
	if result.Narrative != nil && c.Narrator != nil {
		if text, err := c.Narrator.Generate(ctx, *result.Narrative); err == nil && text != "" {
			c.printLine(text)
		}
	}
	for _, line := range result.Lines {
		c.printLine(line)
	}
	if result.State == types.StateInCombat && result.Combat != nil {
		c.printLine(fmt.Sprintf("[combat] %s %d/%d HP — attack, use <item>, or flee",
			result.Combat.Enemy.Name, result.Combat.Enemy.Health, result.Combat.Enemy.MaxHealth))
	}
	if result.State == types.StateChoicePending {
		c.printLine("[choice] answer with a number")
	}
}

func (c *CLI) printInventory(ctx context.Context) {
	result, err := c.Engine.Status(ctx, c.PlayerID)
	if err != nil {
		c.printError(err)
		return
	}
	ch := result.Character
	if ch.Weapon != nil {
		c.printLine(fmt.Sprintf("Wielding: %s (+%d damage)", ch.Weapon.Name, ch.Weapon.Effect.DamageBonus))
	}
	if ch.Armor != nil {
		c.printLine(fmt.Sprintf("Wearing: %s (+%d defense)", ch.Armor.Name, ch.Armor.Effect.DefenseBonus))
	}
	if len(ch.Inventory) == 0 {
		c.printLine("Your pack is empty.")
		return
	}
	for _, item := range ch.Inventory {
		c.printLine(fmt.Sprintf("  %s (%s)", item.Name, item.Kind))
	}
}

func (c *CLI) printError(err error) {
	switch {
	case errors.Is(err, engine.ErrStateMismatch):
		c.printLine("You can't do that right now.")
	case errors.Is(err, inventory.ErrItemNotFound):
		c.printLine("You don't have that.")
	case errors.Is(err, inventory.ErrNotUsable):
		c.printLine("That item has no use like that.")
	case errors.Is(err, inventory.ErrCapacityExceeded):
		c.printLine("Your pack is full.")
	case errors.Is(err, engine.ErrInvalidChoice):
		c.printLine("Pick one of the numbered options.")
	case errors.Is(err, storage.ErrNotFound):
		c.printLine("No adventure yet — type 'start' to begin.")
	case errors.Is(err, engine.ErrPersistence):
		c.printLine("The scribes dropped their quills; try that again.")
	default:
		c.printLine(err.Error())
	}
}

func (c *CLI) printHelp() {
	c.printLine("Commands: explore, attack, flee, use <item>, equip <item>,")
	c.printLine("          choose <n>, status, inventory, reset, quit")
}

func (c *CLI) print(s string)     { fmt.Fprint(c.Out, s) }
func (c *CLI) printLine(s string) { fmt.Fprintln(c.Out, s) }

func splitCommand(input string) (command, arg string) {
	input = strings.TrimPrefix(input, "/")
	parts := strings.SplitN(input, " ", 2)
	command = strings.ToLower(parts[0])
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

func playerName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "Adventurer"
}
