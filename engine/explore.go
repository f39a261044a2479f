package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/dungeonmaster/engine/inventory"
	"github.com/nathoo/dungeonmaster/types"
)

// Explore draws one event category from the configured weights and
// materializes it: a combat encounter, an item find, an NPC choice, or
// a plain story beat. Only legal while idle.
func (e *Engine) Explore(ctx context.Context, playerID string) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State != types.StateIdle {
			return fmt.Errorf("explore: %w", ErrStateMismatch)
		}

		w := e.cfg.ExploreWeights
		switch e.RNG.WeightedSelect([]int{w.Combat, w.Item, w.NPC, w.Story}) {
		case 0:
			e.exploreCombat(sess)
		case 1:
			e.exploreItem(sess)
		case 2:
			e.exploreNPC(sess)
		default:
			e.exploreStory(sess)
		}
		return nil
	})
}

// exploreCombat instantiates an enemy from the level-appropriate slice
// of the weighted enemy table and opens a combat session.
func (e *Engine) exploreCombat(sess *session) {
	tmpl := e.pickEnemy(sess.ch.Level)
	sess.snap.Combat = &types.CombatSession{
		PlayerID: sess.ch.PlayerID,
		Enemy: types.Enemy{
			Name:             tmpl.Name,
			Health:           tmpl.MaxHealth,
			MaxHealth:        tmpl.MaxHealth,
			DamageRange:      tmpl.DamageRange,
			ExperienceReward: tmpl.ExperienceReward,
			GoldReward:       tmpl.GoldReward,
		},
		CreatedAt: e.Clock(),
	}
	sess.snap.State = types.StateInCombat
	sess.say("A %s blocks your path!", tmpl.Name)
	if tmpl.Description != "" {
		sess.say("%s", tmpl.Description)
	}
	sess.narrate(types.CategoryCombat, types.OutcomeEncounter, tmpl.Name)
	e.log.Debug("encounter started", "player", sess.ch.PlayerID, "enemy", tmpl.Name)
}

// pickEnemy draws from templates whose MinLevel allows the player's
// level, weighted. Falls back to the whole table when none qualify.
func (e *Engine) pickEnemy(level int) types.EnemyTemplate {
	var eligible []types.EnemyTemplate
	for _, t := range e.tables.Enemies {
		if t.MinLevel <= level {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		eligible = e.tables.Enemies
	}
	weights := make([]int, len(eligible))
	for i, t := range eligible {
		weights[i] = t.Weight
	}
	return eligible[e.RNG.WeightedSelect(weights)]
}

// exploreItem draws loot and adds it to the inventory. A full inventory
// is not an error: the find is described but not kept.
func (e *Engine) exploreItem(sess *session) {
	item := e.tables.Loot[e.RNG.Pick(len(e.tables.Loot))]
	err := e.inv.Add(&sess.ch, item)
	switch {
	case errors.Is(err, inventory.ErrCapacityExceeded):
		sess.say("You find a %s, but your pack is full. You leave it behind.", item.Name)
	case item.Kind == types.ItemCurrency:
		sess.say("You find %s worth %d gold.", item.Name, item.Effect.Gold)
	default:
		sess.say("You find: %s — %s", item.Name, item.Description)
	}
	sess.narrate(types.CategoryItem, types.OutcomeItemFound, item.Name)
}

// exploreNPC presents a choice prompt drawn from the choice table. With
// no choices authored it degrades to a story beat.
func (e *Engine) exploreNPC(sess *session) {
	if len(e.tables.Choices) == 0 {
		e.exploreStory(sess)
		return
	}
	tmpl := e.tables.Choices[e.RNG.Pick(len(e.tables.Choices))]
	prompt := &types.ChoicePrompt{
		PlayerID:      sess.ch.PlayerID,
		Prompt:        tmpl.Prompt,
		Options:       append([]types.ChoiceOption(nil), tmpl.Options...),
		DefaultOption: tmpl.DefaultOption,
		CreatedAt:     e.Clock(),
	}
	sess.snap.Choice = prompt
	sess.snap.State = types.StateChoicePending
	sess.say("%s", prompt.Prompt)
	for i, opt := range prompt.Options {
		sess.say("  %d. %s", i+1, opt.Text)
	}
	sess.narrate(types.CategoryNPC, types.OutcomeNPC, prompt.Prompt)
}

// exploreStory advances the story marker and wanders to a new location.
func (e *Engine) exploreStory(sess *session) {
	sess.ch.StoryProgress++
	sess.ch.Location = e.pickLocation(sess.ch.Location)
	desc := e.tables.Locations[sess.ch.Location]
	if desc == "" {
		desc = "an unknown place"
	}
	sess.say("You press on and reach %s.", desc)
	sess.narrate(types.CategoryStory, types.OutcomeStory, sess.ch.Location)
}

// pickLocation draws a location different from the current one when the
// table allows it.
func (e *Engine) pickLocation(current string) string {
	ids := make([]string, 0, len(e.tables.Locations))
	for id := range e.tables.Locations {
		if id != current {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return current
	}
	// Map order is random; sort for a stable draw under a fixed seed.
	sort.Strings(ids)
	return ids[e.RNG.Pick(len(ids))]
}
