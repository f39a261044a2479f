package engine

import (
	"context"
	"fmt"

	"github.com/nathoo/dungeonmaster/types"
)

// Attack resolves one combat turn: the player strikes first, then the
// enemy counter-attacks if it survives. Simultaneous zero health is
// therefore a player victory — the enemy never acts once it is down.
func (e *Engine) Attack(ctx context.Context, playerID string) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State != types.StateInCombat || sess.snap.Combat == nil {
			return fmt.Errorf("attack: %w", ErrStateMismatch)
		}
		combat := sess.snap.Combat
		enemy := &combat.Enemy

		dmgRange := e.cfg.PlayerDamage(sess.ch)
		damage := e.RNG.Range(dmgRange.Min, dmgRange.Max)
		enemy.Health -= damage
		if enemy.Health < 0 {
			enemy.Health = 0
		}
		sess.say("You strike the %s for %d damage (%d/%d HP left).",
			enemy.Name, damage, enemy.Health, enemy.MaxHealth)

		if enemy.Health == 0 {
			e.victory(sess)
			return nil
		}

		sess.narrate(types.CategoryCombat, types.OutcomeAttack, enemy.Name)
		e.enemyTurn(sess)
		combat.Turn++
		return nil
	})
}

// enemyTurn applies the enemy's counter-attack and resolves a player
// defeat if health reaches zero. Callers must hold an active combat.
func (e *Engine) enemyTurn(sess *session) {
	combat := sess.snap.Combat
	enemy := combat.Enemy

	damage := e.RNG.Range(enemy.DamageRange.Min, enemy.DamageRange.Max)
	if sess.ch.Armor != nil {
		damage -= sess.ch.Armor.Effect.DefenseBonus
		if damage < 1 {
			damage = 1
		}
	}
	sess.ch.Health -= damage
	if sess.ch.Health < 0 {
		sess.ch.Health = 0
	}
	sess.say("The %s hits you for %d damage (%d/%d HP left).",
		enemy.Name, damage, sess.ch.Health, sess.ch.MaxHealth)

	if sess.ch.Health == 0 {
		e.defeat(sess)
	}
}

// victory ends combat in the player's favor: experience and gold are
// awarded, level-ups resolve, and the encounter is discarded.
func (e *Engine) victory(sess *session) {
	enemy := sess.snap.Combat.Enemy
	sess.say("The %s falls!", enemy.Name)

	if enemy.GoldReward > 0 {
		sess.ch.Gold += enemy.GoldReward
		sess.say("You loot %d gold.", enemy.GoldReward)
	}
	e.grantExperience(sess, enemy.ExperienceReward)

	sess.snap.Combat = nil
	sess.snap.State = types.StateIdle

	outcome := types.OutcomeVictory
	if sess.result.LevelsUp > 0 {
		outcome = types.OutcomeLevelUp
	}
	sess.narrate(types.CategoryCombat, outcome, enemy.Name)
	e.log.Debug("combat victory", "player", sess.ch.PlayerID, "enemy", enemy.Name, "level", sess.ch.Level)
}

// defeat ends combat against the player: a share of gold is lost and
// health is restored to the revive floor so the character stays
// playable.
func (e *Engine) defeat(sess *session) {
	enemy := sess.snap.Combat.Enemy

	penalty := sess.ch.Gold * e.cfg.DefeatGoldPenaltyPct / 100
	if penalty > 0 {
		sess.ch.Gold -= penalty
		sess.say("You lose %d gold as you stumble away.", penalty)
	}

	revive := sess.ch.MaxHealth / e.cfg.ReviveDivisor
	if revive < 1 {
		revive = 1
	}
	sess.ch.Health = revive
	sess.say("You are defeated by the %s, but you wake later with %d health.",
		enemy.Name, revive)

	sess.snap.Combat = nil
	sess.snap.State = types.StateIdle
	sess.narrate(types.CategoryCombat, types.OutcomeDefeat, enemy.Name)
	e.log.Debug("combat defeat", "player", sess.ch.PlayerID, "enemy", enemy.Name)
}

// Flee abandons the encounter: no rewards, no penalty.
func (e *Engine) Flee(ctx context.Context, playerID string) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State != types.StateInCombat || sess.snap.Combat == nil {
			return fmt.Errorf("flee: %w", ErrStateMismatch)
		}
		enemy := sess.snap.Combat.Enemy
		sess.say("You slip away from the %s.", enemy.Name)
		sess.snap.Combat = nil
		sess.snap.State = types.StateIdle
		sess.narrate(types.CategoryCombat, types.OutcomeFlee, enemy.Name)
		return nil
	})
}
