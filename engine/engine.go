// Package engine implements the per-player game state machine: command
// dispatch, exploration, combat, progression, and inventory updates,
// serialized per player against the persistence store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nathoo/dungeonmaster/config"
	"github.com/nathoo/dungeonmaster/content"
	"github.com/nathoo/dungeonmaster/engine/inventory"
	"github.com/nathoo/dungeonmaster/engine/progression"
	"github.com/nathoo/dungeonmaster/storage"
	"github.com/nathoo/dungeonmaster/types"
)

var (
	// ErrStateMismatch is returned for commands illegal in the current
	// session state. State is left unchanged.
	ErrStateMismatch = errors.New("command not allowed in current state")
	// ErrPersistence marks load/save failures; the command aborted with
	// no partial mutation visible and may be retried.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidChoice is returned for out-of-range choice numbers.
	ErrInvalidChoice = errors.New("invalid choice number")
)

// Engine drives one game per player id. Safe for concurrent use:
// commands for the same player serialize, different players proceed in
// parallel.
type Engine struct {
	// Clock returns the current time; replaceable in tests for timeout
	// checks.
	Clock func() time.Time
	// RNG is the shared random source for all outcome sampling.
	RNG *RNG

	cfg    config.Config
	tables *content.Tables
	store  storage.Store
	rules  progression.Rules
	inv    inventory.Manager
	locks  *lockTable
	log    *slog.Logger
}

// New creates an engine over the given configuration, content tables,
// and store.
func New(cfg config.Config, tables *content.Tables, store storage.Store) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if tables == nil {
		tables = content.Defaults()
	}
	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Clock:  time.Now,
		RNG:    NewRNG(seed),
		cfg:    cfg,
		tables: tables,
		store:  store,
		rules:  progression.Rules{ExperiencePerLevel: cfg.ExperiencePerLevel, HealthPerLevel: cfg.HealthPerLevel},
		inv:    inventory.Manager{Capacity: cfg.InventoryCapacity},
		locks:  newLockTable(),
		log:    slog.Default(),
	}, nil
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(log *slog.Logger) {
	if log != nil {
		e.log = log
	}
}

// session is the unit of work for one command: the loaded character and
// transient state, mutated in place and persisted once at the end.
type session struct {
	ch     types.Character
	snap   types.SessionSnapshot
	result types.Result
}

func (s *session) say(format string, args ...any) {
	s.result.Lines = append(s.result.Lines, fmt.Sprintf(format, args...))
}

func (s *session) narrate(category types.Category, outcome types.Outcome, entities ...string) {
	s.result.Narrative = &types.NarrativeRequest{
		Category: category,
		Outcome:  outcome,
		Entities: entities,
		Level:    s.ch.Level,
	}
}

// withPlayer runs fn with exclusive access to the player's state:
// load → expire stale sessions → fn → persist. If fn returns an error
// nothing is written and the prior state stays intact.
func (e *Engine) withPlayer(ctx context.Context, playerID string, fn func(*session) error) (types.Result, error) {
	unlock := e.locks.acquire(playerID)
	defer unlock()

	sess, err := e.load(ctx, playerID)
	if err != nil {
		return types.Result{}, err
	}

	e.expire(sess)

	if err := fn(sess); err != nil {
		return types.Result{}, err
	}

	if err := e.persist(ctx, sess); err != nil {
		return types.Result{}, err
	}
	sess.result.State = sess.snap.State
	sess.result.Character = sess.ch
	sess.result.Combat = sess.snap.Combat
	sess.result.Choice = sess.snap.Choice
	return sess.result, nil
}

func (e *Engine) load(ctx context.Context, playerID string) (*session, error) {
	ch, err := e.store.LoadCharacter(ctx, playerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load character: %w", errors.Join(ErrPersistence, err))
	}
	snap, err := e.store.LoadSession(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", errors.Join(ErrPersistence, err))
	}
	if snap.State == "" {
		snap.State = types.StateIdle
	}
	return &session{ch: ch, snap: snap}, nil
}

func (e *Engine) persist(ctx context.Context, sess *session) error {
	e.clampCharacter(&sess.ch)
	sess.ch.UpdatedAt = e.Clock()
	if err := e.store.Save(ctx, sess.ch, sess.snap); err != nil {
		return fmt.Errorf("save state: %w", errors.Join(ErrPersistence, err))
	}
	return nil
}

// clampCharacter enforces the hard invariants before every write.
func (e *Engine) clampCharacter(ch *types.Character) {
	if ch.Health < 0 {
		ch.Health = 0
	}
	if ch.Health > ch.MaxHealth {
		ch.Health = ch.MaxHealth
	}
	if ch.Experience < 0 {
		ch.Experience = 0
	}
	if ch.Gold < 0 {
		ch.Gold = 0
	}
}

// expire lazily resolves combat sessions and choice prompts older than
// the configured timeout, before the triggering command runs. Combat
// expires as a flee (no rewards, no penalty); a choice expires to its
// default option.
func (e *Engine) expire(sess *session) {
	now := e.Clock()

	if c := sess.snap.Combat; c != nil && now.Sub(c.CreatedAt) > e.cfg.SessionTimeout {
		e.log.Debug("combat session expired", "player", sess.ch.PlayerID, "enemy", c.Enemy.Name)
		sess.say("The %s has wandered off while you hesitated.", c.Enemy.Name)
		sess.snap.Combat = nil
		sess.snap.State = types.StateIdle
	}

	if p := sess.snap.Choice; p != nil && now.Sub(p.CreatedAt) > e.cfg.SessionTimeout {
		opt := p.Options[p.DefaultOption]
		e.log.Debug("choice prompt expired", "player", sess.ch.PlayerID, "default", opt.Text)
		sess.say("Time passes and the moment slips away. You %s.", strings.ToLower(opt.Text[:1])+opt.Text[1:])
		e.applyChoice(sess, opt)
		sess.snap.Choice = nil
		sess.snap.State = types.StateIdle
	}
}

// Start creates a character for playerID, or resumes the existing one.
func (e *Engine) Start(ctx context.Context, playerID, name string) (types.Result, error) {
	unlock := e.locks.acquire(playerID)
	defer unlock()

	sess, err := e.load(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		sess = &session{
			ch:   e.newCharacter(playerID, name),
			snap: types.SessionSnapshot{State: types.StateIdle},
		}
		sess.say("A new adventure begins, %s.", sess.ch.Name)
		sess.narrate(types.CategoryStory, types.OutcomeWelcome, sess.ch.Name)
	} else if err != nil {
		return types.Result{}, err
	} else {
		e.expire(sess)
		sess.say("Welcome back, %s.", sess.ch.Name)
		sess.narrate(types.CategoryStory, types.OutcomeStory, sess.ch.Name)
	}

	if err := e.persist(ctx, sess); err != nil {
		return types.Result{}, err
	}
	sess.result.State = sess.snap.State
	sess.result.Character = sess.ch
	sess.result.Combat = sess.snap.Combat
	sess.result.Choice = sess.snap.Choice
	return sess.result, nil
}

func (e *Engine) newCharacter(playerID, name string) types.Character {
	if name == "" {
		name = "Adventurer " + playerID
	}
	now := e.Clock()
	return types.Character{
		PlayerID:  playerID,
		Name:      name,
		Health:    e.cfg.StartingHealth,
		MaxHealth: e.cfg.MaxHealth,
		Level:     e.cfg.StartingLevel,
		Location:  "start",
		Inventory: []types.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status returns the player's current state without mutating it. If the
// read observes an expired session, it takes the slow path through the
// exclusive section so a stale prompt is never presented again.
func (e *Engine) Status(ctx context.Context, playerID string) (types.Result, error) {
	sess, err := e.load(ctx, playerID)
	if err != nil {
		return types.Result{}, err
	}

	now := e.Clock()
	stale := (sess.snap.Combat != nil && now.Sub(sess.snap.Combat.CreatedAt) > e.cfg.SessionTimeout) ||
		(sess.snap.Choice != nil && now.Sub(sess.snap.Choice.CreatedAt) > e.cfg.SessionTimeout)
	if stale {
		return e.withPlayer(ctx, playerID, func(*session) error { return nil })
	}

	return types.Result{
		State:     sess.snap.State,
		Character: sess.ch,
		Combat:    sess.snap.Combat,
		Choice:    sess.snap.Choice,
	}, nil
}

// Choose resolves the pending choice prompt with option n (1-based).
func (e *Engine) Choose(ctx context.Context, playerID string, n int) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State != types.StateChoicePending || sess.snap.Choice == nil {
			return fmt.Errorf("choose: %w", ErrStateMismatch)
		}
		p := sess.snap.Choice
		if n < 1 || n > len(p.Options) {
			return fmt.Errorf("choose %d of %d: %w", n, len(p.Options), ErrInvalidChoice)
		}
		opt := p.Options[n-1]
		sess.say("You %s.", strings.ToLower(opt.Text[:1])+opt.Text[1:])
		e.applyChoice(sess, opt)
		sess.snap.Choice = nil
		sess.snap.State = types.StateIdle
		sess.narrate(types.CategoryStory, types.OutcomeChoice, opt.Text)
		return nil
	})
}

// applyChoice applies one option's effect descriptors.
func (e *Engine) applyChoice(sess *session, opt types.ChoiceOption) {
	ch := &sess.ch
	if opt.StoryProgress > 0 {
		ch.StoryProgress += opt.StoryProgress
	}
	if opt.Gold != 0 {
		ch.Gold += opt.Gold
		if ch.Gold < 0 {
			ch.Gold = 0
		}
	}
	if opt.Healing > 0 {
		healed := opt.Healing
		if ch.Health+healed > ch.MaxHealth {
			healed = ch.MaxHealth - ch.Health
		}
		ch.Health += healed
		if healed > 0 {
			sess.say("You recover %d health.", healed)
		}
	}
	if opt.Experience > 0 {
		e.grantExperience(sess, opt.Experience)
	}
}

// grantExperience applies an experience grant with cascading level-ups.
func (e *Engine) grantExperience(sess *session, amount int) {
	ch := &sess.ch
	level, exp, maxHP, hp, levels := e.rules.Grant(ch.Level, ch.Experience, ch.MaxHealth, ch.Health, amount)
	ch.Level, ch.Experience, ch.MaxHealth, ch.Health = level, exp, maxHP, hp
	sess.say("You gain %d experience.", amount)
	if levels > 0 {
		sess.result.LevelsUp += levels
		sess.say("You reach level %d! Max health is now %d.", ch.Level, ch.MaxHealth)
	}
}

// Use consumes or applies an inventory item by name. Allowed while idle
// and while in combat; in combat the enemy acts afterward.
func (e *Engine) Use(ctx context.Context, playerID, itemName string) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State == types.StateChoicePending {
			return fmt.Errorf("use: %w", ErrStateMismatch)
		}
		res, err := e.inv.Use(&sess.ch, itemName)
		if err != nil {
			return err
		}
		switch {
		case res.Item.Kind == types.ItemPotion && res.Healed == 0:
			sess.say("You drink the %s, but you are already at full health.", res.Item.Name)
		case res.Healed > 0:
			sess.say("You drink the %s and restore %d health (%d/%d).",
				res.Item.Name, res.Healed, sess.ch.Health, sess.ch.MaxHealth)
		case res.Experience > 0:
			sess.say("You read the %s.", res.Item.Name)
			e.grantExperience(sess, res.Experience)
		}
		sess.narrate(types.CategoryItem, types.OutcomeItemUsed, res.Item.Name)

		// Spending the turn on an item gives the enemy its action.
		if sess.snap.State == types.StateInCombat && sess.snap.Combat != nil {
			e.enemyTurn(sess)
		}
		return nil
	})
}

// Equip readies a weapon or armor from the inventory. Only legal while
// idle; swapping mid-fight is not a combat action.
func (e *Engine) Equip(ctx context.Context, playerID, itemName string) (types.Result, error) {
	return e.withPlayer(ctx, playerID, func(sess *session) error {
		if sess.snap.State != types.StateIdle {
			return fmt.Errorf("equip: %w", ErrStateMismatch)
		}
		replaced, err := e.inv.Equip(&sess.ch, itemName)
		if err != nil {
			return err
		}
		if replaced != nil {
			sess.say("You swap the %s for the %s.", replaced.Name, itemName)
		} else {
			sess.say("You equip the %s.", itemName)
		}
		return nil
	})
}

// Reset deletes the character and starts a fresh one with the same name.
func (e *Engine) Reset(ctx context.Context, playerID string) (types.Result, error) {
	unlock := e.locks.acquire(playerID)
	defer unlock()

	name := ""
	if ch, err := e.store.LoadCharacter(ctx, playerID); err == nil {
		name = ch.Name
	}
	if err := e.store.DeleteCharacter(ctx, playerID); err != nil {
		return types.Result{}, fmt.Errorf("reset: %w", errors.Join(ErrPersistence, err))
	}

	sess := &session{
		ch:   e.newCharacter(playerID, name),
		snap: types.SessionSnapshot{State: types.StateIdle},
	}
	sess.say("Your story begins anew.")
	sess.narrate(types.CategoryStory, types.OutcomeWelcome, sess.ch.Name)
	if err := e.persist(ctx, sess); err != nil {
		return types.Result{}, err
	}
	sess.result.State = sess.snap.State
	sess.result.Character = sess.ch
	return sess.result, nil
}

// Dispatch routes a named command from an adapter to the corresponding
// operation. arg carries the item name or choice number where relevant.
func (e *Engine) Dispatch(ctx context.Context, playerID, command, arg string) (types.Result, error) {
	switch command {
	case "start":
		return e.Start(ctx, playerID, arg)
	case "status":
		return e.Status(ctx, playerID)
	case "explore":
		return e.Explore(ctx, playerID)
	case "attack":
		return e.Attack(ctx, playerID)
	case "flee":
		return e.Flee(ctx, playerID)
	case "use":
		return e.Use(ctx, playerID, arg)
	case "equip":
		return e.Equip(ctx, playerID, arg)
	case "choose":
		n := 0
		if _, err := fmt.Sscanf(arg, "%d", &n); err != nil {
			return types.Result{}, fmt.Errorf("choose %q: %w", arg, ErrInvalidChoice)
		}
		return e.Choose(ctx, playerID, n)
	case "reset":
		return e.Reset(ctx, playerID)
	default:
		return types.Result{}, fmt.Errorf("unknown command %q", command)
	}
}
