package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/nathoo/dungeonmaster/config"
	"github.com/nathoo/dungeonmaster/types"
)

// fixedDamage pins the player damage range to a single value so combat
// math is exact under test.
func fixedDamage(n int) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.PlayerDamageMin = n
		cfg.PlayerDamageMax = n
		cfg.ExploreWeights = config.Weights{Combat: 100}
	}
}

func TestAttack_FullFightToVictory(t *testing.T) {
	eng, _, _ := newTestEngine(t, fixedDamage(20))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	res, err := eng.Explore(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != types.StateInCombat || res.Combat == nil {
		t.Fatalf("explore = %+v, want combat", res)
	}
	if res.Combat.Enemy.Name != "Goblin Scout" || res.Combat.Enemy.Health != 30 {
		t.Fatalf("enemy = %+v", res.Combat.Enemy)
	}

	// Turn 1: 20 damage leaves the goblin at 10; it hits back for 5.
	res, err = eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatalf("first attack: %v", err)
	}
	if res.State != types.StateInCombat || res.Combat.Enemy.Health != 10 {
		t.Fatalf("after turn 1: %+v", res.Combat)
	}
	if res.Character.Health != 95 {
		t.Errorf("player health = %d, want 95", res.Character.Health)
	}
	if res.Combat.Turn != 1 {
		t.Errorf("turn = %d, want 1", res.Combat.Turn)
	}

	// Turn 2: the goblin dies before it can counter-attack.
	res, err = eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatalf("second attack: %v", err)
	}
	if res.State != types.StateIdle || res.Combat != nil {
		t.Fatalf("after turn 2: %+v", res)
	}
	if res.Character.Health != 95 {
		t.Errorf("player health = %d, a dead enemy must not strike", res.Character.Health)
	}
	if res.Character.Gold != 10 || res.Character.Experience != 20 {
		t.Errorf("rewards = %d gold / %d exp, want 10/20", res.Character.Gold, res.Character.Experience)
	}
	if res.Narrative == nil || res.Narrative.Outcome != types.OutcomeVictory {
		t.Errorf("narrative = %+v, want victory", res.Narrative)
	}
}

func TestAttack_SimultaneousZeroIsPlayerVictory(t *testing.T) {
	eng, store, _ := newTestEngine(t, fixedDamage(20))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	ch, err := store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ch.Health = 1
	snap := types.SessionSnapshot{
		State: types.StateInCombat,
		Combat: &types.CombatSession{
			PlayerID: "p1",
			Enemy: types.Enemy{
				Name: "Goblin Scout", Health: 20, MaxHealth: 30,
				DamageRange: types.DamageRange{Min: 99, Max: 99},
				ExperienceReward: 20, GoldReward: 10,
			},
			CreatedAt: eng.Clock(),
		},
	}
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if res.State != types.StateIdle || res.Character.Health != 1 {
		t.Errorf("killing blow must land before any counter: %+v", res)
	}
	if res.Character.Gold != 10 {
		t.Errorf("gold = %d, want the victory reward", res.Character.Gold)
	}
}

func TestAttack_DefeatPenaltyAndRevive(t *testing.T) {
	eng, store, _ := newTestEngine(t, fixedDamage(1))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	ch, err := store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ch.Health = 5
	ch.Gold = 100
	snap := types.SessionSnapshot{
		State: types.StateInCombat,
		Combat: &types.CombatSession{
			PlayerID: "p1",
			Enemy: types.Enemy{
				Name: "Troll Brute", Health: 80, MaxHealth: 80,
				DamageRange: types.DamageRange{Min: 15, Max: 15},
			},
			CreatedAt: eng.Clock(),
		},
	}
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if res.State != types.StateIdle || res.Combat != nil {
		t.Fatalf("defeat must end combat: %+v", res)
	}
	if res.Character.Gold != 50 {
		t.Errorf("gold = %d, want 50 after the defeat penalty", res.Character.Gold)
	}
	if res.Character.Health != 25 {
		t.Errorf("health = %d, want the revive floor 25", res.Character.Health)
	}
	if res.Character.Experience != 0 {
		t.Errorf("defeat grants no experience, got %d", res.Character.Experience)
	}
	if res.Narrative == nil || res.Narrative.Outcome != types.OutcomeDefeat {
		t.Errorf("narrative = %+v, want defeat", res.Narrative)
	}
}

func TestAttack_ArmorReducesDamage(t *testing.T) {
	eng, store, _ := newTestEngine(t, fixedDamage(1))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	ch, err := store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ch.Armor = &types.Item{Kind: types.ItemArmor, Name: "Leather Armor", Effect: types.ItemEffect{DefenseBonus: 10}}
	snap := types.SessionSnapshot{
		State: types.StateInCombat,
		Combat: &types.CombatSession{
			PlayerID: "p1",
			Enemy: types.Enemy{
				Name: "Skeleton Warrior", Health: 45, MaxHealth: 45,
				DamageRange: types.DamageRange{Min: 12, Max: 12},
			},
			CreatedAt: eng.Clock(),
		},
	}
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Character.Health != 98 {
		t.Errorf("health = %d, want 98 (12 damage - 10 defense)", res.Character.Health)
	}

	// Defense never reduces a hit below 1.
	ch, err = store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	snap.Combat.Enemy.DamageRange = types.DamageRange{Min: 3, Max: 3}
	snap.Combat.Enemy.Health = 45
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}
	res, err = eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Character.Health != 97 {
		t.Errorf("health = %d, want 97 (floored at 1)", res.Character.Health)
	}
}

func TestAttack_LevelUpOnVictory(t *testing.T) {
	eng, store, _ := newTestEngine(t, fixedDamage(50))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	ch, err := store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ch.Experience = 90
	ch.Health = 60
	snap := types.SessionSnapshot{
		State: types.StateInCombat,
		Combat: &types.CombatSession{
			PlayerID: "p1",
			Enemy: types.Enemy{
				Name: "Goblin Scout", Health: 30, MaxHealth: 30,
				DamageRange:      types.DamageRange{Min: 5, Max: 5},
				ExperienceReward: 20, GoldReward: 10,
			},
			CreatedAt: eng.Clock(),
		},
	}
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Attack(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	// 90 + 20 crosses the 100 threshold: level 2, 10 left over.
	if res.Character.Level != 2 || res.Character.Experience != 10 {
		t.Errorf("level/exp = %d/%d, want 2/10", res.Character.Level, res.Character.Experience)
	}
	if res.Character.MaxHealth != 110 || res.Character.Health != 110 {
		t.Errorf("health = %d/%d, want full heal to 110", res.Character.Health, res.Character.MaxHealth)
	}
	if res.LevelsUp != 1 {
		t.Errorf("levels up = %d, want 1", res.LevelsUp)
	}
	if res.Narrative == nil || res.Narrative.Outcome != types.OutcomeLevelUp {
		t.Errorf("narrative = %+v, want level up", res.Narrative)
	}
}

func TestAttack_RequiresCombat(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Attack(ctx, "p1"); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("got %v, want ErrStateMismatch", err)
	}
}

func TestFlee_EndsCombatWithoutRewards(t *testing.T) {
	eng, _, _ := newTestEngine(t, fixedDamage(1))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Explore(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Flee(ctx, "p1")
	if err != nil {
		t.Fatalf("flee: %v", err)
	}
	if res.State != types.StateIdle || res.Combat != nil {
		t.Fatalf("flee must end combat: %+v", res)
	}
	if res.Character.Gold != 0 || res.Character.Experience != 0 {
		t.Errorf("flee grants nothing: %d gold / %d exp", res.Character.Gold, res.Character.Experience)
	}
	if res.Character.Health != 100 {
		t.Errorf("flee costs nothing: health = %d", res.Character.Health)
	}

	if _, err := eng.Flee(ctx, "p1"); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("second flee: got %v, want ErrStateMismatch", err)
	}
}

func TestUse_InCombatGivesEnemyATurn(t *testing.T) {
	eng, store, _ := newTestEngine(t, fixedDamage(1))
	ctx := context.Background()

	if _, err := eng.Start(ctx, "p1", "Aria"); err != nil {
		t.Fatal(err)
	}
	ch, err := store.LoadCharacter(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	ch.Health = 50
	ch.Inventory = append(ch.Inventory, testTables().Loot[0])
	snap := types.SessionSnapshot{
		State: types.StateInCombat,
		Combat: &types.CombatSession{
			PlayerID: "p1",
			Enemy: types.Enemy{
				Name: "Goblin Scout", Health: 30, MaxHealth: 30,
				DamageRange: types.DamageRange{Min: 5, Max: 5},
			},
			CreatedAt: eng.Clock(),
		},
	}
	if err := store.Save(ctx, ch, snap); err != nil {
		t.Fatal(err)
	}

	res, err := eng.Use(ctx, "p1", "Health Potion")
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	// Heal 30 to 80, then the goblin hits for 5.
	if res.Character.Health != 75 {
		t.Errorf("health = %d, want 75", res.Character.Health)
	}
	if res.State != types.StateInCombat || res.Combat.Enemy.Health != 30 {
		t.Errorf("drinking a potion is not an attack: %+v", res.Combat)
	}
}
