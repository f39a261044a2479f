package progression

import "testing"

func testRules() Rules {
	return Rules{ExperiencePerLevel: 100, HealthPerLevel: 10}
}

func TestThreshold_ScalesByLevel(t *testing.T) {
	r := testRules()
	for level, want := range map[int]int{1: 100, 2: 200, 5: 500} {
		if got := r.Threshold(level); got != want {
			t.Errorf("Threshold(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestGrant_NoLevelUp(t *testing.T) {
	r := testRules()
	level, exp, maxHP, hp, levels := r.Grant(1, 0, 100, 40, 99)
	if level != 1 || exp != 99 || levels != 0 {
		t.Errorf("got level=%d exp=%d levels=%d, want 1/99/0", level, exp, levels)
	}
	if maxHP != 100 || hp != 40 {
		t.Errorf("health must not change without a level-up: max=%d hp=%d", maxHP, hp)
	}
}

func TestGrant_ExactThreshold(t *testing.T) {
	r := testRules()
	level, exp, maxHP, hp, levels := r.Grant(1, 0, 100, 40, 100)
	if level != 2 || exp != 0 || levels != 1 {
		t.Errorf("got level=%d exp=%d levels=%d, want 2/0/1", level, exp, levels)
	}
	if maxHP != 110 || hp != 110 {
		t.Errorf("level-up should raise max health and fully heal: max=%d hp=%d", maxHP, hp)
	}
}

func TestGrant_Cascades(t *testing.T) {
	// Thresholds grow with level: leaving level 1 costs 100, leaving
	// level 2 costs 200. A grant of 250 clears the first but not the
	// second, carrying 150 forward.
	r := testRules()
	level, exp, _, _, levels := r.Grant(1, 0, 100, 100, 250)
	if level != 2 || exp != 150 || levels != 1 {
		t.Errorf("got level=%d exp=%d levels=%d, want 2/150/1", level, exp, levels)
	}

	// A grant spanning thresholds 100 and 200 cascades twice.
	level, exp, maxHP, hp, levels := r.Grant(1, 0, 100, 100, 350)
	if level != 3 || exp != 50 || levels != 2 {
		t.Errorf("got level=%d exp=%d levels=%d, want 3/50/2", level, exp, levels)
	}
	if maxHP != 120 || hp != 120 {
		t.Errorf("two level-ups should add 20 max health: max=%d hp=%d", maxHP, hp)
	}
}

func TestGrant_NeverNegative(t *testing.T) {
	r := testRules()
	level, exp, _, _, levels := r.Grant(1, 10, 100, 100, -50)
	if level != 1 || exp != 10 || levels != 0 {
		t.Errorf("negative grants are ignored: level=%d exp=%d levels=%d", level, exp, levels)
	}
}

func TestGrant_Monotonic(t *testing.T) {
	r := testRules()
	level, exp := 1, 0
	maxHP, hp := 100, 100
	for i := 0; i < 50; i++ {
		newLevel, newExp, newMax, newHP, _ := r.Grant(level, exp, maxHP, hp, 75)
		if newLevel < level {
			t.Fatalf("level decreased: %d -> %d", level, newLevel)
		}
		if newExp < 0 {
			t.Fatalf("experience went negative: %d", newExp)
		}
		level, exp, maxHP, hp = newLevel, newExp, newMax, newHP
	}
}
