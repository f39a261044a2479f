// Package progression implements the experience and leveling rules.
// All functions are pure: they take the current stats and return the
// new ones without touching any shared state.
package progression

// Rules holds the progression constants, injected from configuration.
type Rules struct {
	ExperiencePerLevel int
	HealthPerLevel     int
}

// Threshold returns the experience required to advance from level.
func (r Rules) Threshold(level int) int {
	return level * r.ExperiencePerLevel
}

// Grant applies an experience grant and resolves level-ups. Level-ups
// cascade: a large grant can advance several levels, each consuming the
// exact threshold for the level it leaves. Every level gained adds
// HealthPerLevel to max health and fully heals the character.
//
// Returns the new level, remaining experience, new max health, new
// health, and the number of levels gained.
func (r Rules) Grant(level, experience, maxHealth, health, amount int) (newLevel, newExperience, newMaxHealth, newHealth, levels int) {
	if amount < 0 {
		amount = 0
	}
	newLevel = level
	newExperience = experience + amount
	newMaxHealth = maxHealth
	newHealth = health

	for newExperience >= r.Threshold(newLevel) {
		newExperience -= r.Threshold(newLevel)
		newLevel++
		newMaxHealth += r.HealthPerLevel
		newHealth = newMaxHealth
		levels++
	}
	return newLevel, newExperience, newMaxHealth, newHealth, levels
}
