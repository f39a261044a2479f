package content

import "github.com/nathoo/dungeonmaster/types"

// Defaults returns the built-in content tables, used when no content
// directory is configured.
func Defaults() *Tables {
	return &Tables{
		Enemies: []types.EnemyTemplate{
			{
				Name:             "Goblin Scout",
				Description:      "A small, green-skinned creature with sharp teeth and a rusty dagger.",
				MaxHealth:        30,
				DamageRange:      types.DamageRange{Min: 5, Max: 12},
				ExperienceReward: 20,
				GoldReward:       10,
				MinLevel:         1,
				Weight:           4,
			},
			{
				Name:             "Skeleton Warrior",
				Description:      "An animated skeleton clad in tattered armor, wielding a chipped sword.",
				MaxHealth:        45,
				DamageRange:      types.DamageRange{Min: 8, Max: 15},
				ExperienceReward: 35,
				GoldReward:       18,
				MinLevel:         2,
				Weight:           3,
			},
			{
				Name:             "Dark Elf Assassin",
				Description:      "A lithe figure in dark leather armor, moving with deadly grace.",
				MaxHealth:        60,
				DamageRange:      types.DamageRange{Min: 12, Max: 20},
				ExperienceReward: 50,
				GoldReward:       30,
				MinLevel:         3,
				Weight:           2,
			},
			{
				Name:             "Troll Brute",
				Description:      "A massive, green-skinned creature with regenerative abilities and a club.",
				MaxHealth:        80,
				DamageRange:      types.DamageRange{Min: 15, Max: 25},
				ExperienceReward: 70,
				GoldReward:       45,
				MinLevel:         4,
				Weight:           1,
			},
		},
		Loot: []types.Item{
			{
				Kind:          types.ItemPotion,
				Name:          "Health Potion",
				Description:   "A red liquid that restores health when consumed.",
				Effect:        types.ItemEffect{Healing: 30},
				UsesRemaining: 1,
			},
			{
				Kind:        types.ItemWeapon,
				Name:        "Iron Sword",
				Description: "A well-crafted blade that increases your combat effectiveness.",
				Effect:      types.ItemEffect{DamageBonus: 15},
			},
			{
				Kind:        types.ItemArmor,
				Name:        "Leather Armor",
				Description: "Light armor that provides some protection in battle.",
				Effect:      types.ItemEffect{DefenseBonus: 10},
			},
			{
				Kind:          types.ItemScroll,
				Name:          "Magic Scroll",
				Description:   "An ancient scroll that grants knowledge and experience when read.",
				Effect:        types.ItemEffect{Experience: 50},
				UsesRemaining: 1,
			},
			{
				Kind:        types.ItemCurrency,
				Name:        "Gold Coins",
				Description: "Shiny coins that can be used for trading and purchases.",
				Effect:      types.ItemEffect{Gold: 25},
			},
		},
		Choices: []ChoiceTemplate{
			{
				Prompt:        "The path ahead splits. Which way do you go?",
				DefaultOption: 0,
				Options: []types.ChoiceOption{
					{Text: "Take the peaceful path through the forest", StoryProgress: 1},
					{Text: "Pry open the hidden treasure chest", StoryProgress: 1, Gold: 15},
					{Text: "Step through the shimmering portal", StoryProgress: 2},
					{Text: "Share a meal with a friendly traveler", StoryProgress: 1, Healing: 5},
				},
			},
			{
				Prompt:        "A hooded stranger beckons from the shadows.",
				DefaultOption: 0,
				Options: []types.ChoiceOption{
					{Text: "Approach and listen", StoryProgress: 1, Experience: 10},
					{Text: "Keep your distance and move on", StoryProgress: 1},
				},
			},
			{
				Prompt:        "You find a forgotten shrine covered in moss.",
				DefaultOption: 1,
				Options: []types.ChoiceOption{
					{Text: "Leave an offering of gold", StoryProgress: 2, Gold: -10, Healing: 10},
					{Text: "Bow your head and continue", StoryProgress: 1},
					{Text: "Study the carvings", StoryProgress: 1, Experience: 15},
				},
			},
		},
		Locations: map[string]string{
			"start":   "the entrance to the adventure",
			"forest":  "a dense, mysterious forest",
			"ruins":   "ancient stone ruins",
			"village": "a peaceful village",
			"cave":    "a dark cave system",
			"temple":  "an abandoned temple",
		},
	}
}
