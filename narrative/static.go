package narrative

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/nathoo/dungeonmaster/types"
)

// Static serves canned templates indexed by outcome. The %s slots are
// filled from the request's entity names in order.
type Static struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStatic creates the static template provider.
func NewStatic() *Static {
	return &Static{rng: rand.New(rand.NewSource(1))}
}

var staticTemplates = map[types.Outcome][]string{
	types.OutcomeWelcome: {
		"Welcome, brave %s! You stand at the entrance of the Darkwood Forest, where ancient trees whisper of forgotten treasures.",
		"Greetings, %s! The gates of the Crystal Caverns glitter before you, promising both glory and peril.",
		"A new hero arrives. %s, the Whispering Plains carry tales of ancient kingdoms — your destiny awaits.",
	},
	types.OutcomeStory: {
		"You venture deeper into the unknown. The path ahead splits, each branch promising different rewards.",
		"Strange markings cover the ancient stones here. Something significant lies ahead.",
		"The air grows thick with anticipation as you press forward.",
	},
	types.OutcomeEncounter: {
		"A shadow moves in the darkness! A %s emerges, eyes gleaming with malevolent intent.",
		"Metal scrapes against stone. A %s steps into view, weapon drawn.",
		"The ground trembles — a %s approaches. You must act quickly!",
	},
	types.OutcomeAttack: {
		"Your blow lands true, and the %s staggers.",
		"Steel flashes — the %s reels from your strike.",
	},
	types.OutcomeVictory: {
		"The %s lies defeated. The spoils of battle are yours.",
		"With a final blow the %s collapses. Victory!",
	},
	types.OutcomeLevelUp: {
		"The %s falls, and with it something inside you awakens. You feel stronger.",
	},
	types.OutcomeDefeat: {
		"Darkness takes you as the %s stands over your body. You wake later, battered but alive.",
		"The %s proves too strong. You crawl away to fight another day.",
	},
	types.OutcomeFlee: {
		"Discretion wins the day — you leave the %s behind.",
	},
	types.OutcomeItemFound: {
		"Half-buried in the earth you discover a %s. It seems to pulse with ancient power.",
		"Among scattered debris, a %s catches your eye.",
	},
	types.OutcomeItemUsed: {
		"The %s does its work.",
	},
	types.OutcomeNPC: {
		"A hooded figure approaches, face hidden in shadow. They seem to have something to share.",
		"A wandering merchant hails you, cart piled with strange wares.",
	},
	types.OutcomeChoice: {
		"Your decision shapes the road ahead.",
	},
	types.OutcomeTimeout: {
		"Time slips past, and the moment is gone.",
	},
}

// Generate implements Provider. It never fails.
func (s *Static) Generate(_ context.Context, req types.NarrativeRequest) (string, error) {
	templates, ok := staticTemplates[req.Outcome]
	if !ok {
		templates = staticTemplates[types.OutcomeStory]
	}

	s.mu.Lock()
	tmpl := templates[s.rng.Intn(len(templates))]
	s.mu.Unlock()

	slots := strings.Count(tmpl, "%s")
	if slots == 0 {
		return tmpl, nil
	}
	args := make([]string, slots)
	for i := range args {
		if i < len(req.Entities) {
			args[i] = req.Entities[i]
		} else {
			args[i] = "adventurer"
		}
	}
	out := tmpl
	for _, a := range args {
		out = strings.Replace(out, "%s", a, 1)
	}
	return out, nil
}
