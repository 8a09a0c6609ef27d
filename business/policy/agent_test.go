//go:build !integration

package policy

import (
	"math"
	"testing"

	"pickMyBook/domain"
)

func TestSelectBonusExploits(t *testing.T) {
	agent := NewAgentWithRand(DefaultAgentConfig(), func() float64 { return 1.0 })

	snap := NewDefaultStore()
	snap.QTable["Adventurous|fantasy"] = QEntry{Value: 0.05, Visits: 3}

	bonus, explored := agent.SelectBonus("Adventurous|fantasy", snap)
	if explored {
		t.Fatal("rand above epsilon must not explore")
	}
	if math.Abs(bonus-0.05) > 1e-9 {
		t.Fatalf("bonus = %v, want 0.05", bonus)
	}
}

func TestSelectBonusClampsToCap(t *testing.T) {
	agent := NewAgentWithRand(DefaultAgentConfig(), func() float64 { return 1.0 })

	snap := NewDefaultStore()
	snap.QTable["k"] = QEntry{Value: 0.9, Visits: 1}
	if bonus, _ := agent.SelectBonus("k", snap); math.Abs(bonus-0.10) > 1e-9 {
		t.Fatalf("positive bonus = %v, want cap 0.10", bonus)
	}

	snap.QTable["k"] = QEntry{Value: -0.9, Visits: 1}
	if bonus, _ := agent.SelectBonus("k", snap); math.Abs(bonus+0.10) > 1e-9 {
		t.Fatalf("negative bonus = %v, want -0.10", bonus)
	}
}

func TestSelectBonusUnseenStateNeutral(t *testing.T) {
	agent := NewAgentWithRand(DefaultAgentConfig(), func() float64 { return 1.0 })

	bonus, explored := agent.SelectBonus("never|seen", NewDefaultStore())
	if bonus != 0 || explored {
		t.Fatalf("unseen state = (%v, %v), want (0, false)", bonus, explored)
	}
}

func TestSelectBonusExplorationRate(t *testing.T) {
	// deterministic sequence sweeping [0,1)
	n := 0
	agent := NewAgentWithRand(DefaultAgentConfig(), func() float64 {
		n++
		return float64(n%100) / 100.0
	})

	snap := NewDefaultStore()
	snap.Epsilon = 0.1
	snap.QTable["k"] = QEntry{Value: 0.05, Visits: 1}

	explorations := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		if _, explored := agent.SelectBonus("k", snap); explored {
			explorations++
		}
	}

	// exactly 10% of the sweep falls below epsilon=0.1
	if explorations != trials/10 {
		t.Fatalf("explorations = %d, want %d", explorations, trials/10)
	}
}

func TestComputeUpdateFirstAccept(t *testing.T) {
	agent := NewAgent(DefaultAgentConfig())

	snap := NewDefaultStore()
	next := agent.ComputeUpdate(snap, domain.FeedbackEvent{
		Mood:     "Adventurous",
		Genre:    "fantasy",
		Accepted: true,
	})

	entry := next.QTable["Adventurous|fantasy"]
	if math.Abs(entry.Value-0.1) > 1e-9 {
		t.Errorf("q value = %v, want 0.1", entry.Value)
	}
	if entry.Visits != 1 {
		t.Errorf("visits = %d, want 1", entry.Visits)
	}
	if next.Stats.TotalAccepts != 1 || next.Stats.TotalRejects != 0 || next.Stats.LearningSteps != 1 {
		t.Errorf("stats = %+v, want accepts=1 rejects=0 steps=1", next.Stats)
	}
}

func TestComputeUpdateDoesNotMutateSnapshot(t *testing.T) {
	agent := NewAgent(DefaultAgentConfig())

	snap := NewDefaultStore()
	snap.QTable["Curious|history"] = QEntry{Value: 0.3, Visits: 2}

	_ = agent.ComputeUpdate(snap, domain.FeedbackEvent{
		Mood:     "Curious",
		Genre:    "history",
		Accepted: false,
	})

	if entry := snap.QTable["Curious|history"]; entry.Value != 0.3 || entry.Visits != 2 {
		t.Fatalf("snapshot mutated: %+v", entry)
	}
	if snap.Stats.LearningSteps != 0 {
		t.Fatalf("snapshot stats mutated: %+v", snap.Stats)
	}
}

func TestComputeUpdateConvergesTowardReward(t *testing.T) {
	agent := NewAgent(DefaultAgentConfig())

	store := NewDefaultStore()
	event := domain.FeedbackEvent{Mood: "Motivated", Genre: "self-help", Accepted: true}

	for i := 0; i < 50; i++ {
		store = agent.ComputeUpdate(store, event)
	}

	value := store.QTable["Motivated|self-help"].Value
	if value <= 0.9 || value > 1.0 {
		t.Fatalf("after 50 accepts value = %v, want in (0.9, 1.0]", value)
	}

	for i := 0; i < 200; i++ {
		event.Accepted = false
		store = agent.ComputeUpdate(store, event)
	}
	value = store.QTable["Motivated|self-help"].Value
	if value >= -0.9 || value < -1.0 {
		t.Fatalf("after 200 rejects value = %v, want in [-1.0, -0.9)", value)
	}
}

func TestComputeUpdateAnnealsEpsilon(t *testing.T) {
	agent := NewAgent(AgentConfig{EpsilonDecay: 0.5, EpsilonFloor: 0.02})

	store := NewDefaultStore()
	store.Epsilon = 0.1
	event := domain.FeedbackEvent{Mood: "Relaxed", Genre: "poetry", Accepted: true}

	store = agent.ComputeUpdate(store, event)
	if math.Abs(store.Epsilon-0.05) > 1e-9 {
		t.Fatalf("epsilon after one step = %v, want 0.05", store.Epsilon)
	}

	for i := 0; i < 20; i++ {
		store = agent.ComputeUpdate(store, event)
	}
	if math.Abs(store.Epsilon-0.02) > 1e-9 {
		t.Fatalf("epsilon = %v, want floor 0.02", store.Epsilon)
	}
}

func TestStateKeyCanonicalization(t *testing.T) {
	cases := []struct {
		mood, genre, want string
	}{
		{"Adventurous", "Fantasy", "Adventurous|fantasy"},
		{" Adventurous ", " FANTASY ", "Adventurous|fantasy"},
		{"Curious", "non-fiction", "Curious|non-fiction"},
	}

	for _, tc := range cases {
		if got := StateKey(tc.mood, tc.genre); got != tc.want {
			t.Errorf("StateKey(%q, %q) = %q, want %q", tc.mood, tc.genre, got, tc.want)
		}
	}
}
