package policy

import (
	"math"
	"math/rand"

	"pickMyBook/domain"
)

// AgentConfig carries the learning tunables the deployment can override.
type AgentConfig struct {
	// BonusCap bounds the learned bonus so it nudges ranking without
	// dominating the content score.
	BonusCap float64

	// RewardAccept / RewardReject are the binary rewards for feedback.
	RewardAccept float64
	RewardReject float64

	// EpsilonDecay multiplies epsilon after every committed update;
	// EpsilonFloor keeps permanent residual exploration.
	EpsilonDecay float64
	EpsilonFloor float64
}

const (
	defaultBonusCap     = 0.10
	defaultRewardAccept = 1.0
	defaultRewardReject = -1.0
	defaultEpsilonDecay = 0.999
	defaultEpsilonFloor = 0.01
)

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		BonusCap:     defaultBonusCap,
		RewardAccept: defaultRewardAccept,
		RewardReject: defaultRewardReject,
		EpsilonDecay: defaultEpsilonDecay,
		EpsilonFloor: defaultEpsilonFloor,
	}
}

// Agent chooses per request whether the learned bonus is applied and turns
// feedback events into policy updates. It holds no mutable state of its own;
// every decision reads a snapshot and every update is a pure function of
// snapshot + event, so many concurrent handlers can share one Agent.
type Agent struct {
	cfg       AgentConfig
	randFloat func() float64
}

func NewAgent(cfg AgentConfig) *Agent {
	if cfg.BonusCap <= 0 {
		cfg.BonusCap = defaultBonusCap
	}
	if cfg.RewardAccept == 0 && cfg.RewardReject == 0 {
		cfg.RewardAccept = defaultRewardAccept
		cfg.RewardReject = defaultRewardReject
	}
	if cfg.EpsilonDecay <= 0 || cfg.EpsilonDecay > 1 {
		cfg.EpsilonDecay = defaultEpsilonDecay
	}
	if cfg.EpsilonFloor < 0 {
		cfg.EpsilonFloor = defaultEpsilonFloor
	}
	return &Agent{
		cfg:       cfg,
		randFloat: rand.Float64,
	}
}

// NewAgentWithRand injects the random source, used by tests that need
// deterministic exploration decisions.
func NewAgentWithRand(cfg AgentConfig, randFloat func() float64) *Agent {
	a := NewAgent(cfg)
	a.randFloat = randFloat
	return a
}

func (a *Agent) BonusCap() float64 {
	return a.cfg.BonusCap
}

// SelectBonus runs the epsilon-greedy action choice for one candidate:
// with probability epsilon ignore the table (explore, zero bonus), otherwise
// exploit the learned value scaled into [-cap, +cap]. An unseen state keeps a
// neutral prior and contributes nothing either way.
func (a *Agent) SelectBonus(stateKey string, snap PolicyStore) (bonus float64, explored bool) {
	if a.randFloat() < snap.Epsilon {
		return 0, true
	}

	entry, ok := snap.QTable[stateKey]
	if !ok {
		return 0, false
	}

	return clampBonus(entry.Value, a.cfg.BonusCap), false
}

// ComputeUpdate applies one feedback event to a snapshot and returns the next
// store value. Pure: the input snapshot is not mutated, so the reconciler can
// recompute from a fresh snapshot on every conditional-write retry.
//
// The update is an incremental mean toward the binary reward:
//
//	v <- v + lr * (r - v)
//
// There is no next-state term; a recommendation is a one-shot decision, not a
// step in an episode.
func (a *Agent) ComputeUpdate(snap PolicyStore, event domain.FeedbackEvent) PolicyStore {
	next := snap.Clone()
	next.Clamp()

	reward := a.cfg.RewardReject
	if event.Accepted {
		reward = a.cfg.RewardAccept
	}

	key := StateKey(event.Mood, event.Genre)
	entry := next.QTable[key] // zero value = neutral prior for unseen states
	entry.Value += next.LearningRate * (reward - entry.Value)
	entry.Visits++
	next.QTable[key] = entry

	if event.Accepted {
		next.Stats.TotalAccepts++
	} else {
		next.Stats.TotalRejects++
	}
	next.Stats.LearningSteps++

	// Anneal exploration toward the floor. Monotonic: decay <= 1 and the
	// floor bounds it below.
	next.Epsilon = math.Max(next.Epsilon*a.cfg.EpsilonDecay, a.cfg.EpsilonFloor)

	next.Clamp()
	return next
}

func clampBonus(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
