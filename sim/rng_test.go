package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemGate(1)).Float64()
		v2 := rng2.ForSubsystem(SubsystemGate(1)).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing depth readings doesn't shift any gate's success draws
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemDepth).Float64()
	}
	aGateFirst := rngA.ForSubsystem(SubsystemGate(3)).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemGate(3)).Float64()

	if aGateFirst != expectedFirst {
		t.Errorf("gate_3 first value = %v, want %v (isolation broken)", aGateFirst, expectedFirst)
	}
}

func TestPartitionedRNG_DepthUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	depthRNG := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemDepth)
	directRNG := rand.New(rand.NewSource(seed))

	for i := 0; i < 10; i++ {
		got := depthRNG.Float64()
		want := directRNG.Float64()
		if got != want {
			t.Errorf("Value %d: depth RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	if rng.ForSubsystem(SubsystemDepth) != rng.ForSubsystem(SubsystemDepth) {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	if rng.Key() != SimulationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_LazyInitialization(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	if len(rng.subsystems) != 0 {
		t.Errorf("New PartitionedRNG has %d subsystems, want 0", len(rng.subsystems))
	}

	rng.ForSubsystem(SubsystemDepth)

	if len(rng.subsystems) != 1 {
		t.Errorf("After one ForSubsystem call, have %d subsystems, want 1", len(rng.subsystems))
	}
}

// === fnv1a64 Tests ===

func TestFnv1a64_Collision(t *testing.T) {
	// Different subsystem names should produce different hashes (spot check)
	names := []string{SubsystemDepth, SubsystemGate(1), SubsystemGate(2), SubsystemGate(19), ""}

	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemGate(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "gate_1"},
		{19, "gate_19"},
	}

	for _, tt := range tests {
		if got := SubsystemGate(tt.id); got != tt.want {
			t.Errorf("SubsystemGate(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
