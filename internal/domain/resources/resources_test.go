package resources

import "testing"

func TestApplySaturates(t *testing.T) {
	levels := Levels{Oxygen: 0, Energy: MaxLevel, Life: 100}

	got := Apply(levels, Deltas{Oxygen: -5, Energy: 5, Life: -30})
	want := Levels{Oxygen: 0, Energy: MaxLevel, Life: 70}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	// Deltas wider than the level range still clamp.
	got = Apply(Levels{Oxygen: 10, Energy: 10, Life: 10}, Deltas{Oxygen: -1000, Energy: 1000, Life: 0})
	want = Levels{Oxygen: 0, Energy: MaxLevel, Life: 10}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSaturatingAddSub(t *testing.T) {
	a := Levels{Oxygen: 250, Energy: 3, Life: 0}
	b := Levels{Oxygen: 10, Energy: 5, Life: 1}

	if got := SaturatingAdd(a, b); got != (Levels{Oxygen: MaxLevel, Energy: 8, Life: 1}) {
		t.Errorf("Unexpected saturating sum %+v", got)
	}
	if got := SaturatingSub(a, b); got != (Levels{Oxygen: 240, Energy: 0, Life: 0}) {
		t.Errorf("Unexpected saturating difference %+v", got)
	}
}

func TestDeltaArithmeticIsComponentWise(t *testing.T) {
	rate := Deltas{Oxygen: -1, Energy: -1, Life: 0}
	machine := Deltas{Oxygen: 3, Energy: -1, Life: 0}

	up := rate.Add(machine)
	if up != (Deltas{Oxygen: 2, Energy: -2, Life: 0}) {
		t.Errorf("Unexpected sum %+v", up)
	}
	if back := up.Sub(machine); back != rate {
		t.Errorf("Expected subtracting to restore %+v, got %+v", rate, back)
	}
	if v := up.Values(); v != [3]int16{2, -2, 0} {
		t.Errorf("Expected values in display order, got %v", v)
	}
	if up.Get(KindEnergy) != -2 {
		t.Errorf("Expected energy -2, got %d", up.Get(KindEnergy))
	}
}

func TestZeroCrossing(t *testing.T) {
	cases := []struct {
		levels Levels
		reason DeathReason
		ok     bool
	}{
		{Levels{Oxygen: 0, Energy: 0, Life: 9}, ReasonBoth, true},
		{Levels{Oxygen: 0, Energy: 4, Life: 9}, ReasonOxygen, true},
		{Levels{Oxygen: 4, Energy: 0, Life: 9}, ReasonEnergy, true},
		{Levels{Oxygen: 4, Energy: 4, Life: 0}, "", false},
	}
	for _, c := range cases {
		reason, ok := ZeroCrossing(c.levels)
		if reason != c.reason || ok != c.ok {
			t.Errorf("ZeroCrossing(%+v): expected (%q, %v), got (%q, %v)", c.levels, c.reason, c.ok, reason, ok)
		}
	}
}

func TestMergeReasons(t *testing.T) {
	if got := ReasonOxygen.Merge(ReasonEnergy); got != ReasonBoth {
		t.Errorf("Expected oxygen then energy to merge to BOTH, got %s", got)
	}
	if got := DeathReason("").Merge(ReasonEnergy); got != ReasonEnergy {
		t.Errorf("Expected empty to take the new reason, got %s", got)
	}
	if got := ReasonOxygen.Merge(ReasonOxygen); got != ReasonOxygen {
		t.Errorf("Expected repeated reason to stay, got %s", got)
	}
	if got := ReasonLife.Merge(ReasonOxygen); got != ReasonOxygen {
		t.Errorf("Expected LIFE to yield to a concrete reason, got %s", got)
	}
}
