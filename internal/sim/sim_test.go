package sim

import (
	"errors"
	"testing"

	"polysome/internal/polymer"
	"polysome/internal/tracker"
)

func newGenome(t *testing.T, s *Simulation) *polymer.Genome {
	t.Helper()
	g := polymer.NewGenome("plasmid", 200, s.Rng(), s.Tracker())
	if err := g.AddPromoter("phi", 10, 19, map[string]float64{"rnapol": 1.0}); err != nil {
		t.Fatalf("add promoter: %v", err)
	}
	if err := g.AddTerminator("t1", 180, 185, map[string]float64{"rnapol": 1.0}); err != nil {
		t.Fatalf("add terminator: %v", err)
	}
	// RBS starts share the gene start's frame so bound ribosomes terminate
	// at the gene's stop codon.
	if err := g.AddGene("proteinA", 30, 92, 21, 28, 1.0); err != nil {
		t.Fatalf("add gene: %v", err)
	}
	if err := g.AddGene("proteinB", 100, 162, 94, 98, 1.0); err != nil {
		t.Fatalf("add gene: %v", err)
	}
	g.Initialize()
	return g
}

func TestStepWithNoReactions(t *testing.T) {
	trk := tracker.New()
	s := New(1, 0, trk)
	if err := s.Step(); !errors.Is(err, ErrNoReactions) {
		t.Fatalf("expected ErrNoReactions, got %v", err)
	}
}

func TestBindReactionPropensity(t *testing.T) {
	trk := tracker.New()
	s := New(1, 0, trk)
	g := newGenome(t, s)

	spec := PolymeraseSpec{Name: "rnapol", Footprint: 10, Speed: 30}
	r := NewBindReaction(0.5, 0, spec, "phi", s.Rng(), trk)
	r.AddTarget(g)

	// No free polymerases yet.
	if got := r.Propensity(); got != 0 {
		t.Fatalf("propensity with empty pool = %g", got)
	}
	trk.Increment("rnapol", 4)
	if got := r.Propensity(); got != 0.5*4*1 {
		t.Fatalf("propensity = %g, want %g", got, 0.5*4*1)
	}

	if err := r.Execute(); err != nil {
		t.Fatalf("execute bind: %v", err)
	}
	if trk.Count("rnapol") != 3 {
		t.Fatalf("free pool = %d after bind", trk.Count("rnapol"))
	}
	// The promoter is occupied now, so the reaction is dead until it frees.
	if got := r.Propensity(); got != 0 {
		t.Fatalf("propensity with occupied promoter = %g", got)
	}
	if g.Occupants() != 1 {
		t.Fatalf("occupants = %d", g.Occupants())
	}
}

func TestBindReactionVolumeScaling(t *testing.T) {
	trk := tracker.New()
	trk.Increment("rnapol", 1)
	s := New(1, 0, trk)
	g := newGenome(t, s)

	spec := PolymeraseSpec{Name: "rnapol", Footprint: 10, Speed: 30}
	scaled := NewBindReaction(1e7, 1.1e-15, spec, "phi", s.Rng(), trk)
	scaled.AddTarget(g)
	plain := NewBindReaction(1e7, 0, spec, "phi", s.Rng(), trk)
	plain.AddTarget(g)

	if scaled.Propensity() >= plain.Propensity() {
		t.Fatalf("volume scaling did not shrink the rate: %g >= %g",
			scaled.Propensity(), plain.Propensity())
	}
}

func TestEndToEndExpression(t *testing.T) {
	trk := tracker.New()
	s := New(42, 0, trk)
	g := newGenome(t, s)
	s.RegisterGenome(g, RibosomeSpec{Footprint: 10, Speed: 30})

	trk.Increment("rnapol", 5)
	trk.Increment("ribosome", 30)

	spec := PolymeraseSpec{Name: "rnapol", Footprint: 10, Speed: 30}
	bind := NewBindReaction(10, 0, spec, "phi", s.Rng(), trk)
	bind.AddTarget(g)
	s.AddReaction(bind)

	var lastTime float64
	for i := 0; i < 20000; i++ {
		err := s.Step()
		if errors.Is(err, ErrNoReactions) {
			break
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.Time() < lastTime {
			t.Fatalf("time went backwards: %g -> %g", lastTime, s.Time())
		}
		lastTime = s.Time()
	}

	if trk.Transcripts("proteinA") == 0 {
		t.Fatal("no transcripts of proteinA were produced")
	}
	if trk.Count("proteinA") == 0 {
		t.Fatal("no proteinA was translated")
	}
	if trk.Count("proteinB") == 0 {
		t.Fatal("no proteinB was translated")
	}
	if s.Iterations() == 0 {
		t.Fatal("no iterations recorded")
	}
}

func TestRunSamplesOnGrid(t *testing.T) {
	trk := tracker.New()
	s := New(7, 0, trk)
	g := newGenome(t, s)
	s.RegisterGenome(g, RibosomeSpec{Footprint: 10, Speed: 30})

	trk.Increment("rnapol", 2)
	trk.Increment("ribosome", 10)
	spec := PolymeraseSpec{Name: "rnapol", Footprint: 10, Speed: 30}
	bind := NewBindReaction(5, 0, spec, "phi", s.Rng(), trk)
	bind.AddTarget(g)
	s.AddReaction(bind)

	var ticks []float64
	if err := s.Run(1.0, 0.25, func(tm float64) { ticks = append(ticks, tm) }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ticks) != 5 {
		t.Fatalf("sampled %d grid points, want 5: %v", len(ticks), ticks)
	}
	for i, tm := range ticks {
		want := 0.25 * float64(i)
		if diff := tm - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("tick %d at %g, want %g", i, tm, want)
		}
	}
}

func TestRunRejectsBadTimeStep(t *testing.T) {
	trk := tracker.New()
	s := New(1, 0, trk)
	if err := s.Run(1.0, 0, nil); err == nil {
		t.Fatal("expected error for zero time step")
	}
}
