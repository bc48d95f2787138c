// Package sim runs the outer Gillespie loop: it samples one reaction per
// iteration with probability proportional to propensity, advances simulated
// time by an exponential variate, and keeps the species tracker in sync with
// every polymer's cover-state deltas.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"polysome/internal/choice"
	"polysome/internal/polymer"
	"polysome/internal/tracker"
)

// ErrNoReactions is returned by Step when every propensity is zero; the
// simulation has nothing left to fire.
var ErrNoReactions = errors.New("no reactions can fire")

// RibosomeSpec describes the ribosome pool acting on spawned transcripts.
type RibosomeSpec struct {
	Footprint    int
	Speed        float64
	RateConstant float64
}

// Simulation owns the reaction set and the simulated clock.
type Simulation struct {
	rng        *rand.Rand
	trk        *tracker.SpeciesTracker
	cellVolume float64

	reactions []Reaction
	logged    []interface{ TakeSpeciesLog() map[string]int }

	riboReactions map[string]*BindReaction

	time       float64
	iterations int
}

// New builds a simulation seeded for reproducible runs.
func New(seed int64, cellVolume float64, trk *tracker.SpeciesTracker) *Simulation {
	return &Simulation{
		rng:           rand.New(rand.NewSource(seed)),
		trk:           trk,
		cellVolume:    cellVolume,
		riboReactions: make(map[string]*BindReaction),
	}
}

// Rng exposes the simulation's random source for components that share it.
func (s *Simulation) Rng() *rand.Rand { return s.rng }

// Time returns the simulated time.
func (s *Simulation) Time() float64 { return s.time }

// Iterations returns the number of reactions fired so far.
func (s *Simulation) Iterations() int { return s.iterations }

// Tracker returns the species tracker this simulation reports to.
func (s *Simulation) Tracker() *tracker.SpeciesTracker { return s.trk }

// AddReaction appends a reaction to the sample set.
func (s *Simulation) AddReaction(r Reaction) {
	s.reactions = append(s.reactions, r)
}

// RegisterGenome wires a genome into the loop: its own move reaction, a
// ribosome bind reaction per gene RBS, transcript registration on spawn, and
// species accounting on termination.
func (s *Simulation) RegisterGenome(g *polymer.Genome, ribo RibosomeSpec) {
	g.SetIndex(len(s.logged))
	s.logged = append(s.logged, g)
	s.AddReaction(NewPolymerReaction(g))

	// Exposed promoters counted during Initialize become visible species.
	for name := range g.Bindings() {
		if n := g.Uncovered(name); n > 0 {
			s.trk.Increment(name, n)
		}
	}

	// One ribosome bind reaction per RBS class; targets arrive with
	// transcripts.
	spec := PolymeraseSpec{Name: "ribosome", Footprint: ribo.Footprint, Speed: ribo.Speed}
	for name, interactions := range g.Bindings() {
		if _, ok := interactions["ribosome"]; !ok {
			continue
		}
		strength := interactions["ribosome"]
		rate := strength
		if ribo.RateConstant > 0 {
			rate = strength * ribo.RateConstant
		}
		r := NewBindReaction(rate, s.cellVolume, spec, name, s.rng, s.trk)
		s.riboReactions[name] = r
		s.AddReaction(r)
	}

	g.TranscriptSignal.Connect(func(t *polymer.Transcript) {
		s.registerTranscript(t)
	})
	g.TerminationSignal.Connect(func(term polymer.Termination) {
		// A polymerase leaving the genome returns to the free pool.
		s.trk.Increment(term.PolName, 1)
	})
}

// registerTranscript makes a freshly spawned transcript schedulable and
// points every matching ribosome bind reaction at it.
func (s *Simulation) registerTranscript(t *polymer.Transcript) {
	t.SetIndex(len(s.logged))
	s.logged = append(s.logged, t)
	s.AddReaction(NewPolymerReaction(t))
	for _, r := range s.riboReactions {
		r.AddTarget(t)
	}
	for _, gene := range t.Genes() {
		s.trk.IncrementTranscript(gene, 1)
	}
	t.TerminationSignal.Connect(func(term polymer.Termination) {
		// A ribosome reaching a stop codon frees itself and yields one
		// protein of the gene it read.
		s.trk.Increment(term.PolName, 1)
		if term.Gene != "" {
			s.trk.Increment(term.Gene, 1)
			s.trk.IncrementRibo(term.Gene, -1)
		}
	})
}

// Step fires one reaction and advances the clock.
func (s *Simulation) Step() error {
	props := make([]float64, len(s.reactions))
	var total float64
	for i, r := range s.reactions {
		props[i] = r.Propensity()
		total += props[i]
	}
	if total == 0 {
		return ErrNoReactions
	}
	idx, err := choice.WeightedChoiceIndex(s.rng, props)
	if err != nil {
		return err
	}
	s.time += s.rng.ExpFloat64() / total
	if err := s.reactions[idx].Execute(); err != nil {
		return fmt.Errorf("firing reaction %d at t=%g: %w", idx, s.time, err)
	}
	s.iterations++
	s.drainLogs()
	return nil
}

// drainLogs applies every polymer's pending cover-state deltas to the
// tracker.
func (s *Simulation) drainLogs() {
	for _, p := range s.logged {
		log := p.TakeSpeciesLog()
		if len(log) > 0 {
			s.trk.Update(log)
		}
	}
}

// Run advances the simulation until runTime, invoking sample at every
// timeStep grid point (including t=0). It returns nil when the reaction set
// drains before runTime.
func (s *Simulation) Run(runTime, timeStep float64, sample func(t float64)) error {
	if timeStep <= 0 {
		return fmt.Errorf("time step must be positive, got %g", timeStep)
	}
	next := 0.0
	for s.time < runTime {
		for next <= s.time && next <= runTime {
			if sample != nil {
				sample(next)
			}
			next += timeStep
		}
		err := s.Step()
		if errors.Is(err, ErrNoReactions) {
			break
		}
		if err != nil {
			return err
		}
	}
	for next <= runTime {
		if sample != nil {
			sample(next)
		}
		next += timeStep
	}
	return nil
}
