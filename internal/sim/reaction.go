package sim

import (
	"errors"
	"fmt"

	"polysome/internal/choice"
	"polysome/internal/polymer"
	"polysome/internal/tracker"
)

// Avogadro's number, used to scale bimolecular rate constants by cell volume.
const avogadro = 6.0221409e23

// Reaction is anything the Gillespie loop can fire: a species-level binding
// event or a single polymerase step on a polymer.
type Reaction interface {
	Propensity() float64
	Execute() error
}

// Binder is the polymer surface a bind reaction needs: Genome and Transcript
// both satisfy it with their own Bind overrides.
type Binder interface {
	Bind(pol *polymer.Polymerase, promoterName string) error
	Uncovered(name string) int
}

// PolymeraseSpec describes the species a bind reaction injects.
type PolymeraseSpec struct {
	Name      string
	Footprint int
	Speed     float64
}

// BindReaction is the mass-action binding of a free polymerase pool to one
// exposed site class across a set of polymers. The target set grows as
// transcripts spawn.
type BindReaction struct {
	rate     float64
	spec     PolymeraseSpec
	siteName string
	targets  []Binder
	rng      choice.Source
	trk      *tracker.SpeciesTracker
}

// NewBindReaction scales rateConstant by cell volume when volume is positive
// (bimolecular rate constants arrive in molar units).
func NewBindReaction(rateConstant, cellVolume float64, spec PolymeraseSpec, siteName string,
	rng choice.Source, trk *tracker.SpeciesTracker) *BindReaction {
	rate := rateConstant
	if cellVolume > 0 {
		rate = rateConstant / (avogadro * cellVolume)
	}
	return &BindReaction{rate: rate, spec: spec, siteName: siteName, rng: rng, trk: trk}
}

// SiteName returns the site class this reaction binds to.
func (r *BindReaction) SiteName() string { return r.siteName }

// AddTarget registers a polymer carrying sites of this reaction's class.
func (r *BindReaction) AddTarget(b Binder) {
	r.targets = append(r.targets, b)
}

// Propensity is rate x free polymerase count x exposed site count.
func (r *BindReaction) Propensity() float64 {
	free := r.trk.Count(r.spec.Name)
	if free <= 0 {
		return 0
	}
	exposed := 0
	for _, t := range r.targets {
		exposed += t.Uncovered(r.siteName)
	}
	return r.rate * float64(free) * float64(exposed)
}

// Execute picks a target polymer weighted by its exposed site count, builds a
// fresh polymerase, and binds it. The free pool is decremented on success.
func (r *BindReaction) Execute() error {
	weights := make([]float64, len(r.targets))
	for i, t := range r.targets {
		weights[i] = float64(t.Uncovered(r.siteName))
	}
	idx, err := choice.WeightedChoiceIndex(r.rng, weights)
	if err != nil {
		return fmt.Errorf("bind %s to %s: %w", r.spec.Name, r.siteName, err)
	}
	pol, err := polymer.NewPolymerase(r.spec.Name, r.spec.Footprint, r.spec.Speed)
	if err != nil {
		return err
	}
	if err := r.targets[idx].Bind(pol, r.siteName); err != nil {
		// A site can be exposed while the mask still blocks the footprint
		// behind it; the bind stalls until the mask recedes further.
		if errors.Is(err, polymer.ErrMaskOverlap) {
			return nil
		}
		return fmt.Errorf("bind %s to %s: %w", r.spec.Name, r.siteName, err)
	}
	r.trk.Increment(r.spec.Name, -1)
	return nil
}

// PolymerReaction wraps one polymer; firing it advances one occupant by one
// position.
type PolymerReaction struct {
	polymer Executor
}

// Executor is the polymer surface the Gillespie loop needs.
type Executor interface {
	PropSum() float64
	Execute() error
}

func NewPolymerReaction(p Executor) *PolymerReaction {
	return &PolymerReaction{polymer: p}
}

func (r *PolymerReaction) Propensity() float64 {
	return r.polymer.PropSum()
}

func (r *PolymerReaction) Execute() error {
	return r.polymer.Execute()
}
