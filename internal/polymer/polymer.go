// Package polymer implements the substrate of the simulation: linear
// coordinate spaces (genomes and transcripts) carrying binding sites, release
// sites, a mask over unexposed positions, and the polymerases that
// translocate along them. The engine owns the interval indexes, the
// uncovered-site cache, and the propensity bookkeeping that the outer
// stochastic simulator samples from.
package polymer

import (
	"errors"
	"fmt"

	"polysome/internal/choice"
	"polysome/internal/interval"
	"polysome/internal/signal"
	"polysome/internal/tracker"
)

var (
	// ErrNoFreePromoter is returned by Bind when no uncovered promoter of
	// the requested name is exposed.
	ErrNoFreePromoter = errors.New("no free promoter")
	// ErrNoInteraction is returned by Bind when the chosen site does not
	// admit the polymerase species.
	ErrNoInteraction = errors.New("polymerase does not interact with site")
	// ErrMaskOverlap is returned by Bind when binding would place the
	// polymerase under the mask.
	ErrMaskOverlap = errors.New("polymerase would overlap mask at binding")
	// ErrNoPropensity is returned by Execute on a polymer whose total move
	// propensity is zero; the caller must not schedule such a polymer.
	ErrNoPropensity = errors.New("polymer has zero move propensity")
)

// Termination is the payload of a polymer's TerminationSignal.
type Termination struct {
	PolymerIndex int
	PolName      string
	Gene         string
}

// Polymer is a linear coordinate space [start, stop] populated with binding
// and release sites, hidden downstream of a receding mask, and occupied by
// zero or more polymerases kept sorted by start position. A parallel
// propensity slice caches each occupant's move rate.
type Polymer struct {
	name  string
	start int
	stop  int
	index int

	bindingIntervals []interval.Interval[*Promoter]
	releaseIntervals []interval.Interval[*Terminator]
	bindingSites     *interval.Tree[*Promoter]
	releaseSites     *interval.Tree[*Terminator]

	weights []float64
	mask    Mask

	polymerases  []*Polymerase
	propensities []float64
	propSum      float64

	uncovered  map[string]int
	speciesLog map[string]int

	rng choice.Source
	trk *tracker.SpeciesTracker

	// TerminationSignal fires when an occupant releases from the polymer.
	TerminationSignal signal.Signal[Termination]
}

// New builds an empty polymer over [start, stop] with unit speed weights and
// an empty mask. Sites are attached before Initialize. The polymer reports
// binding census changes to trk; every polymer in a simulation must share the
// tracker the driver reads from.
func New(name string, start, stop int, rng choice.Source, trk *tracker.SpeciesTracker) *Polymer {
	weights := make([]float64, stop-start+1)
	for i := range weights {
		weights[i] = 1.0
	}
	return &Polymer{
		name:       name,
		start:      start,
		stop:       stop,
		weights:    weights,
		mask:       NewMask(stop+1, stop, nil),
		uncovered:  make(map[string]int),
		speciesLog: make(map[string]int),
		rng:        rng,
		trk:        trk,
	}
}

func (p *Polymer) Name() string { return p.name }
func (p *Polymer) Start() int   { return p.start }
func (p *Polymer) Stop() int    { return p.stop }

// Index returns the polymer's slot in the outer simulation, echoed in
// termination signals.
func (p *Polymer) Index() int { return p.index }

// SetIndex assigns the polymer's slot in the outer simulation.
func (p *Polymer) SetIndex(index int) { p.index = index }

// PropSum returns the cached total move propensity.
func (p *Polymer) PropSum() float64 { return p.propSum }

// Uncovered returns the cached count of exposed, unoccupied sites with the
// given name.
func (p *Polymer) Uncovered(name string) int { return p.uncovered[name] }

// SpeciesLog returns the signed cover-state deltas accumulated since the last
// Execute. The outer tracker applies and discards it.
func (p *Polymer) SpeciesLog() map[string]int { return p.speciesLog }

// TakeSpeciesLog drains the species log. The outer simulator calls this after
// every reaction so deltas produced outside the polymer's own Execute (mask
// recession driven by a parent polymerase) still reach the tracker.
func (p *Polymer) TakeSpeciesLog() map[string]int {
	log := p.speciesLog
	p.speciesLog = make(map[string]int)
	return log
}

// Occupants returns the number of bound polymerases.
func (p *Polymer) Occupants() int { return len(p.polymerases) }

// MaskStart returns the first hidden coordinate; positions >= MaskStart are
// unexposed.
func (p *Polymer) MaskStart() int { return p.mask.Start() }

// AddBindingSite attaches a promoter before Initialize.
func (p *Polymer) AddBindingSite(prom *Promoter) {
	p.bindingIntervals = append(p.bindingIntervals,
		interval.Interval[*Promoter]{Start: prom.Start(), Stop: prom.Stop(), Value: prom})
}

// AddReleaseSite attaches a terminator before Initialize.
func (p *Polymer) AddReleaseSite(term *Terminator) {
	p.releaseIntervals = append(p.releaseIntervals,
		interval.Interval[*Terminator]{Start: term.Start(), Stop: term.Stop(), Value: term})
}

// SetMask replaces the mask before Initialize.
func (p *Polymer) SetMask(mask Mask) { p.mask = mask }

// SetWeights replaces the per-position speed multipliers. The slice must
// cover every position of the polymer.
func (p *Polymer) SetWeights(weights []float64) error {
	if len(weights) != p.stop-p.start+1 {
		return fmt.Errorf("weights vector is not the correct size: %d != %d",
			len(weights), p.stop-p.start+1)
	}
	p.weights = append([]float64(nil), weights...)
	return nil
}

// Initialize builds the interval indexes and reconciles site cover state with
// the initial mask. The uncovered cache is seeded with the total number of
// sites per name so the first cover decrements from the true total.
func (p *Polymer) Initialize() {
	p.bindingSites = interval.NewTree(p.bindingIntervals)
	p.releaseSites = interval.NewTree(p.releaseIntervals)

	for _, iv := range p.bindingIntervals {
		p.uncovered[iv.Value.Name()]++
	}

	// Cover everything under the mask.
	for _, iv := range p.bindingSites.FindOverlapping(p.mask.Start(), p.mask.Stop()) {
		iv.Value.Cover()
		iv.Value.SaveState()
		p.uncovered[iv.Value.Name()]--
		if p.uncovered[iv.Value.Name()] < 0 {
			panic(fmt.Sprintf("polymer %s: cached count of uncovered element %s cannot be negative",
				p.name, iv.Value.Name()))
		}
	}

	// Everything upstream of the mask starts exposed.
	for _, iv := range p.bindingSites.FindOverlapping(p.start, p.mask.Start()-1) {
		if iv.Value.Stop() < p.mask.Start() {
			iv.Value.Uncover()
			iv.Value.SaveState()
		}
	}
}

// Bind snaps pol onto an exposed promoter with the given name, chosen
// uniformly among the free candidates. No state is mutated when an error is
// returned.
func (p *Polymer) Bind(pol *Polymerase, promoterName string) error {
	var candidates []*Promoter
	for _, iv := range p.bindingSites.FindOverlapping(p.start, p.mask.Start()) {
		if iv.Value.Name() == promoterName && !iv.Value.IsCovered() {
			candidates = append(candidates, iv.Value)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: polymerase %s found no free %s on polymer %s",
			ErrNoFreePromoter, pol.Name(), promoterName, p.name)
	}
	idx, err := choice.UniformIndex(p.rng, len(candidates))
	if err != nil {
		return err
	}
	site := candidates[idx]
	if !site.CheckInteraction(pol.Name()) {
		return fmt.Errorf("%w: polymerase %s on promoter %s",
			ErrNoInteraction, pol.Name(), promoterName)
	}
	newStop := site.Start() + pol.Footprint() - 1
	if newStop >= p.mask.Start() {
		return fmt.Errorf("%w: polymerase %s binding promoter %s",
			ErrMaskOverlap, pol.Name(), promoterName)
	}

	pol.SetPosition(site.Start())
	site.Cover()
	site.SaveState()
	p.coverBindingSite(site.Name())
	p.insert(pol)

	if site.CheckInteraction("ribosome") && site.Gene() != "" {
		p.trk.IncrementRibo(site.Gene(), 1)
	}
	return nil
}

// Execute advances one occupant by one position, chosen with probability
// proportional to its cached propensity.
func (p *Polymer) Execute() error {
	if p.propSum == 0 {
		return fmt.Errorf("%w: polymer %s", ErrNoPropensity, p.name)
	}
	p.speciesLog = make(map[string]int)
	idx, err := choice.WeightedChoiceIndex(p.rng, p.propensities)
	if err != nil {
		return fmt.Errorf("choosing occupant on polymer %s: %w", p.name, err)
	}
	p.move(idx)
	return nil
}

// ShiftMask recedes the mask by one position and uncovers anything newly
// exposed. A fully receded mask is a no-op.
func (p *Polymer) ShiftMask() {
	if p.mask.Start() > p.mask.Stop() {
		return
	}
	oldStart := p.mask.Start()
	p.mask.Recede()
	p.checkBehind(oldStart, p.mask.Start())
}

// Terminate releases pol from the polymer, keeping the occupant and
// propensity slices in lockstep, and announces the release.
func (p *Polymer) Terminate(pol *Polymerase, lastGene string) {
	idx := -1
	for i, other := range p.polymerases {
		if other == pol {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("polymer %s: terminating polymerase %s that is not bound", p.name, pol.Name()))
	}
	p.propSum -= p.propensities[idx]
	p.TerminationSignal.Emit(Termination{PolymerIndex: p.index, PolName: pol.Name(), Gene: lastGene})
	p.polymerases = append(p.polymerases[:idx], p.polymerases[idx+1:]...)
	p.propensities = append(p.propensities[:idx], p.propensities[idx+1:]...)
	if len(p.polymerases) != len(p.propensities) {
		panic(fmt.Sprintf("polymer %s: propensity list out of sync with occupants", p.name))
	}
}

// insert places pol into the occupant sequence ordered by start position and
// installs its propensity at the matching offset.
func (p *Polymer) insert(pol *Polymerase) {
	idx := len(p.polymerases)
	for i, other := range p.polymerases {
		if pol.Start() < other.Start() {
			idx = i
			break
		}
	}
	prop := p.positionWeight(pol) * pol.Speed()

	p.polymerases = append(p.polymerases, nil)
	copy(p.polymerases[idx+1:], p.polymerases[idx:])
	p.polymerases[idx] = pol

	p.propensities = append(p.propensities, 0)
	copy(p.propensities[idx+1:], p.propensities[idx:])
	p.propensities[idx] = prop

	p.propSum += prop
	if len(p.polymerases) != len(p.propensities) {
		panic(fmt.Sprintf("polymer %s: propensity list out of sync with occupants", p.name))
	}
}

// positionWeight looks up the speed multiplier for pol's current stop
// position. The -1 offset against the stop coordinate is part of the
// propensity contract and must not change.
func (p *Polymer) positionWeight(pol *Polymerase) float64 {
	idx := pol.Stop() - p.start - 1
	if idx < 0 || idx >= len(p.weights) {
		panic(fmt.Sprintf("polymer %s: weight is missing for position %d", p.name, pol.Stop()))
	}
	return p.weights[idx]
}

// move advances the occupant at idx by one position, resolving collisions
// against the neighbor ahead and the mask, stochastic termination, cover
// state, and finally the occupant's cached propensity.
func (p *Polymer) move(idx int) {
	pol := p.polymerases[idx]
	oldStart := pol.Start()
	oldStop := pol.Stop()

	pol.Move()

	if p.checkPolCollisions(idx) {
		pol.MoveBack()
		return
	}
	if p.checkMaskCollisions(pol) {
		pol.MoveBack()
		return
	}
	if p.checkTermination(pol) {
		return
	}

	p.checkBehind(oldStart, pol.Start())
	p.checkAhead(oldStop, pol.Stop())

	newProp := p.positionWeight(pol) * pol.Speed()
	p.propSum += newProp - p.propensities[idx]
	p.propensities[idx] = newProp
}

// checkAhead covers binding sites the occupant's leading edge has run onto.
func (p *Polymer) checkAhead(oldStop, newStop int) {
	for _, iv := range p.bindingSites.FindOverlapping(oldStop, newStop) {
		if iv.Value.Start() >= newStop {
			continue
		}
		iv.Value.Cover()
		if iv.Value.WasCovered() {
			p.coverBindingSite(iv.Value.Name())
			iv.Value.SaveState()
		}
	}
}

// checkBehind uncovers binding sites the occupant's trailing edge has fully
// cleared, and resets readthrough on terminators left behind.
func (p *Polymer) checkBehind(oldStart, newStart int) {
	for _, iv := range p.bindingSites.FindOverlapping(oldStart, newStart) {
		if iv.Value.Stop() >= newStart {
			continue
		}
		iv.Value.Uncover()
		if iv.Value.WasUncovered() {
			p.uncoverBindingSite(iv.Value.Name())
			iv.Value.SaveState()
		}
	}
	for _, iv := range p.releaseSites.FindOverlapping(oldStart, newStart) {
		if iv.Value.Stop() < newStart && iv.Value.Readthrough() {
			iv.Value.SetReadthrough(false)
		}
	}
}

// checkTermination runs the stochastic release protocol against every
// terminator under the occupant. On release the occupant's move signal is
// fired once per remaining terminator position, so a paired transcript's
// mask recedes the full distance before the occupant disappears.
func (p *Polymer) checkTermination(pol *Polymerase) bool {
	for _, iv := range p.releaseSites.FindOverlapping(pol.Start(), pol.Stop()) {
		term := iv.Value
		if !term.CheckInteractionInFrame(pol.Name(), pol.ReadingFrame()) || term.Readthrough() {
			continue
		}
		if p.rng.Float64() <= term.Efficiency(pol.Name()) {
			dist := term.Stop() - pol.Stop() + 1
			for i := 0; i < dist; i++ {
				pol.MoveSignal.Emit()
			}
			p.Terminate(pol, term.Gene())
			return true
		}
		term.SetReadthrough(true)
	}
	return false
}

// checkMaskCollisions resolves the occupant against the mask edge: species
// the mask admits push it back one position, everything else is rolled back
// by the caller.
func (p *Polymer) checkMaskCollisions(pol *Polymerase) bool {
	if p.mask.Start() > p.stop || pol.Stop() < p.mask.Start() {
		return false
	}
	if pol.Stop()-p.mask.Start() > 0 {
		panic(fmt.Sprintf("polymer %s: polymerase %s overlaps mask by more than one position",
			p.name, pol.Name()))
	}
	if p.mask.CheckInteraction(pol.Name()) {
		p.ShiftMask()
		return false
	}
	return true
}

// checkPolCollisions reports whether the occupant at idx has run into the
// next occupant ahead. Only the immediate neighbor can collide.
func (p *Polymer) checkPolCollisions(idx int) bool {
	if idx+1 >= len(p.polymerases) {
		return false
	}
	cur, next := p.polymerases[idx], p.polymerases[idx+1]
	if cur.Stop() >= next.Start() && next.Stop() >= cur.Start() {
		if cur.Stop()-next.Start() > 0 {
			panic(fmt.Sprintf("polymer %s: polymerase %s overlaps polymerase %s by more than one position",
				p.name, cur.Name(), next.Name()))
		}
		return true
	}
	return false
}

// coverBindingSite updates the uncovered cache and species log for a site
// that just became occluded.
func (p *Polymer) coverBindingSite(name string) {
	p.uncovered[name]--
	if p.uncovered[name] < 0 {
		panic(fmt.Sprintf("polymer %s: cached count of uncovered element %s cannot be negative",
			p.name, name))
	}
	p.speciesLog[name]--
}

// uncoverBindingSite updates the uncovered cache and species log for a site
// that just became exposed.
func (p *Polymer) uncoverBindingSite(name string) {
	p.uncovered[name]++
	p.speciesLog[name]++
}
