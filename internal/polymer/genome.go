package polymer

import (
	"fmt"

	"polysome/internal/choice"
	"polysome/internal/interval"
	"polysome/internal/signal"
	"polysome/internal/tracker"
)

// Genome is the DNA polymer over [1, length]. Beyond the base engine it
// carries transcript templates: the RBS and stop-codon intervals that are
// cloned into every transcript spawned by an RNA polymerase binding.
type Genome struct {
	Polymer

	transcriptRbsIntervals  []interval.Interval[*Promoter]
	transcriptStopIntervals []interval.Interval[*Terminator]
	transcriptRbs           *interval.Tree[*Promoter]
	transcriptStops         *interval.Tree[*Terminator]
	transcriptWeights       []float64

	bindings map[string]map[string]float64

	// TranscriptSignal fires with every transcript constructed during Bind.
	// The outer simulation registers the transcript as a new polymer.
	TranscriptSignal signal.Signal[*Transcript]
}

// NewGenome builds a genome over [1, length] with unit transcript weights.
// Spawned transcripts inherit the genome's tracker.
func NewGenome(name string, length int, rng choice.Source, trk *tracker.SpeciesTracker) *Genome {
	g := &Genome{
		Polymer:           *New(name, 1, length, rng, trk),
		transcriptWeights: make([]float64, length),
		bindings:          make(map[string]map[string]float64),
	}
	for i := range g.transcriptWeights {
		g.transcriptWeights[i] = 1.0
	}
	return g
}

// Initialize builds the base indexes plus the transcript template indexes.
func (g *Genome) Initialize() {
	g.Polymer.Initialize()
	g.transcriptRbs = interval.NewTree(g.transcriptRbsIntervals)
	g.transcriptStops = interval.NewTree(g.transcriptStopIntervals)
}

// AddMask hides [start, stop of genome]. The listed species may push the mask
// aside as they translocate; all others collide with it.
func (g *Genome) AddMask(start int, interactions []string) {
	interactionMap := make(map[string]float64, len(interactions))
	for _, name := range interactions {
		interactionMap[name] = 1.0
	}
	g.SetMask(NewMask(start, g.Stop(), interactionMap))
}

// AddPromoter registers a promoter and records its binding strengths.
func (g *Genome) AddPromoter(name string, start, stop int, interactions map[string]float64) error {
	prom, err := NewPromoter(name, start, stop, interactions)
	if err != nil {
		return err
	}
	g.AddBindingSite(prom)
	g.bindings[name] = prom.Interactions()
	return nil
}

// AddTerminator registers a terminator with per-species efficiencies.
func (g *Genome) AddTerminator(name string, start, stop int, efficiency map[string]float64) error {
	term, err := NewTerminator(name, start, stop, efficiency)
	if err != nil {
		return err
	}
	g.AddReleaseSite(term)
	return nil
}

// AddGene attaches transcript templates for a coding gene: a ribosome binding
// site ahead of the coding region and a stop codon in the gene's reading
// frame at its end.
func (g *Genome) AddGene(name string, start, stop, rbsStart, rbsStop int, rbsStrength float64) error {
	binding := map[string]float64{"ribosome": rbsStrength}
	rbs, err := NewPromoter(name+"_rbs", rbsStart, rbsStop, binding)
	if err != nil {
		return err
	}
	rbs.SetGene(name)
	g.transcriptRbsIntervals = append(g.transcriptRbsIntervals,
		interval.Interval[*Promoter]{Start: rbs.Start(), Stop: rbs.Stop(), Value: rbs})
	g.bindings[name+"_rbs"] = binding

	stopCodon, err := NewTerminator("stop_codon", stop-1, stop, map[string]float64{"ribosome": 1.0})
	if err != nil {
		return err
	}
	stopCodon.SetReadingFrame(start % 3)
	stopCodon.SetGene(name)
	g.transcriptStopIntervals = append(g.transcriptStopIntervals,
		interval.Interval[*Terminator]{Start: stopCodon.Start(), Stop: stopCodon.Stop(), Value: stopCodon})
	return nil
}

// AddWeights sets the per-position speed multipliers inherited by every
// spawned transcript. The slice must cover the whole genome.
func (g *Genome) AddWeights(transcriptWeights []float64) error {
	if len(transcriptWeights) != g.Stop()-g.Start()+1 {
		return fmt.Errorf("weights vector is not the correct size: %d != %d",
			len(transcriptWeights), g.Stop()-g.Start()+1)
	}
	g.transcriptWeights = append([]float64(nil), transcriptWeights...)
	return nil
}

// Bindings exposes the recorded binding strengths per site name.
func (g *Genome) Bindings() map[string]map[string]float64 { return g.bindings }

// Bind attaches an RNA polymerase and spawns the transcript it will produce.
// The polymerase's move signal is wired to the transcript's mask so every
// parent step exposes one more transcript position.
func (g *Genome) Bind(pol *Polymerase, promoterName string) error {
	if err := g.Polymer.Bind(pol, promoterName); err != nil {
		return err
	}
	transcript := g.buildTranscript(pol.Stop(), g.Stop())
	pol.MoveSignal.Connect(transcript.ShiftMask)
	g.TranscriptSignal.Emit(transcript)
	return nil
}

// buildTranscript clones every template site contained in [start, stop] into
// a fresh transcript whose mask still hides all of it. The transcript spans
// the genome's own coordinate space so template coordinates carry over
// unchanged.
func (g *Genome) buildTranscript(start, stop int) *Transcript {
	var rbsIntervals []interval.Interval[*Promoter]
	for _, iv := range g.transcriptRbs.FindContained(start, stop) {
		rbsIntervals = append(rbsIntervals,
			interval.Interval[*Promoter]{Start: iv.Start, Stop: iv.Stop, Value: iv.Value.Clone()})
	}
	var stopIntervals []interval.Interval[*Terminator]
	for _, iv := range g.transcriptStops.FindContained(start, stop) {
		stopIntervals = append(stopIntervals,
			interval.Interval[*Terminator]{Start: iv.Start, Stop: iv.Stop, Value: iv.Value.Clone()})
	}
	mask := NewMask(start, stop, nil)
	t := NewTranscript("rna", g.Start(), g.Stop(), rbsIntervals, stopIntervals, mask,
		g.transcriptWeights, g.rng, g.trk)
	t.Initialize()
	return t
}
