package polymer

import (
	"polysome/internal/choice"
	"polysome/internal/interval"
	"polysome/internal/tracker"
)

// Transcript is the RNA polymer spawned by a genome bind. Its binding sites
// are ribosome binding sites and its release sites are stop codons; its mask
// hides everything the parent polymerase has not yet synthesized and recedes
// one position per parent step.
type Transcript struct {
	Polymer
}

// NewTranscript assembles a transcript from cloned template sites. The
// weights slice is shared with the genome's transcript weights; it is read
// only.
func NewTranscript(name string, start, stop int,
	rbsIntervals []interval.Interval[*Promoter],
	stopIntervals []interval.Interval[*Terminator],
	mask Mask, weights []float64, rng choice.Source, trk *tracker.SpeciesTracker) *Transcript {

	t := &Transcript{Polymer: *New(name, start, stop, rng, trk)}
	t.mask = mask
	t.weights = weights
	t.bindingIntervals = rbsIntervals
	t.releaseIntervals = stopIntervals
	return t
}

// Genes lists the coding genes carried by the transcript's stop sites.
func (t *Transcript) Genes() []string {
	var out []string
	for _, iv := range t.releaseIntervals {
		if gene := iv.Value.Gene(); gene != "" {
			out = append(out, gene)
		}
	}
	return out
}

// Bind attaches a ribosome and assigns its reading frame from the binding
// position.
func (t *Transcript) Bind(pol *Polymerase, promoterName string) error {
	if err := t.Polymer.Bind(pol, promoterName); err != nil {
		return err
	}
	pol.SetReadingFrame(pol.Start() % 3)
	return nil
}
