package polymer

import "fmt"

// Site is the shared state of every fixed or movable element on a polymer:
// an inclusive [start, stop] span, a map from interacting species to
// interaction strength, and a covered bit with a saved snapshot for
// edge detection.
type Site struct {
	name         string
	start        int
	stop         int
	interactions map[string]float64

	covered           bool
	previouslyCovered bool
	gene              string
}

func newSite(name string, start, stop int, interactions map[string]float64) (Site, error) {
	if start < 0 || stop < 0 {
		return Site{}, fmt.Errorf("site %s: coordinates must be non-negative (start=%d stop=%d)", name, start, stop)
	}
	copied := make(map[string]float64, len(interactions))
	for species, strength := range interactions {
		if strength < 0 {
			return Site{}, fmt.Errorf("site %s: interaction strength for %s cannot be negative", name, species)
		}
		copied[species] = strength
	}
	return Site{name: name, start: start, stop: stop, interactions: copied}, nil
}

func (s *Site) Name() string { return s.name }
func (s *Site) Start() int   { return s.start }
func (s *Site) Stop() int    { return s.stop }

// Gene returns the coding gene this site is tied to, if any.
func (s *Site) Gene() string { return s.gene }

// SetGene ties the site to a coding gene.
func (s *Site) SetGene(gene string) { s.gene = gene }

// Cover marks the site occluded by a mask or occupant.
func (s *Site) Cover() { s.covered = true }

// Uncover marks the site exposed.
func (s *Site) Uncover() { s.covered = false }

// IsCovered reports whether the site is currently occluded.
func (s *Site) IsCovered() bool { return s.covered }

// SaveState snapshots the covered bit so the next Was* query detects edges
// relative to this point.
func (s *Site) SaveState() { s.previouslyCovered = s.covered }

// WasCovered reports a false->true covered transition since SaveState.
func (s *Site) WasCovered() bool { return s.covered && !s.previouslyCovered }

// WasUncovered reports a true->false covered transition since SaveState.
func (s *Site) WasUncovered() bool { return !s.covered && s.previouslyCovered }

// CheckInteraction reports whether species appears in the interaction map.
func (s *Site) CheckInteraction(species string) bool {
	_, ok := s.interactions[species]
	return ok
}

// Interactions exposes the interaction map. Callers must not mutate it.
func (s *Site) Interactions() map[string]float64 { return s.interactions }

func (s *Site) cloneSite() Site {
	out := *s
	out.interactions = make(map[string]float64, len(s.interactions))
	for species, strength := range s.interactions {
		out.interactions[species] = strength
	}
	out.covered = false
	out.previouslyCovered = false
	return out
}

// Promoter is a binding site. Interaction strengths are binding affinities.
type Promoter struct {
	Site
}

// NewPromoter validates coordinates and interaction strengths.
func NewPromoter(name string, start, stop int, interactions map[string]float64) (*Promoter, error) {
	site, err := newSite(name, start, stop, interactions)
	if err != nil {
		return nil, err
	}
	return &Promoter{Site: site}, nil
}

// Clone returns an independent copy with cover state reset. Transcripts own
// their site states separately from the genome templates they came from.
func (p *Promoter) Clone() *Promoter {
	return &Promoter{Site: p.cloneSite()}
}

// Terminator is a release site. Interaction strengths are termination
// efficiencies in [0, 1]; a terminator may additionally be restricted to one
// reading frame (stop codons).
type Terminator struct {
	Site
	readthrough  bool
	readingFrame int
}

// NewTerminator validates coordinates and efficiencies.
func NewTerminator(name string, start, stop int, efficiency map[string]float64) (*Terminator, error) {
	site, err := newSite(name, start, stop, efficiency)
	if err != nil {
		return nil, err
	}
	for species, eff := range efficiency {
		if eff > 1 {
			return nil, fmt.Errorf("terminator %s: efficiency for %s cannot exceed 1", name, species)
		}
	}
	return &Terminator{Site: site, readingFrame: -1}, nil
}

// Efficiency returns the per-species termination efficiency, 0 if the species
// is absent from the map.
func (t *Terminator) Efficiency(species string) float64 {
	return t.interactions[species]
}

// Readthrough reports whether an occupant has already failed a termination
// attempt at this site and is sliding past it.
func (t *Terminator) Readthrough() bool { return t.readthrough }

// SetReadthrough sets the sticky readthrough flag. It is cleared when the
// occupant moves fully past the terminator.
func (t *Terminator) SetReadthrough(v bool) { t.readthrough = v }

// ReadingFrame returns the frame this terminator is restricted to, -1 when
// frame-independent.
func (t *Terminator) ReadingFrame() int { return t.readingFrame }

// SetReadingFrame restricts the terminator to a reading frame.
func (t *Terminator) SetReadingFrame(frame int) { t.readingFrame = frame }

// CheckInteractionInFrame reports whether species is released here when
// reading in the given frame.
func (t *Terminator) CheckInteractionInFrame(species string, frame int) bool {
	if t.readingFrame >= 0 && t.readingFrame != frame {
		return false
	}
	return t.CheckInteraction(species)
}

// Clone returns an independent copy with cover state reset and the
// readthrough flag cleared.
func (t *Terminator) Clone() *Terminator {
	return &Terminator{Site: t.cloneSite(), readingFrame: t.readingFrame}
}

// Mask hides the downstream, not-yet-synthesized part of a polymer. It spans
// [start, stop of polymer] and recedes one position at a time as the parent
// polymerase extends the polymer. Species in the interaction map may push the
// mask aside; all others collide with it.
type Mask struct {
	Site
}

// NewMask builds a mask over [start, stop].
func NewMask(start, stop int, interactions map[string]float64) Mask {
	copied := make(map[string]float64, len(interactions))
	for species, strength := range interactions {
		copied[species] = strength
	}
	return Mask{Site: Site{name: "mask", start: start, stop: stop, interactions: copied}}
}

// Recede exposes one more position by advancing the mask's start.
func (m *Mask) Recede() { m.start++ }
