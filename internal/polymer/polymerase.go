package polymer

import (
	"fmt"

	"polysome/internal/signal"
)

// Polymerase is a moving occupant of a polymer: an RNA polymerase on a
// genome or a ribosome on a transcript. It occupies footprint positions,
// translocates one position per move, and carries the base speed that feeds
// the polymer's propensity bookkeeping.
type Polymerase struct {
	name         string
	footprint    int
	speed        float64
	start        int
	stop         int
	readingFrame int

	// MoveSignal fires once per single-position advance. On a genome-bound
	// polymerase it drives the paired transcript's mask recession.
	MoveSignal signal.Hook
}

// NewPolymerase validates footprint and speed. Position is assigned at bind
// time.
func NewPolymerase(name string, footprint int, speed float64) (*Polymerase, error) {
	if footprint <= 0 {
		return nil, fmt.Errorf("polymerase %s: footprint must be positive", name)
	}
	if speed <= 0 {
		return nil, fmt.Errorf("polymerase %s: speed must be positive", name)
	}
	return &Polymerase{name: name, footprint: footprint, speed: speed, readingFrame: 0}, nil
}

func (p *Polymerase) Name() string   { return p.name }
func (p *Polymerase) Footprint() int { return p.footprint }
func (p *Polymerase) Speed() float64 { return p.speed }
func (p *Polymerase) Start() int     { return p.start }
func (p *Polymerase) Stop() int      { return p.stop }

// ReadingFrame returns the frame (0, 1, or 2) the polymerase reads in.
func (p *Polymerase) ReadingFrame() int { return p.readingFrame }

// SetReadingFrame assigns the reading frame.
func (p *Polymerase) SetReadingFrame(frame int) { p.readingFrame = frame }

// SetPosition snaps the polymerase to a start coordinate, keeping
// stop - start + 1 == footprint.
func (p *Polymerase) SetPosition(start int) {
	p.start = start
	p.stop = start + p.footprint - 1
}

// Move advances both ends by one position and emits MoveSignal.
func (p *Polymerase) Move() {
	p.start++
	p.stop++
	p.MoveSignal.Emit()
}

// MoveBack rolls back a speculative Move. It does not emit: the advance it
// undoes never happened as far as listeners are concerned.
func (p *Polymerase) MoveBack() {
	p.start--
	p.stop--
}

func (p *Polymerase) String() string {
	return fmt.Sprintf("%s[%d,%d]", p.name, p.start, p.stop)
}
