// Package tracker maintains the census of free species: unbound polymerases
// and ribosomes, transcripts per gene, and translated proteins. A tracker is
// injected into the simulation and every polymer it spawns, so all census
// writes and the propensity reads in the driver go through one object.
// Instance returns the process-wide tracker the CLI injects.
package tracker

import (
	"fmt"
	"sync"
)

// SpeciesTracker counts species abundances. All methods are safe to call
// from synchronous signal slots; no callback runs while the lock is held.
type SpeciesTracker struct {
	mu          sync.Mutex
	species     map[string]int
	ribo        map[string]int
	transcripts map[string]int
}

var (
	instanceMu sync.Mutex
	instance   *SpeciesTracker
)

// Instance returns the process-wide tracker, creating it on first use. The
// CLI hands this instance to config.Build; library callers may inject a
// private tracker from New instead.
func Instance() *SpeciesTracker {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = New()
	}
	return instance
}

// Reset discards the process-wide tracker. Intended for tests.
func Reset() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = nil
}

// New returns an empty tracker.
func New() *SpeciesTracker {
	return &SpeciesTracker{
		species:     make(map[string]int),
		ribo:        make(map[string]int),
		transcripts: make(map[string]int),
	}
}

// Increment adjusts the count of a species by delta.
func (t *SpeciesTracker) Increment(species string, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.species[species] += delta
}

// IncrementRibo adjusts the count of ribosomes bound to transcripts of gene.
func (t *SpeciesTracker) IncrementRibo(gene string, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ribo[gene] += delta
}

// IncrementTranscript adjusts the count of transcripts carrying gene.
func (t *SpeciesTracker) IncrementTranscript(gene string, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transcripts[gene] += delta
}

// Update applies a polymer's species log: a map of signed cover-state deltas
// accumulated during one Execute.
func (t *SpeciesTracker) Update(log map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, delta := range log {
		t.species[name] += delta
	}
}

// Count returns the current count of a species.
func (t *SpeciesTracker) Count(species string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.species[species]
}

// Ribo returns the count of ribosomes bound to transcripts of gene.
func (t *SpeciesTracker) Ribo(gene string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ribo[gene]
}

// Transcripts returns the count of transcripts carrying gene.
func (t *SpeciesTracker) Transcripts(gene string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transcripts[gene]
}

// Snapshot copies all species counts.
func (t *SpeciesTracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.species))
	for name, count := range t.species {
		out[name] = count
	}
	return out
}

// String renders the census for diagnostics.
func (t *SpeciesTracker) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("species=%v ribo=%v transcripts=%v", t.species, t.ribo, t.transcripts)
}
