package config

import (
	"fmt"

	"polysome/internal/polymer"
	"polysome/internal/sim"
	"polysome/internal/tracker"
)

// Build assembles a runnable simulation from a validated config: the genome
// with its sites and mask, the species pools, and one bind reaction per
// promoter/polymerase pairing.
func Build(c Config, trk *tracker.SpeciesTracker) (*sim.Simulation, *polymer.Genome, error) {
	s := sim.New(c.Simulation.Seed, c.Simulation.CellVolume, trk)

	g := polymer.NewGenome(c.Genome.Name, c.Genome.Length, s.Rng(), trk)
	if c.Mask != nil {
		g.AddMask(c.Mask.Start, c.Mask.Interactions)
	}
	for _, p := range c.Promoters {
		if err := g.AddPromoter(p.Name, p.Start, p.Stop, p.Interactions); err != nil {
			return nil, nil, err
		}
	}
	for _, t := range c.Terminators {
		if err := g.AddTerminator(t.Name, t.Start, t.Stop, t.Efficiency); err != nil {
			return nil, nil, err
		}
	}
	for _, gene := range c.Genes {
		if err := g.AddGene(gene.Name, gene.Start, gene.Stop, gene.RBSStart, gene.RBSStop, gene.RBSStrength); err != nil {
			return nil, nil, err
		}
	}
	if len(c.Genome.TranscriptWeights) > 0 {
		if err := g.AddWeights(c.Genome.TranscriptWeights); err != nil {
			return nil, nil, err
		}
	}
	g.Initialize()

	ribo := sim.RibosomeSpec{}
	if c.Ribosomes != nil {
		ribo = sim.RibosomeSpec{Footprint: c.Ribosomes.Footprint, Speed: c.Ribosomes.Speed}
		trk.Increment("ribosome", c.Ribosomes.CopyNumber)
	}
	s.RegisterGenome(g, ribo)

	for _, sp := range c.Species {
		trk.Increment(sp.Name, sp.Count)
	}

	specs := make(map[string]sim.PolymeraseSpec, len(c.Polymerases))
	for _, p := range c.Polymerases {
		trk.Increment(p.Name, p.CopyNumber)
		specs[p.Name] = sim.PolymeraseSpec{Name: p.Name, Footprint: p.Footprint, Speed: p.Speed}
	}

	// One bind reaction per promoter/polymerase pairing declared in the
	// promoter's interaction map. Same-named promoters share one reaction.
	seen := make(map[string]bool)
	for _, p := range c.Promoters {
		for species, strength := range p.Interactions {
			if seen[p.Name+"\x00"+species] {
				continue
			}
			seen[p.Name+"\x00"+species] = true
			spec, ok := specs[species]
			if !ok {
				return nil, nil, fmt.Errorf("promoter %s interacts with undeclared polymerase %s", p.Name, species)
			}
			r := sim.NewBindReaction(strength, c.Simulation.CellVolume, spec, p.Name, s.Rng(), trk)
			r.AddTarget(g)
			s.AddReaction(r)
		}
	}
	return s, g, nil
}
