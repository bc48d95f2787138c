// Package config loads a simulation description from YAML via Viper and
// assembles the runnable simulation from it.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SimulationConfig carries the run-level parameters.
type SimulationConfig struct {
	Seed       int64   `mapstructure:"seed"`
	RunTime    float64 `mapstructure:"run_time"`
	TimeStep   float64 `mapstructure:"time_step"`
	CellVolume float64 `mapstructure:"cell_volume"`
}

// GenomeConfig names the genome and fixes its coordinate space.
type GenomeConfig struct {
	Name   string `mapstructure:"name"`
	Length int    `mapstructure:"length"`

	// Per-position speed multipliers inherited by every transcript;
	// must be empty or exactly Length long.
	TranscriptWeights []float64 `mapstructure:"transcript_weights"`
}

// MaskConfig hides the genome from start onward, admitting the listed species.
type MaskConfig struct {
	Start        int      `mapstructure:"start"`
	Interactions []string `mapstructure:"interactions"`
}

// PromoterConfig is one binding site with per-species binding strengths.
type PromoterConfig struct {
	Name         string             `mapstructure:"name"`
	Start        int                `mapstructure:"start"`
	Stop         int                `mapstructure:"stop"`
	Interactions map[string]float64 `mapstructure:"interactions"`
}

// TerminatorConfig is one release site with per-species efficiencies.
type TerminatorConfig struct {
	Name       string             `mapstructure:"name"`
	Start      int                `mapstructure:"start"`
	Stop       int                `mapstructure:"stop"`
	Efficiency map[string]float64 `mapstructure:"efficiency"`
}

// GeneConfig describes one coding gene and its ribosome binding site.
type GeneConfig struct {
	Name        string  `mapstructure:"name"`
	Start       int     `mapstructure:"start"`
	Stop        int     `mapstructure:"stop"`
	RBSStart    int     `mapstructure:"rbs_start"`
	RBSStop     int     `mapstructure:"rbs_stop"`
	RBSStrength float64 `mapstructure:"rbs_strength"`
}

// PolymeraseConfig describes one RNA polymerase species pool.
type PolymeraseConfig struct {
	Name       string  `mapstructure:"name"`
	CopyNumber int     `mapstructure:"copy_number"`
	Speed      float64 `mapstructure:"speed"`
	Footprint  int     `mapstructure:"footprint"`
}

// RibosomeConfig describes the shared ribosome pool.
type RibosomeConfig struct {
	CopyNumber int     `mapstructure:"copy_number"`
	Speed      float64 `mapstructure:"speed"`
	Footprint  int     `mapstructure:"footprint"`
}

// SpeciesConfig seeds an arbitrary species count.
type SpeciesConfig struct {
	Name  string `mapstructure:"name"`
	Count int    `mapstructure:"count"`
}

// Config is the root of a run description.
type Config struct {
	Simulation  SimulationConfig   `mapstructure:"simulation"`
	Genome      GenomeConfig       `mapstructure:"genome"`
	Mask        *MaskConfig        `mapstructure:"mask"`
	Promoters   []PromoterConfig   `mapstructure:"promoters"`
	Terminators []TerminatorConfig `mapstructure:"terminators"`
	Genes       []GeneConfig       `mapstructure:"genes"`
	Polymerases []PolymeraseConfig `mapstructure:"polymerases"`
	Ribosomes   *RibosomeConfig    `mapstructure:"ribosomes"`
	Species     []SpeciesConfig    `mapstructure:"species"`
}

// Load reads and validates a YAML run description.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects descriptions the engine cannot honor.
func (c Config) Validate() error {
	if c.Genome.Length <= 0 {
		return fmt.Errorf("genome.length must be positive")
	}
	if c.Simulation.RunTime <= 0 {
		return fmt.Errorf("simulation.run_time must be positive")
	}
	if c.Simulation.TimeStep <= 0 {
		return fmt.Errorf("simulation.time_step must be positive")
	}
	if n := len(c.Genome.TranscriptWeights); n != 0 && n != c.Genome.Length {
		return fmt.Errorf("genome.transcript_weights must have length %d, got %d", c.Genome.Length, n)
	}
	if c.Mask != nil && (c.Mask.Start < 1 || c.Mask.Start > c.Genome.Length+1) {
		return fmt.Errorf("mask.start %d is outside the genome", c.Mask.Start)
	}
	for _, p := range c.Promoters {
		if p.Name == "" {
			return fmt.Errorf("promoter at [%d,%d] has no name", p.Start, p.Stop)
		}
		if p.Start < 1 || p.Stop > c.Genome.Length || p.Start > p.Stop {
			return fmt.Errorf("promoter %s: span [%d,%d] is invalid", p.Name, p.Start, p.Stop)
		}
	}
	for _, t := range c.Terminators {
		if t.Start < 1 || t.Stop > c.Genome.Length || t.Start > t.Stop {
			return fmt.Errorf("terminator %s: span [%d,%d] is invalid", t.Name, t.Start, t.Stop)
		}
	}
	for _, g := range c.Genes {
		if g.Name == "" {
			return fmt.Errorf("gene at [%d,%d] has no name", g.Start, g.Stop)
		}
		if g.Start < 1 || g.Stop > c.Genome.Length || g.Start > g.Stop {
			return fmt.Errorf("gene %s: span [%d,%d] is invalid", g.Name, g.Start, g.Stop)
		}
		if g.RBSStart > g.RBSStop {
			return fmt.Errorf("gene %s: rbs span [%d,%d] is invalid", g.Name, g.RBSStart, g.RBSStop)
		}
	}
	for _, p := range c.Polymerases {
		if p.Footprint <= 0 || p.Speed <= 0 {
			return fmt.Errorf("polymerase %s: footprint and speed must be positive", p.Name)
		}
		if p.CopyNumber < 0 {
			return fmt.Errorf("polymerase %s: copy_number cannot be negative", p.Name)
		}
	}
	if c.Ribosomes != nil && (c.Ribosomes.Footprint <= 0 || c.Ribosomes.Speed <= 0) {
		return fmt.Errorf("ribosomes: footprint and speed must be positive")
	}
	return nil
}
