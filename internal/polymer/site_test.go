package polymer

import "testing"

func TestPromoterValidation(t *testing.T) {
	if _, err := NewPromoter("promoter", -1, 10, nil); err == nil {
		t.Fatal("expected error for negative start")
	}
	if _, err := NewPromoter("promoter", 1, -10, nil); err == nil {
		t.Fatal("expected error for negative stop")
	}
	if _, err := NewPromoter("promoter", 1, 10, map[string]float64{"rnapol": -2}); err == nil {
		t.Fatal("expected error for negative interaction strength")
	}
}

func TestCoverings(t *testing.T) {
	site, err := NewPromoter("promoter", 1, 10, map[string]float64{"rnapol": 1.0})
	if err != nil {
		t.Fatalf("new promoter: %v", err)
	}
	if site.WasCovered() || site.IsCovered() || site.WasUncovered() {
		t.Fatal("fresh site should be uncovered with no edges")
	}

	site.Cover()
	if !site.IsCovered() || !site.WasCovered() || site.WasUncovered() {
		t.Fatal("cover should raise the was-covered edge")
	}

	site.SaveState()
	if !site.IsCovered() || site.WasCovered() || site.WasUncovered() {
		t.Fatal("save-state should clear the edge but keep the cover")
	}

	// Covering again without an intervening uncover raises no new edge.
	site.Cover()
	if site.WasCovered() {
		t.Fatal("repeated cover after save-state should not re-raise the edge")
	}

	site.Uncover()
	if site.IsCovered() || site.WasCovered() || !site.WasUncovered() {
		t.Fatal("uncover should raise the was-uncovered edge")
	}

	site.SaveState()
	if site.IsCovered() || site.WasCovered() || site.WasUncovered() {
		t.Fatal("save-state should clear the uncover edge")
	}
}

func TestCheckInteraction(t *testing.T) {
	site, err := NewPromoter("promoter", 1, 10, map[string]float64{"rnapol": 1.0})
	if err != nil {
		t.Fatalf("new promoter: %v", err)
	}
	if !site.CheckInteraction("rnapol") {
		t.Fatal("expected interaction with rnapol")
	}
	if site.CheckInteraction("otherpol") {
		t.Fatal("unexpected interaction with otherpol")
	}
}

func TestPromoterCloneIsIndependent(t *testing.T) {
	site, err := NewPromoter("promoter", 1, 10, map[string]float64{"rnapol": 1.0})
	if err != nil {
		t.Fatalf("new promoter: %v", err)
	}
	site.SetGene("g")
	site.Cover()

	clone := site.Clone()
	if clone == site {
		t.Fatal("clone returned the original")
	}
	if clone.IsCovered() {
		t.Fatal("clone must start uncovered")
	}
	if clone.Gene() != "g" {
		t.Fatalf("clone lost gene binding: %q", clone.Gene())
	}

	clone.Cover()
	site.Uncover()
	if !clone.IsCovered() {
		t.Fatal("mutating original leaked into clone")
	}
	clone.Interactions()["rnapol"] = 9
	if site.Interactions()["rnapol"] != 1.0 {
		t.Fatal("clone shares the interaction map with the original")
	}
}

func TestTerminatorValidation(t *testing.T) {
	if _, err := NewTerminator("terminator", 1, 10, map[string]float64{"rnapol": 2.0}); err == nil {
		t.Fatal("expected error for efficiency > 1")
	}
	if _, err := NewTerminator("terminator", 1, 10, map[string]float64{"rnapol": -2.0}); err == nil {
		t.Fatal("expected error for negative efficiency")
	}
}

func TestTerminatorEfficiency(t *testing.T) {
	term, err := NewTerminator("term", 1, 10, map[string]float64{"rnapol": 0.8, "ecolipol": 0.3})
	if err != nil {
		t.Fatalf("new terminator: %v", err)
	}
	if term.Efficiency("rnapol") != 0.8 {
		t.Fatalf("rnapol efficiency = %g", term.Efficiency("rnapol"))
	}
	if term.Efficiency("ecolipol") != 0.3 {
		t.Fatalf("ecolipol efficiency = %g", term.Efficiency("ecolipol"))
	}
	if term.Efficiency("absent") != 0 {
		t.Fatalf("absent species efficiency = %g", term.Efficiency("absent"))
	}
}

func TestTerminatorReadthroughAndFrame(t *testing.T) {
	term, err := NewTerminator("term", 1, 10, map[string]float64{"ribosome": 1.0})
	if err != nil {
		t.Fatalf("new terminator: %v", err)
	}
	if term.Readthrough() {
		t.Fatal("fresh terminator should not be in readthrough")
	}
	term.SetReadthrough(true)
	if !term.Readthrough() {
		t.Fatal("readthrough flag did not stick")
	}

	// Frame-independent until a frame is assigned.
	if !term.CheckInteractionInFrame("ribosome", 2) {
		t.Fatal("frame-independent terminator rejected frame 2")
	}
	term.SetReadingFrame(0)
	if term.CheckInteractionInFrame("ribosome", 1) {
		t.Fatal("frame 0 terminator admitted frame 1")
	}
	if !term.CheckInteractionInFrame("ribosome", 0) {
		t.Fatal("frame 0 terminator rejected frame 0")
	}

	clone := term.Clone()
	if clone.Readthrough() {
		t.Fatal("clone must not inherit readthrough")
	}
	if clone.ReadingFrame() != 0 {
		t.Fatalf("clone lost reading frame: %d", clone.ReadingFrame())
	}
}

func TestMask(t *testing.T) {
	mask := NewMask(20, 100, map[string]float64{"rnapol": 1.0})
	if !mask.CheckInteraction("rnapol") {
		t.Fatal("mask should admit rnapol")
	}
	if mask.CheckInteraction("ribosome") {
		t.Fatal("mask should not admit ribosome")
	}
	mask.Recede()
	if mask.Start() != 21 || mask.Stop() != 100 {
		t.Fatalf("recede moved mask to [%d,%d]", mask.Start(), mask.Stop())
	}
}
