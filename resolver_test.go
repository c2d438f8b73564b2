package main

import (
	"math"
	"testing"
)

func authoritative() Resolver {
	return Resolver{Mode: ModeAuthoritative}
}

func mainCellAt(x, y, mass float64) Cell {
	c := Cell{ID: 0, X: x, Y: y, IsMain: true, Generation: 1}
	c.SetMass(mass)
	return c
}

func TestAppliesLocally(t *testing.T) {
	if !(Resolver{Mode: ModeOffline}).AppliesLocally() {
		t.Error("offline mode should apply outcomes locally")
	}
	if (Resolver{Mode: ModePredictive}).AppliesLocally() {
		t.Error("predictive mode must wait for confirmation")
	}
	if authoritative().AppliesLocally() {
		t.Error("authoritative mode must not apply locally")
	}
}

func TestCanConsume(t *testing.T) {
	r := authoritative()
	cell := mainCellAt(0, 0, 100) // radius 20

	if !r.CanConsume(cell, Consumable{X: 19.9, Y: 0}) {
		t.Error("consumable inside radius should be consumable")
	}
	if r.CanConsume(cell, Consumable{X: 20, Y: 0}) {
		t.Error("distance exactly equal to radius should not consume")
	}
	if r.CanConsume(cell, Consumable{X: 30, Y: 0}) {
		t.Error("consumable outside radius should not be consumable")
	}
}

func TestConsumeGain(t *testing.T) {
	r := authoritative()
	c := Consumable{Mass: 15}

	if g := r.ConsumeGain(c, Effects{}); g != 15 {
		t.Errorf("expected gain 15, got %f", g)
	}

	double := Effects{DoubleConsume: TemporaryEffect{Active: true, TimeLeft: 1000}}
	if g := r.ConsumeGain(c, double); g != 30 {
		t.Errorf("expected doubled gain 30, got %f", g)
	}

	mega := Effects{MegaConsume: TemporaryEffect{Active: true, TimeLeft: 1000}}
	if g := r.ConsumeGain(c, mega); g != 75 {
		t.Errorf("expected mega gain 75, got %f", g)
	}

	both := Effects{
		DoubleConsume: TemporaryEffect{Active: true, TimeLeft: 1000},
		MegaConsume:   TemporaryEffect{Active: true, TimeLeft: 1000},
	}
	if g := r.ConsumeGain(c, both); g != 150 {
		t.Errorf("expected stacked gain 150, got %f", g)
	}
}

func TestConsumeGainCanonicalizes(t *testing.T) {
	r := authoritative()
	if g := r.ConsumeGain(Consumable{Mass: 14.7}, Effects{}); g != 15 {
		t.Errorf("expected reported mass snapped to 15, got %f", g)
	}
	if g := r.ConsumeGain(Consumable{Mass: 9}, Effects{}); g != 5 {
		t.Errorf("expected reported mass snapped to 5, got %f", g)
	}
}

func TestMaxCells(t *testing.T) {
	r := authoritative()
	if n := r.MaxCells(Upgrades{}); n != BaseMaxCells {
		t.Errorf("expected %d cells without expansion, got %d", BaseMaxCells, n)
	}
	if n := r.MaxCells(Upgrades{Expansion: true}); n != BaseMaxCells+1 {
		t.Errorf("expected %d cells with expansion, got %d", BaseMaxCells+1, n)
	}
}

func TestCanDivide(t *testing.T) {
	r := authoritative()

	cells := []Cell{mainCellAt(0, 0, MinDivideMass)}
	if !r.CanDivide(cells, 0, Upgrades{}) {
		t.Error("cell at the minimum mass should divide")
	}

	cells[0].SetMass(MinDivideMass - 0.1)
	if r.CanDivide(cells, 0, Upgrades{}) {
		t.Error("cell below minimum mass should not divide")
	}

	cells[0].SetMass(1000)
	for len(cells) < BaseMaxCells {
		cells = append(cells, Cell{ID: len(cells), Mass: 100})
	}
	if r.CanDivide(cells, 0, Upgrades{}) {
		t.Error("player at the cell cap should not divide")
	}
	if !r.CanDivide(cells, 0, Upgrades{Expansion: true}) {
		t.Error("expansion should raise the cell cap by one")
	}

	if r.CanDivide(cells, -1, Upgrades{}) || r.CanDivide(cells, len(cells), Upgrades{}) {
		t.Error("out-of-range index should not divide")
	}
}

func TestDivideConservesMass(t *testing.T) {
	r := authoritative()
	cells := []Cell{mainCellAt(0, 0, 100)}

	out, ok := r.Divide(cells, 0, 500, 0, Upgrades{})
	if !ok {
		t.Fatal("expected division to succeed")
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(out))
	}

	src, neu := out[0], out[1]
	if math.Abs(src.Mass-60) > 1e-9 {
		t.Errorf("expected source to keep 60, got %f", src.Mass)
	}
	if math.Abs(neu.Mass-40) > 1e-9 {
		t.Errorf("expected new cell to get 40, got %f", neu.Mass)
	}
	if math.Abs(src.Mass+neu.Mass-100) > 1e-9 {
		t.Errorf("division must conserve mass, total %f", src.Mass+neu.Mass)
	}
	if neu.IsMain {
		t.Error("new cell must not be main")
	}
	if neu.Generation != src.Generation+1 {
		t.Errorf("expected generation %d, got %d", src.Generation+1, neu.Generation)
	}
}

func TestDivideOffsetAndLaunch(t *testing.T) {
	r := authoritative()
	cells := []Cell{mainCellAt(0, 0, 100)} // radius 20 before the split

	out, ok := r.Divide(cells, 0, 500, 0, Upgrades{})
	if !ok {
		t.Fatal("expected division to succeed")
	}
	neu := out[1]

	// Offset uses the source radius before it shrinks
	wantX := 20 + MassToRadius(40) + DivisionClearance
	if math.Abs(neu.X-wantX) > 1e-9 {
		t.Errorf("expected new cell at x=%f, got %f", wantX, neu.X)
	}
	if neu.Y != 0 {
		t.Errorf("expected new cell at y=0, got %f", neu.Y)
	}
	if math.Abs(neu.VelocityX-DivisionLaunchSpeed) > 1e-9 || neu.VelocityY != 0 {
		t.Errorf("expected launch velocity (%f, 0), got (%f, %f)",
			DivisionLaunchSpeed, neu.VelocityX, neu.VelocityY)
	}
}

func TestDivideRejectsCloseTarget(t *testing.T) {
	r := authoritative()
	cells := []Cell{mainCellAt(0, 0, 100)}

	out, ok := r.Divide(cells, 0, 5, 5, Upgrades{})
	if ok {
		t.Error("target closer than 10 units should not divide")
	}
	if len(out) != 1 {
		t.Errorf("failed division must not mutate, got %d cells", len(out))
	}
	if out[0].Mass != 100 {
		t.Errorf("failed division must not change mass, got %f", out[0].Mass)
	}
}

func TestMergePassLargerAbsorbs(t *testing.T) {
	r := authoritative()
	a := Cell{ID: 1, X: 0, Y: 0}
	a.SetMass(30)
	b := Cell{ID: 2, X: 5, Y: 0}
	b.SetMass(20)

	out := r.MergePass([]Cell{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 cell after merge, got %d", len(out))
	}
	if out[0].ID != 1 {
		t.Errorf("expected the larger cell to survive, got ID %d", out[0].ID)
	}
	if math.Abs(out[0].Mass-50) > 1e-9 {
		t.Errorf("merge must be mass-additive, got %f", out[0].Mass)
	}
}

func TestMergePassTieLowerIndexAbsorbs(t *testing.T) {
	r := authoritative()
	a := Cell{ID: 7, X: 0, Y: 0}
	a.SetMass(25)
	b := Cell{ID: 8, X: 5, Y: 0}
	b.SetMass(25)

	out := r.MergePass([]Cell{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 cell after merge, got %d", len(out))
	}
	if out[0].ID != 7 {
		t.Errorf("on equal mass the lower-index cell absorbs, got ID %d", out[0].ID)
	}
}

func TestMergePassMainAbsorbsRegardlessOfSize(t *testing.T) {
	r := authoritative()
	main := mainCellAt(0, 0, 50)
	big := Cell{ID: 1, X: 10, Y: 0}
	big.SetMass(100)

	out := r.MergePass([]Cell{main, big})
	if len(out) != 1 {
		t.Fatalf("expected 1 cell after merge, got %d", len(out))
	}
	if !out[0].IsMain {
		t.Error("the main cell must survive the merge")
	}
	if math.Abs(out[0].Mass-150) > 1e-9 {
		t.Errorf("expected main mass 150, got %f", out[0].Mass)
	}
}

func TestMergePassKeepsSeparatedCells(t *testing.T) {
	r := authoritative()
	a := mainCellAt(0, 0, 100)
	b := Cell{ID: 1, X: 1000, Y: 0}
	b.SetMass(100)

	out := r.MergePass([]Cell{a, b})
	if len(out) != 2 {
		t.Errorf("non-overlapping cells must not merge, got %d", len(out))
	}
}

func TestCanPrey(t *testing.T) {
	r := authoritative()
	if r.CanPrey(120, 100) {
		t.Error("exactly 1.2x should not be enough")
	}
	if !r.CanPrey(121, 100) {
		t.Error("above 1.2x should succeed")
	}
	if r.CanPrey(100, 100) {
		t.Error("equal mass should never prey")
	}
	if r.CanPrey(100, 120) {
		t.Error("smaller attacker should never prey")
	}
}

func TestFormationStepPull(t *testing.T) {
	r := authoritative()
	cells := []Cell{
		mainCellAt(0, 0, 100),
		{ID: 1, X: 200, Y: 0, Mass: 40, Radius: MassToRadius(40)},
	}

	r.FormationStep(cells, 0, 0, true)

	if cells[1].X >= 200 {
		t.Errorf("pulled cell should move toward the main cell, x=%f", cells[1].X)
	}
	if cells[1].VelocityX >= 0 {
		t.Errorf("pull should accelerate toward the main cell, vx=%f", cells[1].VelocityX)
	}
	if cells[0].X != 0 || cells[0].Y != 0 {
		t.Error("the main cell must not move during a formation step")
	}
}

func TestFormationStepSpeedCap(t *testing.T) {
	r := authoritative()
	cells := []Cell{
		mainCellAt(0, 0, 100),
		{ID: 1, X: 200, Y: 0, Mass: 40, Radius: MassToRadius(40), VelocityX: 50, VelocityY: 50},
	}

	r.FormationStep(cells, 0, 0, true)

	speed := math.Sqrt(cells[1].VelocityX*cells[1].VelocityX + cells[1].VelocityY*cells[1].VelocityY)
	if speed > CellMaxSpeed+1e-9 {
		t.Errorf("speed %f exceeds cap %f", speed, CellMaxSpeed)
	}
}

func TestFormationStepFollowsMainDisplacement(t *testing.T) {
	r := authoritative()
	cells := []Cell{
		mainCellAt(0, 0, 100),
		{ID: 1, X: 500, Y: 0, Mass: 40, Radius: MassToRadius(40)},
	}

	r.FormationStep(cells, 10, 0, false)

	// Half the main displacement is carried directly
	if cells[1].X <= 500 {
		t.Errorf("formation cell should carry main displacement, x=%f", cells[1].X)
	}
}

func TestFormationStepClampsToMap(t *testing.T) {
	r := authoritative()
	cells := []Cell{
		mainCellAt(MapHalfExtent, 0, 100),
		{ID: 1, X: MapHalfExtent, Y: 0, Mass: 40, Radius: MassToRadius(40), VelocityX: 100},
	}

	r.FormationStep(cells, 5, 0, false)

	if cells[1].X > MapHalfExtent {
		t.Errorf("cell escaped the map, x=%f", cells[1].X)
	}
}
