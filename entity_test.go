package main

import (
	"math"
	"testing"
)

func TestMassToRadius(t *testing.T) {
	if r := MassToRadius(100); math.Abs(r-20) > 1e-9 {
		t.Errorf("expected radius 20 for mass 100, got %f", r)
	}
	if r := MassToRadius(25); math.Abs(r-10) > 1e-9 {
		t.Errorf("expected radius 10 for mass 25, got %f", r)
	}
	if r := MassToRadius(0); r != 0 {
		t.Errorf("expected radius 0 for mass 0, got %f", r)
	}
	if r := MassToRadius(-5); r != 0 {
		t.Errorf("expected radius 0 for negative mass, got %f", r)
	}
}

func TestSetMassKeepsRadiusDerived(t *testing.T) {
	c := Cell{}
	c.SetMass(400)
	if math.Abs(c.Radius-40) > 1e-9 {
		t.Errorf("expected radius 40, got %f", c.Radius)
	}
	c.SetMass(100)
	if math.Abs(c.Radius-20) > 1e-9 {
		t.Errorf("expected radius 20 after shrink, got %f", c.Radius)
	}
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("conn1", "Blob", "#ff6b6b")
	if p.ID != "conn1" {
		t.Errorf("expected ID conn1, got %s", p.ID)
	}
	if p.Name != "Blob" {
		t.Errorf("expected name Blob, got %s", p.Name)
	}
	if !p.IsAlive {
		t.Error("expected new player to be alive")
	}
	if len(p.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(p.Cells))
	}
	c := p.Cells[0]
	if !c.IsMain {
		t.Error("expected the starting cell to be main")
	}
	if c.Mass != InitialMass {
		t.Errorf("expected mass %f, got %f", InitialMass, c.Mass)
	}
	if c.Generation != 1 {
		t.Errorf("expected generation 1, got %d", c.Generation)
	}
	if c.X < -MapHalfExtent || c.X > MapHalfExtent || c.Y < -MapHalfExtent || c.Y > MapHalfExtent {
		t.Errorf("spawn position (%f, %f) outside map bounds", c.X, c.Y)
	}
	if p.TotalMass != InitialMass {
		t.Errorf("expected total mass %f, got %f", InitialMass, p.TotalMass)
	}
}

func TestNewPlayerAssignsColorWhenEmpty(t *testing.T) {
	p := NewPlayer("conn2", "Blob", "")
	if p.Color == "" {
		t.Error("expected a palette color to be assigned")
	}
	if p.Cells[0].Color != p.Color {
		t.Error("main cell color should match player color")
	}
}

func TestMainCell(t *testing.T) {
	p := NewPlayer("conn3", "Blob", "#4ecdc4")
	if mc := p.MainCell(); mc == nil || !mc.IsMain {
		t.Error("expected MainCell to return the main cell")
	}

	p.Cells[0].IsMain = false
	if mc := p.MainCell(); mc != nil {
		t.Error("expected nil when no main cell exists")
	}
}

func TestRecomputeTotalMass(t *testing.T) {
	p := NewPlayer("conn4", "Blob", "#4ecdc4")
	p.Cells = append(p.Cells, Cell{ID: 1, Mass: 60}, Cell{ID: 2, Mass: 40})
	p.RecomputeTotalMass()
	if math.Abs(p.TotalMass-200) > 1e-9 {
		t.Errorf("expected total mass 200, got %f", p.TotalMass)
	}
}

func TestResetToSpawn(t *testing.T) {
	p := NewPlayer("conn5", "Blob", "#feca57")
	p.IsAlive = false
	p.Cells = nil

	p.ResetToSpawn()
	if !p.IsAlive {
		t.Error("expected player to be alive after reset")
	}
	if len(p.Cells) != 1 {
		t.Fatalf("expected 1 cell after reset, got %d", len(p.Cells))
	}
	if p.Cells[0].Mass != InitialMass {
		t.Errorf("expected mass %f, got %f", InitialMass, p.Cells[0].Mass)
	}
	if p.Cells[0].Color != "#feca57" {
		t.Errorf("expected color preserved, got %s", p.Cells[0].Color)
	}
	if !p.Cells[0].IsMain {
		t.Error("expected fresh cell to be main")
	}
}
