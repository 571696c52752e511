package world

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// BuildConfig controls village map generation.
type BuildConfig struct {
	WorldName string
	Width     int
	Height    int
	Seed      int64
}

// DefaultBuildConfig returns the standard 20×20 hamlet layout parameters.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		WorldName: "Greenhollow",
		Width:     20,
		Height:    20,
		Seed:      42,
	}
}

// BuildVillage generates the hamlet map: two houses, a tavern, a wheat
// field, and a forest edge, surrounded by noise-scattered outskirts.
// Deterministic for a given seed.
func BuildVillage(cfg BuildConfig) (*Grid, error) {
	if cfg.Width < 20 || cfg.Height < 20 {
		return nil, fmt.Errorf("village needs at least a 20x20 grid, got %dx%d", cfg.Width, cfg.Height)
	}

	g := NewGrid(cfg.WorldName, cfg.Width, cfg.Height)
	noise := opensimplex.NewNormalized(cfg.Seed)

	// Outskirts: open ground with scattered trees and bushes.
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			g.SetSector(x, y, "Outside")
			g.SetArena(x, y, "Village Outskirts")
			g.SetCollision(x, y, false)
			switch v := noise.Eval2(float64(x)*0.35, float64(y)*0.35); {
			case v > 0.78:
				g.SetGameObject(x, y, "tree")
			case v > 0.62:
				g.SetGameObject(x, y, "bush")
			default:
				g.SetGameObject(x, y, "grass")
			}
		}
	}

	buildRoom := func(x1, y1, x2, y2 int, sector, arena string, objects map[Coord]string) {
		for x := x1; x <= x2; x++ {
			for y := y1; y <= y2; y++ {
				g.SetCollision(x, y, x == x1 || x == x2 || y == y1 || y == y2)
				g.SetSector(x, y, sector)
				g.SetArena(x, y, arena)
				g.SetGameObject(x, y, "floor")
			}
		}
		for pos, obj := range objects {
			g.SetGameObject(pos.X, pos.Y, obj)
		}
	}

	// House 1 — farmer.
	buildRoom(1, 1, 5, 5, "Farmer's House", "Main Room", map[Coord]string{
		{X: 2, Y: 2}: "bed",
		{X: 3, Y: 2}: "fireplace",
		{X: 2, Y: 3}: "table",
		{X: 3, Y: 3}: "crate",
	})

	// House 2 — hunter.
	buildRoom(8, 1, 12, 5, "Hunter's Cabin", "Main Room", map[Coord]string{
		{X: 9, Y: 2}:  "bed",
		{X: 10, Y: 2}: "hearth",
		{X: 9, Y: 3}:  "wooden chest",
		{X: 10, Y: 3}: "workbench",
	})

	// Tavern.
	buildRoom(4, 8, 10, 13, "The Drunken Boar Tavern", "Tavern Hall", map[Coord]string{
		{X: 5, Y: 9}:  "bar counter",
		{X: 5, Y: 10}: "beer barrel",
		{X: 6, Y: 11}: "table",
		{X: 7, Y: 11}: "bench",
		{X: 8, Y: 11}: "bench",
		{X: 6, Y: 12}: "fireplace",
		{X: 9, Y: 12}: "bed", // innkeeper's
	})

	// Wheat field next to the farmer's house.
	for x := 1; x <= 5; x++ {
		for y := 6; y <= 8; y++ {
			g.SetSector(x, y, "Farmer's Field")
			g.SetArena(x, y, "Wheat Patch")
			g.SetCollision(x, y, false)
			if (x+y)%2 == 0 {
				g.SetGameObject(x, y, "wheat")
			} else {
				g.SetGameObject(x, y, "soil")
			}
		}
	}

	// Forest edge near the hunter's cabin.
	for x := 13; x <= 17; x++ {
		for y := 1; y <= 5; y++ {
			g.SetSector(x, y, "Forest Edge")
			g.SetArena(x, y, "Hunting Grounds")
			g.SetCollision(x, y, false)
			if (x+y)%2 == 0 {
				g.SetGameObject(x, y, "tree")
			} else {
				g.SetGameObject(x, y, "bush")
			}
		}
	}

	// Gravel lane from the houses down to the tavern door.
	for y := 6; y <= 8; y++ {
		laneTile(g, 7, y)
	}
	for x := 7; x <= 14; x++ {
		laneTile(g, x, 7)
	}
	for y := 8; y <= 15; y++ {
		laneTile(g, 14, y)
	}

	// The tavern is already busy when the world starts.
	g.AddEvent(6, 11, NewEvent(
		"Innkeeper", "talks to", "traveler",
		"The innkeeper is welcoming a traveler with ale.",
	))

	return g, nil
}

func laneTile(g *Grid, x, y int) {
	t, err := g.Tile(x, y)
	if err != nil || t.Sector != "Outside" {
		return
	}
	g.SetGameObject(x, y, "gravel")
	g.SetCollision(x, y, false)
}
