package world

import (
	"errors"
	"testing"
)

func TestTileOutOfBounds(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	for _, pos := range []Coord{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 5, Y: 0}, {X: 0, Y: 5}} {
		if _, err := g.Tile(pos.X, pos.Y); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("Tile%v: err=%v want ErrOutOfBounds", pos, err)
		}
	}
	if !g.IsCollidable(-1, 2) {
		t.Fatal("out-of-bounds tile must read as collidable")
	}
	if _, err := g.Tile(2, 2); err != nil {
		t.Fatalf("in-bounds tile: %v", err)
	}
}

func TestTilePath(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	g.SetSector(1, 1, "Tavern")
	g.SetArena(1, 1, "Tavern Hall")
	g.SetGameObject(1, 1, "bar")

	tests := []struct {
		level string
		want  string
	}{
		{LevelWorld, "Testville"},
		{LevelSector, "Testville:Tavern"},
		{LevelArena, "Testville:Tavern:Tavern Hall"},
		{LevelGameObject, "Testville:Tavern:Tavern Hall:bar"},
	}
	for _, tc := range tests {
		got, err := g.TilePath(Coord{X: 1, Y: 1}, tc.level)
		if err != nil {
			t.Fatalf("TilePath(%s): %v", tc.level, err)
		}
		if got != tc.want {
			t.Errorf("TilePath(%s)=%q want=%q", tc.level, got, tc.want)
		}
	}

	// Asking for a deeper level than the tile defines is an error.
	g.SetSector(2, 2, "Field")
	if _, err := g.TilePath(Coord{X: 2, Y: 2}, LevelArena); err == nil {
		t.Fatal("TilePath on tile without arena: want error")
	}
	if _, err := g.TilePath(Coord{X: 1, Y: 1}, "floor"); err == nil {
		t.Fatal("TilePath with bogus level: want error")
	}
}

func TestAddressIndexTracksMutations(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	g.SetSector(3, 3, "Farm")

	if got := g.PositionsByAddress("Testville:Farm"); len(got) != 1 || got[0] != (Coord{X: 3, Y: 3}) {
		t.Fatalf("PositionsByAddress=%v want [(3, 3)]", got)
	}

	// Mutating collision after a lookup must not leave a stale index.
	g.SetCollision(3, 3, true)
	if got := g.PositionsByAddress("Testville:Farm"); len(got) != 0 {
		t.Fatalf("collidable tile still indexed: %v", got)
	}

	g.SetCollision(3, 3, false)
	g.SetGameObject(3, 3, "wheat")
	if got := g.PositionsByAddress("Testville:Farm"); len(got) != 1 {
		t.Fatalf("index not rebuilt after uncollide: %v", got)
	}
	if got := g.PositionsByAddress("Testville:Farm:"); len(got) != 0 {
		t.Fatal("object-level address without arena must not exist")
	}
}

func TestNearbyPositionsClamped(t *testing.T) {
	g := NewGrid("Testville", 4, 4)
	got := g.NearbyPositions(Coord{X: 0, Y: 0}, 1)
	if len(got) != 4 {
		t.Fatalf("corner radius 1: %d positions, want 4", len(got))
	}
	got = g.NearbyPositions(Coord{X: 2, Y: 2}, 1)
	if len(got) != 9 {
		t.Fatalf("center radius 1: %d positions, want 9", len(got))
	}
}

func TestFindPositionsWildcards(t *testing.T) {
	g := NewGrid("Testville", 4, 4)
	g.SetSector(0, 0, "Farm")
	g.SetArena(0, 0, "Field")
	g.SetSector(1, 0, "Farm")
	g.SetArena(1, 0, "Barn")
	g.SetCollision(1, 0, true)

	if got := g.FindPositions("Farm", "", "", false); len(got) != 1 {
		t.Fatalf("walkable Farm tiles=%d want=1", len(got))
	}
	if got := g.FindPositions("Farm", "", "", true); len(got) != 2 {
		t.Fatalf("all Farm tiles=%d want=2", len(got))
	}
	if got := g.FindPositions("Farm", "Barn", "", true); len(got) != 1 || got[0] != (Coord{X: 1, Y: 0}) {
		t.Fatalf("Farm/Barn=%v want [(1, 0)]", got)
	}
}

func TestTileEvents(t *testing.T) {
	g := NewGrid("Testville", 3, 3)
	e := NewEvent("garrick", "tends", "bar", "tending the bar")

	g.AddEvent(1, 1, e)
	g.AddEvent(1, 1, e)
	tile, _ := g.Tile(1, 1)
	if len(tile.Events) != 2 {
		t.Fatalf("events=%d want=2", len(tile.Events))
	}
	if !tile.HasEvent(e) {
		t.Fatal("HasEvent=false for present event")
	}

	// RemoveEvent drops one occurrence at a time.
	g.RemoveEvent(1, 1, e)
	g.RemoveEvent(1, 1, e)
	g.RemoveEvent(1, 1, e) // removing a missing event is a no-op
	tile, _ = g.Tile(1, 1)
	if len(tile.Events) != 0 {
		t.Fatalf("events=%d want=0 after removes", len(tile.Events))
	}
}
