package world

import "testing"

func TestBuildVillageRejectsSmallGrids(t *testing.T) {
	if _, err := BuildVillage(BuildConfig{WorldName: "X", Width: 10, Height: 10}); err == nil {
		t.Fatal("small grid accepted")
	}
}

func TestBuildVillageLayout(t *testing.T) {
	g, err := BuildVillage(DefaultBuildConfig())
	if err != nil {
		t.Fatal(err)
	}
	if g.WorldName() != "Greenhollow" {
		t.Fatalf("WorldName=%q", g.WorldName())
	}

	// The landmark rooms must be indexed and reachable.
	for _, addr := range []string{
		"Greenhollow:Farmer's House:Main Room",
		"Greenhollow:Hunter's Cabin:Main Room",
		"Greenhollow:The Drunken Boar Tavern:Tavern Hall",
		"Greenhollow:Farmer's Field:Wheat Patch",
		"Greenhollow:Forest Edge:Hunting Grounds",
	} {
		if len(g.PositionsByAddress(addr)) == 0 {
			t.Errorf("no walkable tiles for %q", addr)
		}
	}

	// Room interiors are walkable, walls are not.
	if g.IsCollidable(3, 3) {
		t.Fatal("farmer's house interior collidable")
	}
	if !g.IsCollidable(1, 1) {
		t.Fatal("farmer's house wall walkable")
	}

	// The seeded tavern event is present from the start.
	tile, _ := g.Tile(6, 11)
	if len(tile.Events) != 1 || tile.Events[0].Subject != "Innkeeper" {
		t.Fatalf("tavern seed event missing: %v", tile.Events)
	}
}

func TestBuildVillageDeterministic(t *testing.T) {
	a, _ := BuildVillage(DefaultBuildConfig())
	b, _ := BuildVillage(DefaultBuildConfig())
	for x := 0; x < a.Width(); x++ {
		for y := 0; y < a.Height(); y++ {
			ta, _ := a.Tile(x, y)
			tb, _ := b.Tile(x, y)
			if ta.GameObject != tb.GameObject || ta.Collision != tb.Collision {
				t.Fatalf("tile (%d, %d) differs between identical seeds", x, y)
			}
		}
	}
}
