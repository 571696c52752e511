package world

import "testing"

func TestFindPathStartEqualsGoal(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	p := Coord{X: 2, Y: 2}
	got := FindPath(g, p, p)
	if len(got) != 1 || got[0] != p {
		t.Fatalf("FindPath(p, p)=%v want [p]", got)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	// Wall off the right column.
	for y := 0; y < 5; y++ {
		g.SetCollision(3, y, true)
	}
	start := Coord{X: 0, Y: 0}
	got := FindPath(g, start, Coord{X: 4, Y: 2})
	if len(got) != 1 || got[0] != start {
		t.Fatalf("unreachable goal: path=%v want [start]", got)
	}
}

func TestFindPathAvoidsCollidableTiles(t *testing.T) {
	g := NewGrid("Testville", 5, 5)
	g.SetCollision(1, 0, true)
	g.SetCollision(1, 1, true)
	g.SetCollision(1, 2, true)
	g.SetCollision(1, 3, true)

	path := FindPath(g, Coord{X: 0, Y: 0}, Coord{X: 2, Y: 0})
	if len(path) < 2 {
		t.Fatalf("path too short: %v", path)
	}
	if path[0] != (Coord{X: 0, Y: 0}) || path[len(path)-1] != (Coord{X: 2, Y: 0}) {
		t.Fatalf("path endpoints wrong: %v", path)
	}
	for i, pos := range path {
		if g.IsCollidable(pos.X, pos.Y) {
			t.Fatalf("path step %d crosses collidable tile %v", i, pos)
		}
		if i > 0 {
			d := path[i-1].DistSq(pos)
			if d != 1 {
				t.Fatalf("step %d not 4-connected: %v -> %v", i, path[i-1], pos)
			}
		}
	}
}

func TestFindPathPrefersCheapTerrain(t *testing.T) {
	g := NewGrid("Testville", 5, 3)
	// A gravel lane along y=1: entry cost 0.5 per tile versus 1.0 on
	// the direct y=0 row. The detour must win on total cost.
	for x := 0; x < 5; x++ {
		g.SetGameObject(x, 1, "gravel")
	}

	path := FindPath(g, Coord{X: 0, Y: 0}, Coord{X: 4, Y: 0})
	onGravel := 0
	for _, pos := range path {
		if pos.Y == 1 {
			onGravel++
		}
	}
	if onGravel == 0 {
		t.Fatalf("path %v ignored the cheaper gravel lane", path)
	}
}

func TestMoveCost(t *testing.T) {
	g := NewGrid("Testville", 3, 3)
	g.SetGameObject(0, 0, "gravel")
	g.SetGameObject(1, 0, "bush")

	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0.5},
		{1, 0, 1.2},
		{2, 0, 1.0},
		{-1, 0, 1.0}, // out of bounds falls back to default
	}
	for _, tc := range tests {
		if got := g.MoveCost(tc.x, tc.y); got != tc.want {
			t.Errorf("MoveCost(%d, %d)=%v want=%v", tc.x, tc.y, got, tc.want)
		}
	}
}
