package world

import "fmt"

// Coord is a position on the tile grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistSq returns the squared Euclidean distance to another coordinate.
// Target selection only compares distances, so the square root is skipped.
func (c Coord) DistSq(o Coord) int {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return dx*dx + dy*dy
}

// Neighbors4 returns the four orthogonal neighbors, unbounded.
func (c Coord) Neighbors4() [4]Coord {
	return [4]Coord{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}
