package world

import "container/heap"

// Terrain entry costs. Prepared surfaces are cheaper to walk than open
// ground; pushing through a bush is dearer.
const (
	costRoad    = 0.5
	costBush    = 1.2
	costDefault = 1.0
)

// MoveCost returns the cost of stepping onto the tile at (x, y).
func (g *Grid) MoveCost(x, y int) float64 {
	t, err := g.Tile(x, y)
	if err != nil {
		return costDefault
	}
	switch t.GameObject {
	case "gravel", "path", "road":
		return costRoad
	case "bush":
		return costBush
	default:
		return costDefault
	}
}

// FindPath returns the cheapest path from start to goal over 4-connected,
// in-bounds, non-collidable tiles, start and goal inclusive. When start
// equals goal, or no route exists, the single-element path [start] is
// returned — "no movement possible" is not an error.
func FindPath(g *Grid, start, goal Coord) []Coord {
	if start == goal {
		return []Coord{start}
	}

	frontier := &pathQueue{{pos: start, cost: 0}}
	cameFrom := map[Coord]Coord{start: start}
	costSoFar := map[Coord]float64{start: 0}

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(pathNode)
		if cur.pos == goal {
			break
		}
		if best, ok := costSoFar[cur.pos]; ok && cur.cost > best {
			continue // stale queue entry
		}
		for _, next := range cur.pos.Neighbors4() {
			if !g.InBounds(next.X, next.Y) || g.IsCollidable(next.X, next.Y) {
				continue
			}
			cost := cur.cost + g.MoveCost(next.X, next.Y)
			if best, ok := costSoFar[next]; !ok || cost < best {
				costSoFar[next] = cost
				cameFrom[next] = cur.pos
				heap.Push(frontier, pathNode{pos: next, cost: cost})
			}
		}
	}

	if _, ok := cameFrom[goal]; !ok {
		return []Coord{start}
	}

	var path []Coord
	for cur := goal; ; cur = cameFrom[cur] {
		path = append(path, cur)
		if cur == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pathNode is a frontier entry. Ordering is by accumulated cost with the
// coordinate as tie-break, so expansion order is deterministic.
type pathNode struct {
	pos  Coord
	cost float64
}

type pathQueue []pathNode

func (q pathQueue) Len() int { return len(q) }

func (q pathQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].pos.X != q[j].pos.X {
		return q[i].pos.X < q[j].pos.X
	}
	return q[i].pos.Y < q[j].pos.Y
}

func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pathQueue) Push(x any) { *q = append(*q, x.(pathNode)) }

func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
