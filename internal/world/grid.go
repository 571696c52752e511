package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds signals a tile access outside the grid. Callers are
// expected to bounds-check first; hitting this is a programming error,
// not a recoverable runtime condition.
var ErrOutOfBounds = errors.New("coordinates are out of bounds")

// Grid owns a fixed width×height store of tiles plus a lazily rebuilt
// index from hierarchical address strings to walkable positions.
type Grid struct {
	worldName string
	width     int
	height    int
	tiles     [][]Tile // [x][y]

	// Address index: "world:sector[:arena[:object]]" → non-collidable
	// positions. Invalidated by any sector/arena/object/collision
	// mutation, rebuilt on the next lookup.
	addrIndex map[string][]Coord
	addrDirty bool
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(worldName string, width, height int) *Grid {
	tiles := make([][]Tile, width)
	for x := range tiles {
		tiles[x] = make([]Tile, height)
	}
	return &Grid{
		worldName: worldName,
		width:     width,
		height:    height,
		tiles:     tiles,
		addrDirty: true,
	}
}

// WorldName returns the name used as the address prefix.
func (g *Grid) WorldName() string { return g.worldName }

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether the coordinate lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Tile returns the tile at (x, y), or ErrOutOfBounds.
func (g *Grid) Tile(x, y int) (*Tile, error) {
	if !g.InBounds(x, y) {
		return nil, fmt.Errorf("tile (%d, %d): %w", x, y, ErrOutOfBounds)
	}
	return &g.tiles[x][y], nil
}

// SetSector sets the sector of a tile and invalidates the address index.
func (g *Grid) SetSector(x, y int, sector string) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.Sector = sector
	g.addrDirty = true
	return nil
}

// SetArena sets the arena of a tile and invalidates the address index.
func (g *Grid) SetArena(x, y int, arena string) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.Arena = arena
	g.addrDirty = true
	return nil
}

// SetGameObject sets the game object of a tile and invalidates the address index.
func (g *Grid) SetGameObject(x, y int, object string) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.GameObject = object
	g.addrDirty = true
	return nil
}

// SetCollision sets the collision flag of a tile. The address index only
// holds walkable positions, so this invalidates it too.
func (g *Grid) SetCollision(x, y int, collision bool) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.Collision = collision
	g.addrDirty = true
	return nil
}

// IsCollidable reports whether the tile at (x, y) is collidable.
// Out-of-bounds positions are treated as collidable.
func (g *Grid) IsCollidable(x, y int) bool {
	t, err := g.Tile(x, y)
	if err != nil {
		return true
	}
	return t.IsCollidable()
}

// AddEvent places an event on the tile at (x, y).
func (g *Grid) AddEvent(x, y int, e Event) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.AddEvent(e)
	return nil
}

// RemoveEvent removes an event from the tile at (x, y).
func (g *Grid) RemoveEvent(x, y int, e Event) error {
	t, err := g.Tile(x, y)
	if err != nil {
		return err
	}
	t.RemoveEvent(e)
	return nil
}

// Sector returns the sector of the tile at the position. An empty sector
// is an error: the caller asked for location context the map cannot give.
func (g *Grid) Sector(pos Coord) (string, error) {
	t, err := g.Tile(pos.X, pos.Y)
	if err != nil {
		return "", err
	}
	if t.Sector == "" {
		return "", fmt.Errorf("sector not defined for tile %s", pos)
	}
	return t.Sector, nil
}

// Address levels, outermost first.
const (
	LevelWorld      = "world"
	LevelSector     = "sector"
	LevelArena      = "arena"
	LevelGameObject = "game_object"
)

// TilePath builds the hierarchical address of a tile up to the given
// level, e.g. "Greenhollow:Tavern:Tavern Hall" for LevelArena.
func (g *Grid) TilePath(pos Coord, level string) (string, error) {
	t, err := g.Tile(pos.X, pos.Y)
	if err != nil {
		return "", err
	}

	parts := []string{g.worldName, t.Sector, t.Arena, t.GameObject}
	levels := []string{LevelWorld, LevelSector, LevelArena, LevelGameObject}
	depth := -1
	for i, l := range levels {
		if l == level {
			depth = i + 1
			break
		}
	}
	if depth < 0 {
		return "", fmt.Errorf("invalid address level %q", level)
	}
	for _, p := range parts[:depth] {
		if p == "" {
			return "", fmt.Errorf("address level %q is missing for tile %s", level, pos)
		}
	}
	return strings.Join(parts[:depth], ":"), nil
}

// NearbyPositions returns every position within the square radius around
// the center, clamped to the grid. Includes the center itself.
func (g *Grid) NearbyPositions(center Coord, radius int) []Coord {
	var out []Coord
	for x := max(0, center.X-radius); x < min(g.width, center.X+radius+1); x++ {
		for y := max(0, center.Y-radius); y < min(g.height, center.Y+radius+1); y++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// PositionsByAddress returns the walkable positions whose tile address
// exactly matches the given prefix string. The backing index is rebuilt
// lazily, so a lookup never observes a stale entry.
func (g *Grid) PositionsByAddress(address string) []Coord {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}
	g.rebuildAddressIndex()
	return g.addrIndex[address]
}

func (g *Grid) rebuildAddressIndex() {
	if !g.addrDirty && g.addrIndex != nil {
		return
	}
	idx := make(map[string][]Coord)
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			t := &g.tiles[x][y]
			if t.Collision || t.Sector == "" {
				continue
			}
			pos := Coord{X: x, Y: y}
			key := g.worldName + ":" + t.Sector
			idx[key] = append(idx[key], pos)
			if t.Arena == "" {
				continue
			}
			key += ":" + t.Arena
			idx[key] = append(idx[key], pos)
			if t.GameObject == "" {
				continue
			}
			key += ":" + t.GameObject
			idx[key] = append(idx[key], pos)
		}
	}
	g.addrIndex = idx
	g.addrDirty = false
}

// FindPositions scans the grid for tiles matching the given sector,
// arena, and game object. Empty filters act as wildcards. Collidable
// tiles are skipped unless includeCollidable is set.
func (g *Grid) FindPositions(sector, arena, object string, includeCollidable bool) []Coord {
	var out []Coord
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			t := &g.tiles[x][y]
			if t.Collision && !includeCollidable {
				continue
			}
			if sector != "" && t.Sector != sector {
				continue
			}
			if arena != "" && t.Arena != arena {
				continue
			}
			if object != "" && t.GameObject != object {
				continue
			}
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%s, %dx%d)", g.worldName, g.width, g.height)
}
