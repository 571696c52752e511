package world

// Tile is a single cell of the grid. Sector/arena/game-object form the
// hierarchical address; Events holds whatever is currently happening here.
type Tile struct {
	Sector     string  `json:"sector,omitempty"`
	Arena      string  `json:"arena,omitempty"`
	GameObject string  `json:"game_object,omitempty"`
	Collision  bool    `json:"collision"`
	Events     []Event `json:"events,omitempty"`
}

// AddEvent appends an event to the tile.
func (t *Tile) AddEvent(e Event) {
	t.Events = append(t.Events, e)
}

// RemoveEvent removes the first occurrence of an event from the tile.
func (t *Tile) RemoveEvent(e Event) {
	for i, have := range t.Events {
		if have == e {
			t.Events = append(t.Events[:i], t.Events[i+1:]...)
			return
		}
	}
}

// HasEvent reports whether the tile currently holds the event.
func (t *Tile) HasEvent(e Event) bool {
	for _, have := range t.Events {
		if have == e {
			return true
		}
	}
	return false
}

// IsCollidable reports whether agents can enter the tile.
func (t *Tile) IsCollidable() bool {
	return t.Collision
}
