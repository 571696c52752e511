package agents

import "sort"

// SpatialMemory is the agent's learned map of the world: a tree of
// world → sector → arena → game objects, grown from perceived tiles.
// An agent can only plan toward places it has seen.
type SpatialMemory struct {
	tree map[string]map[string]map[string][]string
}

// NewSpatialMemory creates an empty spatial memory.
func NewSpatialMemory() *SpatialMemory {
	return &SpatialMemory{tree: make(map[string]map[string]map[string][]string)}
}

// Observe records a perceived tile. Empty sector or arena is ignored;
// an empty object still registers the arena itself.
func (m *SpatialMemory) Observe(worldName, sector, arena, object string) {
	if worldName == "" || sector == "" || arena == "" {
		return
	}
	sectors, ok := m.tree[worldName]
	if !ok {
		sectors = make(map[string]map[string][]string)
		m.tree[worldName] = sectors
	}
	arenas, ok := sectors[sector]
	if !ok {
		arenas = make(map[string][]string)
		sectors[sector] = arenas
	}
	objects := arenas[arena]
	if object != "" && !contains(objects, object) {
		objects = append(objects, object)
	}
	arenas[arena] = objects
}

// Sectors returns the known sectors of a world, sorted.
func (m *SpatialMemory) Sectors(worldName string) []string {
	return sortedKeys(m.tree[worldName])
}

// Arenas returns the known arenas of a sector, sorted.
func (m *SpatialMemory) Arenas(worldName, sector string) []string {
	return sortedKeys(m.tree[worldName][sector])
}

// Objects returns the game objects seen in an arena, in observation
// order.
func (m *SpatialMemory) Objects(worldName, sector, arena string) []string {
	return m.tree[worldName][sector][arena]
}

// KnowsArena reports whether the agent has seen the arena.
func (m *SpatialMemory) KnowsArena(worldName, sector, arena string) bool {
	_, ok := m.tree[worldName][sector][arena]
	return ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
