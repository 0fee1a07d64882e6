package catalog

import "go.mongodb.org/mongo-driver/bson/primitive"

// Menus tracks which per-item action menus are open, keyed by record ID so
// the state survives list mutation.
type Menus struct {
	open map[primitive.ObjectID]bool
}

func newMenus() *Menus {
	return &Menus{open: make(map[primitive.ObjectID]bool)}
}

func (m *Menus) Open(id primitive.ObjectID)  { m.open[id] = true }
func (m *Menus) Close(id primitive.ObjectID) { delete(m.open, id) }

func (m *Menus) IsOpen(id primitive.ObjectID) bool {
	return m.open[id]
}

// retain drops entries for IDs that are no longer in the snapshot.
func (m *Menus) retain(s *Store) {
	for id := range m.open {
		if _, ok := s.Find(id); !ok {
			delete(m.open, id)
		}
	}
}
