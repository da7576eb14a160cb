package project

import "github.com/go-gl/mathgl/mgl64"

// Store exposes the read-only showcase catalog.
type Store interface {
	List() []Project
	FindByID(id int) (Project, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Project
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied projects.
func NewMemoryStore(items []Project) *MemoryStore {
	return &MemoryStore{items: append([]Project(nil), items...)}
}

// List returns the catalog in showcase order.
func (s *MemoryStore) List() []Project {
	return append([]Project(nil), s.items...)
}

// FindByID looks up a project by identifier.
func (s *MemoryStore) FindByID(id int) (Project, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Project{}, false
}

// Link is a decorative line between two nearby projects.
type Link struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// linkDistance is the maximum distance at which two projects get connected.
const linkDistance = 4.0

// Links connects every pair of projects closer than linkDistance.
func Links(items []Project) []Link {
	var links []Link
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := mgl64.Vec3(items[i].Position), mgl64.Vec3(items[j].Position)
			if a.Sub(b).Len() < linkDistance {
				links = append(links, Link{From: items[i].ID, To: items[j].ID})
			}
		}
	}
	return links
}
