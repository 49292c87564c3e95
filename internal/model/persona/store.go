package persona

// Store exposes the trait vocabulary for handlers and parameter validation.
type Store interface {
	List() []Trait
	FindByLabel(label string) (Trait, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Trait
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied traits.
func NewMemoryStore(items []Trait) *MemoryStore {
	return &MemoryStore{items: append([]Trait(nil), items...)}
}

// List returns the vocabulary in display order.
func (s *MemoryStore) List() []Trait {
	return append([]Trait(nil), s.items...)
}

// FindByLabel looks up a trait by its label.
func (s *MemoryStore) FindByLabel(label string) (Trait, bool) {
	for _, item := range s.items {
		if item.Label == label {
			return item, true
		}
	}
	return Trait{}, false
}
