package services

import (
	"encoding/json"
	"sort"
	"strings"
)

// Registry is the ordered, name-unique collection of services for one
// session. It stays sorted by name after every mutation. It is not safe for
// concurrent mutation; the owning session serializes access.
type Registry struct {
	services []Service
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Load parses a decrypted config payload into a sorted registry.
func Load(payload []byte) (*Registry, error) {
	list, err := Parse(payload)
	if err != nil {
		return nil, err
	}

	r := &Registry{services: list}
	r.Sort()
	return r, nil
}

// Add validates and appends a new service with iterations 1 and no pattern,
// then re-sorts. The name is trimmed first. Adding an existing name is
// ErrDuplicate and changes nothing.
func (r *Registry) Add(name string) (Service, error) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return Service{}, ErrInvalidName
	}
	if _, ok := r.Get(name); ok {
		return Service{}, ErrDuplicate
	}

	svc := Service{Name: name, Iterations: 1}
	r.services = append(r.services, svc)
	r.Sort()

	return svc, nil
}

// Remove deletes the service with exactly this name. Removing an absent name
// is a no-op; the return reports whether anything was deleted.
func (r *Registry) Remove(name string) bool {
	for i, s := range r.services {
		if s.Name == name {
			r.services = append(r.services[:i], r.services[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the service with exactly this name.
func (r *Registry) Get(name string) (Service, bool) {
	for _, s := range r.services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// Bump increments the iterations counter for name, rotating its password.
func (r *Registry) Bump(name string) (Service, error) {
	return r.update(name, func(s *Service) { s.Iterations++ })
}

// SetPattern records a pattern key for name. Unknown keys are allowed here;
// they fail (or resolve) at synthesis time.
func (r *Registry) SetPattern(name, pattern string) (Service, error) {
	return r.update(name, func(s *Service) { s.Pattern = pattern })
}

func (r *Registry) update(name string, fn func(*Service)) (Service, error) {
	for i := range r.services {
		if r.services[i].Name == name {
			fn(&r.services[i])
			return r.services[i], nil
		}
	}
	return Service{}, ErrNotFound
}

// Sort orders the registry by name ascending. The sort is stable, though
// names are unique so stability only matters transiently during loads.
func (r *Registry) Sort() {
	sort.SliceStable(r.services, func(i, j int) bool {
		return r.services[i].Name < r.services[j].Name
	})
}

// ReplaceAll swaps in a whole new service list, used after a successful
// decrypt. It does not sort; callers that need order call Sort.
func (r *Registry) ReplaceAll(list []Service) {
	r.services = append([]Service(nil), list...)
}

// All returns a copy of the service list in registry order.
func (r *Registry) All() []Service {
	return append([]Service(nil), r.services...)
}

// Len returns the number of services.
func (r *Registry) Len() int {
	return len(r.services)
}

// Save encodes the registry as the JSON array that gets encrypted into the
// config blob. Defaulted iterations are written back as 1.
func (r *Registry) Save() ([]byte, error) {
	if r.services == nil {
		return json.Marshal([]Service{})
	}
	return json.Marshal(r.services)
}
