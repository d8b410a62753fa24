package workspace

import (
	"sync"

	"github.com/harrison/textguard/internal/models"
)

// Memory is an in-process Workspace.
type Memory struct {
	mu        sync.Mutex
	order     []string
	resources map[string]*models.TextResource
}

// NewMemory creates an empty in-memory workspace.
func NewMemory() *Memory {
	return &Memory{resources: make(map[string]*models.TextResource)}
}

func (m *Memory) Names() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.order))
	copy(names, m.order)
	return names, nil
}

func (m *Memory) Get(name string) (*models.TextResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *Memory) Add(res models.TextResource) (string, error) {
	if err := res.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res.Name = UniqueName(res.Name, func(n string) bool {
		_, ok := m.resources[n]
		return ok
	})
	m.resources[res.Name] = &res
	m.order = append(m.order, res.Name)
	return res.Name, nil
}

func (m *Memory) Rename(oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.resources[oldName]
	if !ok {
		return ErrNotFound
	}
	if oldName == newName {
		return nil
	}
	if _, taken := m.resources[newName]; taken {
		return ErrExists
	}

	delete(m.resources, oldName)
	res.Name = newName
	m.resources[newName] = res
	for i, n := range m.order {
		if n == oldName {
			m.order[i] = newName
			break
		}
	}
	return nil
}

func (m *Memory) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resources[name]; !ok {
		return ErrNotFound
	}
	delete(m.resources, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
