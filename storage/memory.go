package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// MemoryStore is an in-memory Store used by tests and the one-shot CLI.
type MemoryStore struct {
	mu sync.RWMutex

	rules        []types.Rule
	templates    []types.Template
	integrations map[types.StoreID]types.Integration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		integrations: make(map[types.StoreID]types.Integration),
	}
}

func (s *MemoryStore) ListRules(ctx context.Context) ([]types.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *MemoryStore) GetRule(ctx context.Context, id string) (types.Rule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rule := range s.rules {
		if rule.ID == id {
			return rule, true, nil
		}
	}
	return types.Rule{}, false, nil
}

func (s *MemoryStore) CreateRule(ctx context.Context, rule types.Rule) (types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	s.rules = append(s.rules, rule)
	return rule, nil
}

func (s *MemoryStore) UpdateRule(ctx context.Context, rule types.Rule) (types.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			return rule, nil
		}
	}
	return types.Rule{}, ErrNotFound
}

func (s *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListTemplates(ctx context.Context) ([]types.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Template, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

func (s *MemoryStore) GetTemplateBySlug(ctx context.Context, slug string) (types.Template, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tpl := range s.templates {
		if tpl.Slug == slug {
			return tpl, true, nil
		}
	}
	return types.Template{}, false, nil
}

func (s *MemoryStore) GetDefaultTemplate(ctx context.Context) (types.Template, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tpl := range s.templates {
		if tpl.IsDefault {
			return tpl, true, nil
		}
	}
	return types.Template{}, false, nil
}

func (s *MemoryStore) CreateTemplate(ctx context.Context, tpl types.Template) (types.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.IsDefault {
		s.clearDefaultLocked(tpl.ID)
	}
	s.templates = append(s.templates, tpl)
	return tpl, nil
}

func (s *MemoryStore) UpdateTemplate(ctx context.Context, tpl types.Template) (types.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == tpl.ID {
			if tpl.IsDefault {
				s.clearDefaultLocked(tpl.ID)
			}
			s.templates[i] = tpl
			return tpl, nil
		}
	}
	return types.Template{}, ErrNotFound
}

func (s *MemoryStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// clearDefaultLocked unsets the default flag on every template except
// the one being written. Caller holds the write lock.
func (s *MemoryStore) clearDefaultLocked(keepID string) {
	for i := range s.templates {
		if s.templates[i].ID != keepID {
			s.templates[i].IsDefault = false
		}
	}
}

func (s *MemoryStore) ListIntegrations(ctx context.Context) ([]types.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Integration, 0, len(s.integrations))
	for _, integration := range s.integrations {
		out = append(out, integration)
	}
	return out, nil
}

func (s *MemoryStore) GetIntegration(ctx context.Context, provider types.StoreID) (types.Integration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	integration, ok := s.integrations[provider]
	return integration, ok, nil
}

func (s *MemoryStore) UpsertIntegration(ctx context.Context, integration types.Integration) (types.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.integrations[integration.Provider]; ok {
		integration.ID = existing.ID
	} else if integration.ID == "" {
		integration.ID = uuid.NewString()
	}
	s.integrations[integration.Provider] = integration
	return integration, nil
}

func (s *MemoryStore) Close() error { return nil }
