package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tutorials/internal/model"
)

type memoryTutorialRepo struct {
	mu        sync.RWMutex
	tutorials map[int64]model.Tutorial
	lastID    int64
}

// NewMemoryTutorialRepository creates a TutorialRepository that keeps
// everything in process memory. Ids are never reused.
func NewMemoryTutorialRepository() TutorialRepository {
	return &memoryTutorialRepo{tutorials: make(map[int64]model.Tutorial)}
}

func (r *memoryTutorialRepo) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	return r.filter(func(model.Tutorial) bool { return true }), nil
}

func (r *memoryTutorialRepo) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tutorials[id]
	if !ok {
		return nil, nil
	}
	c := clone(t)
	return &c, nil
}

func (r *memoryTutorialRepo) Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := clone(*t)
	if saved.ID == 0 {
		r.lastID++
		saved.ID = r.lastID
	} else if saved.ID > r.lastID {
		r.lastID = saved.ID
	}
	r.tutorials[saved.ID] = saved

	out := clone(saved)
	return &out, nil
}

func (r *memoryTutorialRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tutorials, id)
	return nil
}

func (r *memoryTutorialRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tutorials = make(map[int64]model.Tutorial)
	return nil
}

func (r *memoryTutorialRepo) FindByTitleContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	needle := strings.ToLower(text)
	return r.filter(func(t model.Tutorial) bool {
		return strings.Contains(strings.ToLower(t.Title), needle)
	}), nil
}

func (r *memoryTutorialRepo) FindByDescriptionContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	needle := strings.ToLower(text)
	return r.filter(func(t model.Tutorial) bool {
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
	}), nil
}

func (r *memoryTutorialRepo) filter(keep func(model.Tutorial) bool) []model.Tutorial {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.Tutorial{}
	for _, t := range r.tutorials {
		if keep(t) {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// clone copies t so callers never share the description pointer with the store.
func clone(t model.Tutorial) model.Tutorial {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}
