package template

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"questlog/internal/model"
)

type fileState struct {
	Users map[string]userTemplateState `json:"users"`
}

type userTemplateState struct {
	Templates map[model.TemplateID]model.RecurrenceTemplate `json:"templates"`
}

func newFileState() fileState {
	return fileState{Users: map[string]userTemplateState{}}
}

func newUserTemplateState() userTemplateState {
	return userTemplateState{Templates: map[model.TemplateID]model.RecurrenceTemplate{}}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent template repository.
// It is user-scoped; call ForUser(userID) to get a scoped view.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "templates.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st, userID: "default"}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]userTemplateState{}
	}
	for uid, us := range loaded.Users {
		if us.Templates == nil {
			us.Templates = map[model.TemplateID]model.RecurrenceTemplate{}
		}
		loaded.Users[uid] = us
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) ForUser(userID string) *FileRepo {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &FileRepo{store: r.store, userID: userID}
}

func (r *FileRepo) userStateLocked() userTemplateState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = newUserTemplateState()
		r.store.s.Users[r.userID] = us
		return us
	}
	if us.Templates == nil {
		us.Templates = map[model.TemplateID]model.RecurrenceTemplate{}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) Create(t model.RecurrenceTemplate) (model.RecurrenceTemplate, error) {
	if !t.Kind.Valid() {
		return model.RecurrenceTemplate{}, ErrInvalidKind
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	sanitize(&t)

	us.Templates[t.ID] = t
	if err := r.store.saveLocked(); err != nil {
		return model.RecurrenceTemplate{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(id model.TemplateID) (model.RecurrenceTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Templates == nil {
		return model.RecurrenceTemplate{}, ErrNotFound
	}
	t, ok := us.Templates[id]
	if !ok {
		return model.RecurrenceTemplate{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) Update(id model.TemplateID, p Patch) (model.RecurrenceTemplate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	t, ok := us.Templates[id]
	if !ok {
		return model.RecurrenceTemplate{}, ErrNotFound
	}

	applyPatch(&t, p)
	t.UpdatedAt = time.Now()
	sanitize(&t)

	us.Templates[id] = t
	if err := r.store.saveLocked(); err != nil {
		return model.RecurrenceTemplate{}, err
	}
	return t, nil
}

func (r *FileRepo) Delete(id model.TemplateID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if _, ok := us.Templates[id]; !ok {
		return ErrNotFound
	}
	delete(us.Templates, id)
	return r.store.saveLocked()
}

func (r *FileRepo) List(filter ListFilter) ([]model.RecurrenceTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Templates == nil {
		return []model.RecurrenceTemplate{}, nil
	}

	out := make([]model.RecurrenceTemplate, 0, len(us.Templates))
	for _, t := range us.Templates {
		if matchesFilter(t, filter) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FileRepo) MarkGenerated(id model.TemplateID, day string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	t, ok := us.Templates[id]
	if !ok {
		return ErrNotFound
	}
	t.LastGeneratedAt = &day
	us.Templates[id] = t
	return r.store.saveLocked()
}
