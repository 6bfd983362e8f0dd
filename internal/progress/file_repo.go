package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"questlog/internal/model"
)

type fileState struct {
	Users map[string]model.Progression `json:"users"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent progression repository.
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
		path: filepath.Join(dataDir, "progress.json"),
		s:    fileState{Users: map[string]model.Progression{}},
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
			s.s = fileState{Users: map[string]model.Progression{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]model.Progression{}
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

func (r *FileRepo) Get(now time.Time) (model.Progression, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.store.s.Users[r.userID]
	p, changed := ResetIfNeeded(p, now)
	if changed {
		r.store.s.Users[r.userID] = p
		if err := r.store.saveLocked(); err != nil {
			return model.Progression{}, err
		}
	}
	return p, nil
}

func (r *FileRepo) RecordClear(xp int, now time.Time) (model.Progression, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := ApplyClear(r.store.s.Users[r.userID], xp, now)
	r.store.s.Users[r.userID] = p
	if err := r.store.saveLocked(); err != nil {
		return model.Progression{}, err
	}
	return p, nil
}
