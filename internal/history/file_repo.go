package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"questlog/internal/model"
	"questlog/internal/schedule"
)

type fileState struct {
	Users map[string]userHistoryState `json:"users"`
}

type userHistoryState struct {
	Records map[model.HistoryID]model.HistoryRecord `json:"records"`
}

func newFileState() fileState {
	return fileState{Users: map[string]userHistoryState{}}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent history repository.
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
		path: filepath.Join(dataDir, "history.json"),
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
		loaded.Users = map[string]userHistoryState{}
	}
	for uid, us := range loaded.Users {
		if us.Records == nil {
			us.Records = map[model.HistoryID]model.HistoryRecord{}
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

func (r *FileRepo) userStateLocked() userHistoryState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userHistoryState{Records: map[model.HistoryID]model.HistoryRecord{}}
		r.store.s.Users[r.userID] = us
		return us
	}
	if us.Records == nil {
		us.Records = map[model.HistoryID]model.HistoryRecord{}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) Insert(rec model.HistoryRecord) (model.HistoryRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	rec.ID = newID()
	us.Records[rec.ID] = rec
	if err := r.store.saveLocked(); err != nil {
		return model.HistoryRecord{}, err
	}
	return rec, nil
}

func (r *FileRepo) List(since string) ([]model.HistoryRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Records == nil {
		return []model.HistoryRecord{}, nil
	}

	out := make([]model.HistoryRecord, 0, len(us.Records))
	for _, rec := range us.Records {
		if since != "" && rec.RecordedDate < since {
			continue
		}
		out = append(out, rec)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *FileRepo) CountCleared(templateID model.TemplateID, w schedule.Window) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Records == nil {
		return 0, nil
	}
	return countCleared(us.Records, templateID, w), nil
}
