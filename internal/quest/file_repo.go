package quest

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
	Users map[string]userQuestState `json:"users"`
}

type userQuestState struct {
	Quests map[model.QuestID]model.Quest `json:"quests"`
}

func newFileState() fileState {
	return fileState{Users: map[string]userQuestState{}}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent quest repository.
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
		path: filepath.Join(dataDir, "quests.json"),
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
		loaded.Users = map[string]userQuestState{}
	}
	for uid, us := range loaded.Users {
		if us.Quests == nil {
			us.Quests = map[model.QuestID]model.Quest{}
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

func (r *FileRepo) userStateLocked() userQuestState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userQuestState{Quests: map[model.QuestID]model.Quest{}}
		r.store.s.Users[r.userID] = us
		return us
	}
	if us.Quests == nil {
		us.Quests = map[model.QuestID]model.Quest{}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) Create(q model.Quest) (model.Quest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()

	normalizeQuest(&q)
	if q.TemplateID != nil && q.Open() && hasOpenForTemplate(us.Quests, *q.TemplateID) {
		return model.Quest{}, ErrOpenInstanceExists
	}

	now := time.Now()
	q.ID = newID()
	q.CreatedAt = now
	q.UpdatedAt = now

	us.Quests[q.ID] = q
	if err := r.store.saveLocked(); err != nil {
		return model.Quest{}, err
	}
	return q, nil
}

func (r *FileRepo) Get(id model.QuestID) (model.Quest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Quests == nil {
		return model.Quest{}, ErrNotFound
	}
	q, ok := us.Quests[id]
	if !ok {
		return model.Quest{}, ErrNotFound
	}
	return q, nil
}

func (r *FileRepo) List(filter ListFilter) ([]model.Quest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Quests == nil {
		return []model.Quest{}, nil
	}

	out := make([]model.Quest, 0, len(us.Quests))
	for _, q := range us.Quests {
		if matchesFilter(q, filter) {
			out = append(out, q)
		}
	}
	sortQuests(out)
	return out, nil
}

func (r *FileRepo) UpdateStatus(id model.QuestID, status model.QuestStatus, now time.Time) (model.Quest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	q, ok := us.Quests[id]
	if !ok {
		return model.Quest{}, ErrNotFound
	}
	applyStatus(&q, status, now)
	us.Quests[id] = q
	if err := r.store.saveLocked(); err != nil {
		return model.Quest{}, err
	}
	return q, nil
}

func (r *FileRepo) HasOpenForTemplate(id model.TemplateID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Quests == nil {
		return false, nil
	}
	return hasOpenForTemplate(us.Quests, id), nil
}
