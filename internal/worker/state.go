package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kazz187/agentfeed/internal/feed"
	"github.com/kazz187/agentfeed/pkg/cerr"
	"github.com/kazz187/agentfeed/pkg/storage"
)

// State is the worker's persisted cursor. A nil LastProcessedTimestamp means nothing has been processed.
type State struct {
	LastProcessedTimestamp *string `json:"last_processed_timestamp"`
	LastSave               string  `json:"last_save,omitempty"`
}

func (s *State) Cursor() string {
	if s == nil || s.LastProcessedTimestamp == nil {
		return ""
	}
	return *s.LastProcessedTimestamp
}

// StateStore keeps State as a JSON document in a storage.Storage.
type StateStore struct {
	storage storage.Storage
	key     string
	now     func() time.Time
}

func NewStateStore(s storage.Storage, key string) *StateStore {
	return &StateStore{storage: s, key: key, now: time.Now}
}

// Load returns the stored state. On first run an empty state is written and returned.
func (s *StateStore) Load(ctx context.Context) (*State, error) {
	data, err := s.storage.Read(ctx, s.key)
	if err != nil {
		werr := cerr.WrapStorageReadError("worker state", err)
		if cerr.IsCode(werr, cerr.NotFound) {
			st := &State{}
			return st, s.Save(ctx, st)
		}
		return nil, werr
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, cerr.NewError(cerr.DataLoss, "corrupt worker state", err)
	}
	return &st, nil
}

// Save stamps last_save and writes the state.
func (s *StateStore) Save(ctx context.Context, st *State) error {
	st.LastSave = feed.FormatTimestamp(s.now())
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to marshal worker state", err)
	}
	if err := s.storage.Write(ctx, s.key, data); err != nil {
		return cerr.WrapStorageWriteError("worker state", err)
	}
	return nil
}

// Peek is Load without the first-run write. A missing state reads as empty.
func (s *StateStore) Peek(ctx context.Context) (*State, error) {
	ok, err := s.storage.Exists(ctx, s.key)
	if err != nil {
		return nil, cerr.WrapStorageReadError("worker state", err)
	}
	if !ok {
		return &State{}, nil
	}
	return s.Load(ctx)
}
