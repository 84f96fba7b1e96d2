package history

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

// MaxEntries caps the recent-search list.
const MaxEntries = 5

// DefaultKey is the slot key the search history lives under.
const DefaultKey = "weatherSearchHistory"

// ErrSlotEmpty is returned by a Slot when nothing was written under the key.
var ErrSlotEmpty = errors.New("history slot is empty")

// Slot is a durable string cell addressed by key.
type Slot interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}

// Store persists the search history as a JSON array of city names.
type Store struct {
	slot Slot
	key  string
	log  zerolog.Logger
}

func NewStore(slot Slot, key string, logger zerolog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	logger = logger.With().Str("component", "HistoryStore").Logger()
	return &Store{slot: slot, key: key, log: logger}
}

// Load returns the stored list, or an empty one when the slot is absent,
// unreadable or malformed.
func (s *Store) Load(ctx context.Context) []string {
	raw, err := s.slot.Read(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.log.Warn().Err(err).Ctx(ctx).Str("key", s.key).Msg("failed to read history slot")
		}
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.log.Warn().Err(err).Ctx(ctx).Str("key", s.key).Msg("discarding malformed history")
		return []string{}
	}
	if list == nil {
		return []string{}
	}
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	return list
}

// Save overwrites the slot with list.
func (s *Store) Save(ctx context.Context, list []string) error {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}

	if err := s.slot.Write(ctx, s.key, string(data)); err != nil {
		s.log.Error().Err(err).Ctx(ctx).Str("key", s.key).Msg("failed to write history slot")
		return err
	}
	s.log.Debug().Ctx(ctx).Int("entries", len(list)).Msg("history saved")
	return nil
}

// Remember prepends city when it is not already present, keeping at most
// MaxEntries names. The boolean reports whether list changed.
func Remember(list []string, city string) ([]string, bool) {
	for _, c := range list {
		if c == city {
			return list, false
		}
	}

	next := make([]string, 0, MaxEntries)
	next = append(next, city)
	for _, c := range list {
		if len(next) == MaxEntries {
			break
		}
		next = append(next, c)
	}
	return next, true
}
