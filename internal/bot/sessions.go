package bot

import "sync"

// Settings are the per-chat preferences a user can change at runtime.
type Settings struct {
	MinProfitPercent float64
	DefaultStake     float64
	Notifications    bool
}

// Sessions is a concurrency-safe store of per-chat settings. Chats get the
// configured defaults on first contact and keep their own copy afterwards.
type Sessions struct {
	mu       sync.RWMutex
	chats    map[int64]Settings
	defaults Settings
}

// NewSessions creates a session store seeded with the given defaults.
func NewSessions(defaults Settings) *Sessions {
	return &Sessions{
		chats:    make(map[int64]Settings),
		defaults: defaults,
	}
}

// Get returns the settings for a chat, registering it with the defaults if
// it has not been seen before.
func (s *Sessions) Get(chatID int64) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.chats[chatID]
	if !ok {
		settings = s.defaults
		s.chats[chatID] = settings
	}
	return settings
}

// Update applies fn to a chat's settings under the lock. The chat is
// registered with the defaults first if needed.
func (s *Sessions) Update(chatID int64, fn func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.chats[chatID]
	if !ok {
		settings = s.defaults
	}
	fn(&settings)
	s.chats[chatID] = settings
	return settings
}

// All returns a snapshot of every registered chat and its settings.
func (s *Sessions) All() map[int64]Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]Settings, len(s.chats))
	for id, settings := range s.chats {
		out[id] = settings
	}
	return out
}

// Len returns how many chats are registered.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}
