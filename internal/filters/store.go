package filters

import (
	"sync"
	"time"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// DefaultDebounce is the quiet period applied to free-text query changes
// before a new search fires.
const DefaultDebounce = 400 * time.Millisecond

// CriteriaPatch is a partial update to filter criteria. Only non-nil
// fields are applied; everything else is left untouched.
type CriteriaPatch struct {
	PriceRange *models.PriceRange `json:"price_range,omitempty"`
	FuelType   *string            `json:"fuel_type,omitempty"`
	MinRating  *int               `json:"min_rating,omitempty"`
	Amenities  *[]string          `json:"amenities,omitempty"`
	SortBy     *string            `json:"sort_by,omitempty"`
}

// Store holds one session's search location, filter criteria and
// favourite stations. It performs no validation: malformed price text is
// stored as-is and tolerated downstream. All state is in-memory only and
// discarded when the session goes away.
//
// Store also sequences searches: each search takes a monotonically
// increasing number from BeginSearch, and CommitResults rejects any
// result set older than the newest one committed, so a slow stale fetch
// can never overwrite a fresher list.
type Store struct {
	mu           sync.Mutex
	location     *models.Location
	criteria     models.FilterCriteria
	favourites   []int64
	subscribers  map[int]func()
	nextSubID    int
	searchSeq    uint64
	committedSeq uint64
	results      *models.SearchResponse
}

func NewStore() *Store {
	return &Store{
		criteria:    models.DefaultCriteria(),
		subscribers: make(map[int]func()),
	}
}

func (s *Store) Criteria() models.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

func (s *Store) Location() *models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

// SetLocation replaces the search location wholesale.
func (s *Store) SetLocation(location models.Location) {
	s.mu.Lock()
	s.location = &location
	s.mu.Unlock()
	s.notify()
}

// Merge applies a shallow partial update: only fields present in the
// patch are overwritten. Returns the criteria after the merge.
func (s *Store) Merge(patch CriteriaPatch) models.FilterCriteria {
	s.mu.Lock()
	if patch.PriceRange != nil {
		s.criteria.PriceRange = *patch.PriceRange
	}
	if patch.FuelType != nil {
		s.criteria.FuelType = *patch.FuelType
	}
	if patch.MinRating != nil {
		s.criteria.MinRating = *patch.MinRating
	}
	if patch.Amenities != nil {
		s.criteria.Amenities = *patch.Amenities
	}
	if patch.SortBy != nil {
		s.criteria.SortBy = *patch.SortBy
	}
	merged := s.criteria
	s.mu.Unlock()
	s.notify()
	return merged
}

// Reset restores the fixed default criteria.
func (s *Store) Reset() {
	s.mu.Lock()
	s.criteria = models.DefaultCriteria()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Favourites() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.favourites))
	copy(out, s.favourites)
	return out
}

func (s *Store) SetFavourites(ids []int64) {
	s.mu.Lock()
	s.favourites = make([]int64, len(ids))
	copy(s.favourites, ids)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a callback invoked after every mutation. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// BeginSearch allocates the sequence number for a new search.
func (s *Store) BeginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchSeq++
	return s.searchSeq
}

// CommitResults installs a completed search as the session's current
// list, unless a newer search already committed. Returns whether the
// results were accepted.
func (s *Store) CommitResults(seq uint64, results *models.SearchResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.committedSeq {
		return false
	}
	s.committedSeq = seq
	s.results = results
	return true
}

// Results returns the session's current list, or nil before the first
// committed search.
func (s *Store) Results() *models.SearchResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Manager hands out per-session stores, creating them on first use.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager() *Manager {
	return &Manager{stores: make(map[string]*Store)}
}

func (m *Manager) Get(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = NewStore()
		m.stores[sessionID] = store
	}
	return store
}

// Debounce wraps fn so that bursts of calls collapse into a single
// invocation after the quiet period elapses.
func Debounce(quiet time.Duration, fn func()) func() {
	var mu sync.Mutex
	var timer *time.Timer

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, fn)
	}
}
