package brain

import (
	"sync"

	"github.com/wonny/gemscreener/internal/contracts"
)

// ResultStore keeps the latest run per market in memory
type ResultStore struct {
	mu     sync.RWMutex
	latest map[contracts.Market]*RunResult
	daily  *DailyResult
}

// NewResultStore creates an empty store
func NewResultStore() *ResultStore {
	return &ResultStore{latest: make(map[contracts.Market]*RunResult)}
}

// Put replaces the latest result for the result's market
func (s *ResultStore) Put(r *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[r.Market] = r
}

// Latest returns the latest result for market
func (s *ResultStore) Latest(market contracts.Market) (*RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[market]
	return r, ok
}

// PutDaily records the last daily run
func (s *ResultStore) PutDaily(d *DailyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = d
}

// LatestDaily returns the last daily run
func (s *ResultStore) LatestDaily() (*DailyResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daily, s.daily != nil
}

// Markets lists markets with a stored result, in run order
func (s *ResultStore) Markets() []contracts.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.Market, 0, len(s.latest))
	for _, m := range contracts.AllMarkets {
		if _, ok := s.latest[m]; ok {
			out = append(out, m)
		}
	}
	return out
}
