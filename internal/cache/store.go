// Package cache is a sharded in-memory byte store with per-key TTL, used to
// keep recently fetched results close to the client.
//
// Expired keys are dropped lazily on read and by a background sweeper; Close
// stops the sweeper.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

type Options struct {
	Shards int // default 64
	// SweepInterval is how often expired keys are purged (default 1m, <0 disables).
	SweepInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Shards <= 0 {
		o.Shards = 64
	}
	if o.SweepInterval == 0 {
		o.SweepInterval = time.Minute
	}
	return o
}

// Stats is a snapshot of store counters.
type Stats struct {
	Keys    uint64
	Sets    uint64
	Hits    uint64
	Misses  uint64
	Expired uint64
}

type Store struct {
	shards  []shard
	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	nowFn   func() time.Time

	mKeys    atomic.Uint64
	mSets    atomic.Uint64
	mHits    atomic.Uint64
	mMisses  atomic.Uint64
	mExpired atomic.Uint64
}

type shard struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	val      []byte
	expireAt int64 // unix nano; 0 = never
}

func New(opts Options) *Store {
	opts = opts.withDefaults()
	s := &Store{
		shards:  make([]shard, opts.Shards),
		closeCh: make(chan struct{}),
		nowFn:   time.Now,
	}
	for i := range s.shards {
		s.shards[i].m = make(map[string]entry)
	}
	if opts.SweepInterval > 0 {
		s.wg.Add(1)
		go s.sweeper(opts.SweepInterval)
	}
	return s
}

func (s *Store) Close() {
	s.once.Do(func() { close(s.closeCh) })
	s.wg.Wait()
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum64()%uint64(len(s.shards))]
}

// Set stores a copy of val. A ttl <= 0 never expires.
func (s *Store) Set(key string, val []byte, ttl time.Duration) {
	var expAt int64
	if ttl > 0 {
		expAt = s.nowFn().Add(ttl).UnixNano()
	}
	v := make([]byte, len(val))
	copy(v, val)

	sh := s.shardFor(key)
	sh.mu.Lock()
	if _, existed := sh.m[key]; !existed {
		s.mKeys.Add(1)
	}
	sh.m[key] = entry{val: v, expireAt: expAt}
	sh.mu.Unlock()
	s.mSets.Add(1)
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.m[key]
	sh.mu.RUnlock()

	if !ok {
		s.mMisses.Add(1)
		return nil, false
	}
	if e.expired(s.nowFn().UnixNano()) {
		sh.mu.Lock()
		if e2, ok := sh.m[key]; ok && e2.expired(s.nowFn().UnixNano()) {
			delete(sh.m, key)
			s.mKeys.Add(^uint64(0))
			s.mExpired.Add(1)
		}
		sh.mu.Unlock()
		s.mMisses.Add(1)
		return nil, false
	}

	s.mHits.Add(1)
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, ok := sh.m[key]
	if ok {
		delete(sh.m, key)
		s.mKeys.Add(^uint64(0))
	}
	sh.mu.Unlock()
	return ok
}

// Len is the number of stored keys, including expired ones not yet purged.
func (s *Store) Len() int { return int(s.mKeys.Load()) }

func (s *Store) Stats() Stats {
	return Stats{
		Keys:    s.mKeys.Load(),
		Sets:    s.mSets.Load(),
		Hits:    s.mHits.Load(),
		Misses:  s.mMisses.Load(),
		Expired: s.mExpired.Load(),
	}
}

func (e entry) expired(now int64) bool { return e.expireAt != 0 && e.expireAt <= now }

func (s *Store) sweeper(every time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.closeCh:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep purges every expired key.
func (s *Store) sweep() {
	now := s.nowFn().UnixNano()
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, e := range sh.m {
			if e.expired(now) {
				delete(sh.m, k)
				s.mKeys.Add(^uint64(0))
				s.mExpired.Add(1)
			}
		}
		sh.mu.Unlock()
	}
}
