package cache

import (
	"sync"
	"testing"
	"time"
)

func TestSetGetCopy(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	s.Set("k1", []byte("abc"), 0)
	v, ok := s.Get("k1")
	if !ok || string(v) != "abc" {
		t.Fatalf("Get mismatch: ok=%v v=%q", ok, v)
	}
	// modifying the returned copy must not change the store
	v[0] = 'X'
	v2, ok := s.Get("k1")
	if !ok || string(v2) != "abc" {
		t.Fatalf("Get after modify copy mismatch: ok=%v v=%q", ok, v2)
	}
}

func TestTTLExpiry(t *testing.T) {
	s := New(Options{SweepInterval: -1})
	defer s.Close()

	now := time.Unix(1000, 0)
	s.nowFn = func() time.Time { return now }

	s.Set("short", []byte("1"), time.Second)
	s.Set("forever", []byte("2"), 0)

	if _, ok := s.Get("short"); !ok {
		t.Fatalf("expected key before expiry")
	}

	now = now.Add(2 * time.Second)
	if _, ok := s.Get("short"); ok {
		t.Fatalf("expected key to expire")
	}
	if _, ok := s.Get("forever"); !ok {
		t.Fatalf("expected key without ttl to survive")
	}

	st := s.Stats()
	if st.Expired != 1 || st.Keys != 1 || st.Hits != 2 || st.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSweep(t *testing.T) {
	s := New(Options{SweepInterval: -1})
	defer s.Close()

	now := time.Unix(1000, 0)
	s.nowFn = func() time.Time { return now }
	for _, k := range []string{"a", "b", "c"} {
		s.Set(k, []byte(k), time.Second)
	}
	s.Set("d", []byte("d"), time.Hour)

	now = now.Add(time.Minute)
	s.sweep()
	if s.Len() != 1 {
		t.Fatalf("expected 1 key after sweep, got %d", s.Len())
	}
}

func TestDelete(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	s.Set("k", []byte("v"), 0)
	if !s.Delete("k") {
		t.Fatalf("expected delete to report presence")
	}
	if s.Delete("k") {
		t.Fatalf("expected second delete to report absence")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New(Options{Shards: 4, SweepInterval: time.Millisecond})
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 200; j++ {
				s.Set(key, []byte{byte(j)}, time.Hour)
				s.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 8 {
		t.Fatalf("expected 8 keys, got %d", s.Len())
	}
}
