package mentorship

import (
	"sync"
	"testing"
)

func TestKeyedMutex(t *testing.T) {
	km := newKeyedMutex()

	var wg sync.WaitGroup
	counts := map[string]*int{"a": new(int), "b": new(int)}
	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := km.Lock(key)
				defer unlock()
				*counts[key]++
			}(key)
		}
	}
	wg.Wait()

	if *counts["a"] != 50 || *counts["b"] != 50 {
		t.Errorf("counts = %d, %d; want 50 each", *counts["a"], *counts["b"])
	}
	if len(km.locks) != 0 {
		t.Errorf("len(locks) = %d; want 0", len(km.locks))
	}

	unlock := km.Lock("a")
	unlock()
	unlock() // no-op
	if len(km.locks) != 0 {
		t.Errorf("len(locks) = %d after double unlock; want 0", len(km.locks))
	}
}
