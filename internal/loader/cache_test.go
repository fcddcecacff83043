package loader

import (
	"errors"
	"sync"
	"testing"

	"github.com/pable/go-cr-dashboard/internal/model"
)

func TestCacheLoadsOncePerPath(t *testing.T) {
	calls := make(map[string]int)
	var mu sync.Mutex
	c := NewCache(func(path string) (*model.Table, error) {
		mu.Lock()
		calls[path]++
		mu.Unlock()
		return &model.Table{Source: path}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get("a.csv"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	first, _ := c.Get("a.csv")
	second, _ := c.Get("a.csv")
	if first != second {
		t.Error("expected the same table instance on repeated calls")
	}
	if _, err := c.Get("b.csv"); err != nil {
		t.Fatalf("Get b: %v", err)
	}

	if calls["a.csv"] != 1 || calls["b.csv"] != 1 {
		t.Errorf("expected one load per path, got %v", calls)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached sources, got %d", c.Len())
	}
}

func TestCacheRemembersFailures(t *testing.T) {
	n := 0
	boom := errors.New("boom")
	c := NewCache(func(string) (*model.Table, error) {
		n++
		return nil, boom
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Get("bad.csv"); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if n != 1 {
		t.Errorf("expected a single load attempt, got %d", n)
	}
}
