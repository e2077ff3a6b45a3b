package subscription

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	sid1 := r.Register("foo", func(Msg) {})
	sid2 := r.Register("bar", func(Msg) {})

	if sid1 == sid2 {
		t.Fatalf("Register returned duplicate sid %q", sid1)
	}
	if r.Count() != 2 {
		t.Errorf("Count = %d, want 2", r.Count())
	}

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != sid1 || ids[1] != sid2 {
		t.Errorf("IDs = %v, want [%s %s] in insertion order", ids, sid1, sid2)
	}

	subject, err := r.Subject(sid2)
	if err != nil {
		t.Fatalf("Subject failed: %v", err)
	}
	if subject != "bar" {
		t.Errorf("Subject = %q, want %q", subject, "bar")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	invoked := false
	sid := r.Register("foo", func(Msg) { invoked = true })

	h, err := r.Lookup(sid)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	h(Msg{Subject: "foo", SID: sid, Data: []byte("hello")})
	if !invoked {
		t.Error("handler was not invoked")
	}

	if _, err := r.Lookup("999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryDeactivate(t *testing.T) {
	r := NewRegistry()

	sid1 := r.Register("foo", func(Msg) {})
	sid2 := r.Register("bar", func(Msg) {})

	if err := r.Deactivate(sid1); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	if _, err := r.Lookup(sid1); !errors.Is(err, ErrInactive) {
		t.Errorf("Lookup after deactivate error = %v, want ErrInactive", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != sid2 {
		t.Errorf("IDs = %v, want [%s]", ids, sid2)
	}

	// Deactivated sids are still known, not forgotten.
	if _, err := r.Subject(sid1); err != nil {
		t.Errorf("Subject after deactivate = %v, want nil", err)
	}
	if err := r.Deactivate(sid1); !errors.Is(err, ErrInactive) {
		t.Errorf("second Deactivate = %v, want ErrInactive", err)
	}
	if err := r.Deactivate("999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deactivate(unknown) = %v, want ErrNotFound", err)
	}
}

func TestRegistryNeverReusesIDs(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sid := r.Register("foo", func(Msg) {})
		if seen[sid] {
			t.Fatalf("sid %q issued twice", sid)
		}
		seen[sid] = true
		if i%2 == 0 {
			r.Deactivate(sid)
		}
	}
}

func TestRegistryEach(t *testing.T) {
	r := NewRegistry()

	sid1 := r.Register("foo", func(Msg) {})
	r.Register("bar", func(Msg) {})
	sid3 := r.Register("baz", func(Msg) {})
	r.Deactivate(sid1)

	var subjects []string
	r.Each(func(sid, subject string) {
		subjects = append(subjects, subject)
	})
	if len(subjects) != 2 || subjects[0] != "bar" || subjects[1] != "baz" {
		t.Errorf("Each visited %v, want [bar baz]", subjects)
	}
	_ = sid3
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	sid := r.Register("foo", func(Msg) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register("bar", func(Msg) {})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Lookup(sid)
				r.Count()
				r.IDs()
			}
		}()
	}
	wg.Wait()

	if r.Count() != 801 {
		t.Errorf("Count = %d, want 801", r.Count())
	}
}
