package ecs

import (
	"errors"
	"testing"
)

type position struct{ X, Y float32 }
type model struct{ Name string }
type tag struct{ Name string }

// go test -run ^TestRegistryLifecycle$ ./engine/ecs -count 1
func TestRegistryLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRegistry()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, r.Create())
			}
			if r.Alive() != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, r.Alive())
			}
			if c.destroyIndex < 0 {
				return
			}
			victim := ents[c.destroyIndex]
			if !r.Destroy(victim) {
				t.Fatal("Destroy should return true for a live entity")
			}
			if r.Valid(victim) {
				t.Fatal("destroyed handle must be invalid")
			}
			if r.Destroy(victim) {
				t.Fatal("second Destroy should report false")
			}

			recycled := r.Create()
			if recycled.ID != victim.ID {
				t.Fatalf("expected id %d to be recycled, got %d", victim.ID, recycled.ID)
			}
			if recycled.Version == victim.Version {
				t.Fatal("recycled handle must carry a new version")
			}
			if r.Valid(victim) {
				t.Fatal("stale handle must stay invalid after recycling")
			}
		})
	}
}

func TestNullIsNeverValid(t *testing.T) {
	r := NewRegistry()
	r.Create()
	if r.Valid(Null) {
		t.Fatal("Null must never be valid")
	}
	if _, err := Add(r, Null, tag{}); !errors.Is(err, ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestCreateWithHint(t *testing.T) {
	r := NewRegistry()

	e, err := r.CreateWithHint(5)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != 5 {
		t.Fatalf("expected id 5, got %d", e.ID)
	}
	if _, err := r.CreateWithHint(5); !errors.Is(err, ErrEntityExists) {
		t.Fatalf("expected ErrEntityExists, got %v", err)
	}

	// skipped slots are handed out by Create
	seen := map[uint32]bool{}
	for i := 0; i < 5; i++ {
		seen[r.Create().ID] = true
	}
	for id := uint32(0); id < 5; id++ {
		if !seen[id] {
			t.Errorf("id %d was not recycled", id)
		}
	}

	// hinting a free slot removes it from the free list
	r.Destroy(Entity{ID: 2, Version: 1})
	if _, err := r.CreateWithHint(2); err != nil {
		t.Fatal(err)
	}
	if next := r.Create(); next.ID == 2 {
		t.Fatal("hinted id must not be handed out twice")
	}
}

func TestComponentRoundTrip(t *testing.T) {
	r := NewRegistry()
	e := r.Create()

	ptr, err := Add(r, e, tag{Name: "Foo"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := Get[tag](r, e)
	if !ok || got.Name != "Foo" {
		t.Fatalf("expected Foo, got %+v", got)
	}
	if got != ptr {
		t.Fatal("Get must return the pointer handed out by Add")
	}
	if _, err := Add(r, e, tag{}); !errors.Is(err, ErrComponentExists) {
		t.Fatalf("expected ErrComponentExists, got %v", err)
	}

	replaced, err := AddOrReplace(r, e, tag{Name: "Bar"})
	if err != nil {
		t.Fatal(err)
	}
	if replaced != ptr || ptr.Name != "Bar" {
		t.Fatal("AddOrReplace must overwrite in place")
	}

	if !Remove[tag](r, e) {
		t.Fatal("Remove should report true")
	}
	if Has[tag](r, e) {
		t.Fatal("component still present after Remove")
	}
	if Remove[tag](r, e) {
		t.Fatal("second Remove should report false")
	}
}

func TestDestroyRemovesComponents(t *testing.T) {
	r := NewRegistry()
	a, b := r.Create(), r.Create()
	Add(r, a, position{X: 1})
	Add(r, b, position{X: 2})
	Add(r, a, tag{Name: "a"})

	r.Destroy(a)
	if Count[position](r) != 1 || Count[tag](r) != 0 {
		t.Fatalf("components of destroyed entity were kept: %d positions, %d tags",
			Count[position](r), Count[tag](r))
	}
	p, ok := Get[position](r, b)
	if !ok || p.X != 2 {
		t.Fatal("surviving component was corrupted by swap-remove")
	}
}

func TestPointerStability(t *testing.T) {
	r := NewRegistry()
	ents := make([]Entity, 8)
	ptrs := make([]*position, 8)
	for i := range ents {
		ents[i] = r.Create()
		ptrs[i], _ = Add(r, ents[i], position{X: float32(i)})
	}
	Remove[position](r, ents[0])
	Remove[position](r, ents[3])
	for i := range ents {
		if i == 0 || i == 3 {
			continue
		}
		got, _ := Get[position](r, ents[i])
		if got != ptrs[i] || got.X != float32(i) {
			t.Errorf("entity %d: pointer moved or value changed", i)
		}
	}
}

func TestEachAndFindOrder(t *testing.T) {
	r := NewRegistry()
	var want []Entity
	for i := 0; i < 4; i++ {
		e := r.Create()
		Add(r, e, tag{Name: string(rune('a' + i))})
		want = append(want, e)
	}
	var got []Entity
	Each(r, func(e Entity, _ *tag) { got = append(got, e) })
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected insertion order %v, got %v", want, got)
		}
	}
	e, c, ok := Find(r, func(_ Entity, c *tag) bool { return c.Name >= "b" })
	if !ok || e != want[1] || c.Name != "b" {
		t.Fatalf("Find should return the first match, got %v %+v", e, c)
	}
}

func TestView2Intersection(t *testing.T) {
	r := NewRegistry()
	both := r.Create()
	onlyPos := r.Create()
	onlyModel := r.Create()
	Add(r, both, position{})
	Add(r, both, model{Name: "cube"})
	Add(r, onlyPos, position{})
	Add(r, onlyModel, model{})

	visited := 0
	View2(r, func(e Entity, _ *position, m *model) {
		visited++
		if e != both || m.Name != "cube" {
			t.Errorf("unexpected entity %v", e)
		}
	})
	if visited != 1 {
		t.Fatalf("expected 1 entity, got %d", visited)
	}
}

// go test -run ^TestCreateWithHintLimit$ ./engine/ecs -count 1
func TestCreateWithHintLimit(t *testing.T) {
	r := NewRegistry()
	for _, id := range []uint32{MaxEntities, 50_000_000, ^uint32(0)} {
		if _, err := r.CreateWithHint(id); !errors.Is(err, ErrEntityLimit) {
			t.Fatalf("id %d: expected ErrEntityLimit, got %v", id, err)
		}
	}
	if r.Alive() != 0 {
		t.Fatalf("rejected ids created %d entities", r.Alive())
	}
	if e := r.Create(); e.ID != 0 {
		t.Fatalf("rejected ids reserved slots, next id is %d", e.ID)
	}
	if _, err := r.CreateWithHint(MaxEntities - 1); err != nil {
		t.Fatalf("the last id below the limit must be accepted: %v", err)
	}
}
