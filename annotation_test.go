package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore returns a store with deterministic ids: a1, a2, a3, ...
func testStore() *Store {
	s := NewStore()
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("a%d", n)
	}
	return s
}

func box(x, y, w, h float64) Annotation {
	a := Annotation{Type: TypeBox, Page: 1}
	a.SetRect(Rect{x, y, w, h})
	return a
}

func TestStoreAdd(t *testing.T) {
	s := testStore()

	t.Run("AssignsFreshID", func(t *testing.T) {
		a := s.Add(box(0, 0, 10, 10))
		assert.Equal(t, "a1", a.ID)
		b := s.Add(Annotation{ID: "stale", Type: TypeBox, Page: 1})
		assert.Equal(t, "a2", b.ID, "caller-supplied ids are discarded")
	})

	t.Run("DefaultLabels", func(t *testing.T) {
		n := s.Add(NodeAnnotation(Point{5, 5}, 1))
		assert.Equal(t, "node", n.Label)
		c := s.Add(Annotation{Type: TypeConnection, SourceID: "a1", TargetID: "a2", Page: 1})
		assert.Equal(t, "connection", c.Label)
		assert.Equal(t, "", s.annotations[0].Label, "boxes get no default label")
	})
}

func TestStoreUpdate(t *testing.T) {
	s := testStore()
	a := s.Add(box(0, 0, 10, 10))

	s.Update(a.ID, func(a *Annotation) {
		a.Label = "resistor"
		a.ID = "hijack"
	})
	got, ok := s.Get(a.ID)
	require.True(t, ok, "id survives a mutation that tries to change it")
	assert.Equal(t, "resistor", got.Label)

	// Unknown id: silent no-op.
	s.Update("nope", func(a *Annotation) { a.Label = "x" })
	assert.Equal(t, 1, s.Len())
}

func TestStoreResizeFloor(t *testing.T) {
	s := testStore()
	a := s.Add(box(10, 10, 20, 20))

	r := ApplyResize(HandleW, Rect{10, 10, 20, 20}, Point{100, 0}, minAnnotationSize)
	s.Resize(a.ID, r)

	got, _ := s.Get(a.ID)
	assert.Equal(t, minAnnotationSize, got.Width)
	assert.InDelta(t, 30-minAnnotationSize, got.X, 1e-9)
}

func TestDeleteCascade(t *testing.T) {
	s := testStore()
	b1 := s.Add(box(0, 0, 10, 10))
	b2 := s.Add(box(50, 0, 10, 10))
	n1 := s.Add(NodeAnnotation(Point{30, 30}, 1))
	c1 := s.Add(Annotation{Type: TypeConnection, SourceID: b1.ID, TargetID: n1.ID, Page: 1})
	c2 := s.Add(Annotation{Type: TypeConnection, SourceID: n1.ID, TargetID: b2.ID, Page: 1})
	c3 := s.Add(Annotation{Type: TypeConnection, SourceID: b1.ID, TargetID: b2.ID, Page: 1})

	s.Delete(n1.ID)

	_, ok := s.Get(n1.ID)
	assert.False(t, ok)
	_, ok = s.Get(c1.ID)
	assert.False(t, ok, "connection into the node goes with it")
	_, ok = s.Get(c2.ID)
	assert.False(t, ok, "connection out of the node goes with it")
	_, ok = s.Get(c3.ID)
	assert.True(t, ok, "unrelated connection survives")
	assert.Equal(t, 3, s.Len())

	// Deleting an unknown id is a no-op.
	s.Delete("nope")
	assert.Equal(t, 3, s.Len())
}

func TestReorder(t *testing.T) {
	s := testStore()
	for i := 0; i < 4; i++ {
		s.Add(box(float64(i*10), 0, 5, 5))
	}
	order := func() []string {
		var ids []string
		for _, a := range s.All() {
			ids = append(ids, a.ID)
		}
		return ids
	}

	t.Run("SpliceSemantics", func(t *testing.T) {
		s.Reorder(0, 2)
		assert.Equal(t, []string{"a2", "a3", "a1", "a4"}, order())
		s.Reorder(2, 0)
		assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, order())
	})

	t.Run("AdjacentSwapRestores", func(t *testing.T) {
		s.Reorder(1, 2)
		s.Reorder(2, 1)
		assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, order())
	})

	t.Run("OutOfRangeIgnored", func(t *testing.T) {
		s.Reorder(-1, 0)
		s.Reorder(0, 4)
		s.Reorder(2, 2)
		assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, order())
	})
}

func TestTypeIndex(t *testing.T) {
	s := testStore()
	b1 := s.Add(box(0, 0, 5, 5))
	n1 := s.Add(NodeAnnotation(Point{1, 1}, 1))
	b2 := s.Add(box(10, 0, 5, 5))
	b3 := s.Add(box(20, 0, 5, 5))

	assert.Equal(t, 1, s.TypeIndex(b1.ID))
	assert.Equal(t, 2, s.TypeIndex(b2.ID))
	assert.Equal(t, 3, s.TypeIndex(b3.ID))
	assert.Equal(t, 1, s.TypeIndex(n1.ID), "nodes count separately")

	t.Run("RecomputedAfterDelete", func(t *testing.T) {
		s.Delete(b1.ID)
		assert.Equal(t, 1, s.TypeIndex(b2.ID))
		assert.Equal(t, 2, s.TypeIndex(b3.ID))
	})

	t.Run("FollowsReorder", func(t *testing.T) {
		// After the delete above the order is n1, b2, b3.
		s.Reorder(2, 1) // b3 before b2
		assert.Equal(t, 1, s.TypeIndex(b3.ID))
		assert.Equal(t, 2, s.TypeIndex(b2.ID))
	})

	t.Run("UnknownIDIsZero", func(t *testing.T) {
		assert.Equal(t, 0, s.TypeIndex("nope"))
	})
}

func TestHitTest(t *testing.T) {
	s := testStore()
	under := s.Add(box(0, 0, 20, 20))
	over := s.Add(box(5, 5, 20, 20))
	s.Add(Annotation{Type: TypeConnection, SourceID: under.ID, TargetID: over.ID, Page: 1})

	t.Run("TopmostWins", func(t *testing.T) {
		hit, ok := s.HitTest(Point{10, 10}, 1)
		require.True(t, ok)
		assert.Equal(t, over.ID, hit.ID)
	})

	t.Run("OnlyLowerShape", func(t *testing.T) {
		hit, ok := s.HitTest(Point{1, 1}, 1)
		require.True(t, ok)
		assert.Equal(t, under.ID, hit.ID)
	})

	t.Run("Miss", func(t *testing.T) {
		_, ok := s.HitTest(Point{100, 100}, 1)
		assert.False(t, ok)
	})

	t.Run("WrongPage", func(t *testing.T) {
		_, ok := s.HitTest(Point{10, 10}, 2)
		assert.False(t, ok)
	})
}

func TestEndpoints(t *testing.T) {
	s := testStore()
	b1 := s.Add(box(0, 0, 10, 10))
	b2 := s.Add(box(50, 0, 10, 10))
	conn := s.Add(Annotation{Type: TypeConnection, SourceID: b1.ID, TargetID: b2.ID, Page: 1})

	src, dst, ok := s.Endpoints(conn)
	require.True(t, ok)
	assert.Equal(t, b1.ID, src.ID)
	assert.Equal(t, b2.ID, dst.ID)

	dangling := Annotation{Type: TypeConnection, SourceID: b1.ID, TargetID: "gone"}
	_, _, ok = s.Endpoints(dangling)
	assert.False(t, ok)
}

func TestMissingLabels(t *testing.T) {
	s := testStore()
	s.Add(box(0, 0, 10, 10)) // unlabeled box
	labeled := box(20, 0, 10, 10)
	labeled.Label = "capacitor"
	s.Add(labeled)
	s.Add(NodeAnnotation(Point{1, 1}, 1)) // default label, never missing

	text := Annotation{Type: TypeText, Page: 1}
	text.SetRect(Rect{0, 30, 10, 5})
	added := s.Add(text)

	assert.Equal(t, 2, s.MissingLabels())

	s.Update(added.ID, func(a *Annotation) { a.IsIgnored = true })
	assert.Equal(t, 1, s.MissingLabels(), "ignored text does not need a label")
}
