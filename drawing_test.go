package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxGesture(t *testing.T) {
	t.Run("DragCommitsNormalizedRect", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolBox)

		commit, finished := g.PointerDown(Point{100, 100}, 1, nil)
		assert.Nil(t, commit)
		assert.False(t, finished)
		assert.True(t, g.Active())

		g.PointerMove(Point{70, 60})
		r, ok := g.Preview()
		require.True(t, ok)
		assert.Equal(t, Rect{70, 60, 30, 40}, r)

		commit, finished = g.PointerUp(Point{40, 40})
		require.NotNil(t, commit)
		assert.True(t, finished)
		assert.Equal(t, TypeBox, commit.Type)
		assert.Equal(t, Rect{40, 40, 60, 60}, commit.Rect())
		assert.Equal(t, 1, commit.Page)
		assert.False(t, g.Active())
	})

	t.Run("TinyDragDiscarded", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolBox)
		g.PointerDown(Point{10, 10}, 1, nil)
		commit, finished := g.PointerUp(Point{10.3, 50})
		assert.Nil(t, commit, "degenerate in one axis is enough to discard")
		assert.True(t, finished)
	})

	t.Run("TextToolCommitsTextType", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolText)
		g.PointerDown(Point{0, 0}, 2, nil)
		commit, _ := g.PointerUp(Point{30, 10})
		require.NotNil(t, commit)
		assert.Equal(t, TypeText, commit.Type)
		assert.Equal(t, 2, commit.Page)
	})
}

func TestLineGesture(t *testing.T) {
	t.Run("KeepsEndpoints", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolLine)
		g.PointerDown(Point{50, 50}, 1, nil)
		commit, finished := g.PointerUp(Point{10, 20})
		require.NotNil(t, commit)
		assert.True(t, finished)
		assert.Equal(t, TypeLine, commit.Type)
		assert.Equal(t, []Point{{50, 50}, {10, 20}}, commit.Points, "endpoints keep drag direction")
		assert.Equal(t, Rect{10, 20, 40, 30}, commit.Rect(), "bbox is normalized")
	})

	t.Run("ShortLineDiscarded", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolLine)
		g.PointerDown(Point{0, 0}, 1, nil)
		commit, finished := g.PointerUp(Point{3, 4})
		assert.Nil(t, commit, "length 5 is not > minLineLength")
		assert.True(t, finished)
	})
}

func TestNodeGesture(t *testing.T) {
	var g Gesture
	g.Arm(ToolNode)

	commit, finished := g.PointerDown(Point{25, 35}, 3, nil)
	require.NotNil(t, commit, "nodes commit on the down event")
	assert.True(t, finished)
	assert.Equal(t, TypeNode, commit.Type)
	assert.Equal(t, Point{25, 35}, commit.Center())
	assert.Equal(t, nodeSize, commit.Width)
	assert.Equal(t, 3, commit.Page)
}

func TestConnectionGesture(t *testing.T) {
	src := box(0, 0, 10, 10)
	src.ID = "src"
	dst := box(50, 0, 10, 10)
	dst.ID = "dst"
	line := Annotation{ID: "ln", Type: TypeLine, Page: 1}

	t.Run("TwoClickCommit", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolConnection)

		commit, finished := g.PointerDown(Point{5, 5}, 1, &src)
		assert.Nil(t, commit)
		assert.False(t, finished)
		assert.Equal(t, "src", g.PendingSource())

		commit, finished = g.PointerDown(Point{55, 5}, 1, &dst)
		require.NotNil(t, commit)
		assert.True(t, finished)
		assert.Equal(t, TypeConnection, commit.Type)
		assert.Equal(t, "src", commit.SourceID)
		assert.Equal(t, "dst", commit.TargetID)
		assert.Equal(t, "", g.PendingSource())
	})

	t.Run("EmptyCanvasCancels", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolConnection)
		g.PointerDown(Point{5, 5}, 1, &src)
		require.Equal(t, "src", g.PendingSource())

		commit, finished := g.PointerDown(Point{200, 200}, 1, nil)
		assert.Nil(t, commit)
		assert.True(t, finished, "cancellation still finishes the gesture")
		assert.Equal(t, "", g.PendingSource())
	})

	t.Run("SelfLoopStaysPending", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolConnection)
		g.PointerDown(Point{5, 5}, 1, &src)

		commit, finished := g.PointerDown(Point{6, 6}, 1, &src)
		assert.Nil(t, commit)
		assert.False(t, finished)
		assert.Equal(t, "src", g.PendingSource(), "clicking the source again keeps it pending")
	})

	t.Run("NonConnectableIgnored", func(t *testing.T) {
		var g Gesture
		g.Arm(ToolConnection)

		commit, finished := g.PointerDown(Point{5, 5}, 1, &line)
		assert.Nil(t, commit)
		assert.False(t, finished)
		assert.Equal(t, "", g.PendingSource(), "lines cannot anchor connections")
	})
}

func TestArmCancelsInFlight(t *testing.T) {
	var g Gesture
	g.Arm(ToolBox)
	g.PointerDown(Point{0, 0}, 1, nil)
	require.True(t, g.Active())

	g.Arm(ToolNode)
	assert.False(t, g.Active())
	_, ok := g.Preview()
	assert.False(t, ok)
}
