package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPNG(t *testing.T) {
	s := testStore()
	b := s.Add(box(10, 10, 100, 50))
	s.Update(b.ID, func(a *Annotation) { a.Label = "resistor" })
	n := s.Add(NodeAnnotation(Point{200, 40}, 1))
	s.Add(Annotation{Type: TypeConnection, SourceID: b.ID, TargetID: n.ID, Page: 1})
	text := Annotation{Type: TypeText, RawText: "4.7 kΩ", Page: 1}
	text.SetRect(Rect{10, 80, 60, 15})
	s.Add(text)
	line := Annotation{Type: TypeLine, Points: []Point{{5, 5}, {50, 30}}, Page: 1}
	line.SetRect(NormalizeRect(line.Points[0], line.Points[1]))
	s.Add(line)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, ExportPNG(path, s, Point{300, 120}, 1))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, int(300*exportScale), cfg.Width)
	assert.Equal(t, int(120*exportScale), cfg.Height)
}

func TestExportPNGErrors(t *testing.T) {
	t.Run("EmptyPage", func(t *testing.T) {
		s := testStore()
		err := ExportPNG(filepath.Join(t.TempDir(), "out.png"), s, Point{100, 100}, 1)
		assert.ErrorContains(t, err, "nothing to export")
	})

	t.Run("NoDimensions", func(t *testing.T) {
		s := testStore()
		s.Add(box(0, 0, 10, 10))
		err := ExportPNG(filepath.Join(t.TempDir(), "out.png"), s, Point{}, 1)
		assert.ErrorContains(t, err, "no dimensions")
	})
}
