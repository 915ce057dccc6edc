package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// exportScale converts logical units to pixels in the exported image.
const exportScale = 2.0

// ExportPNG renders one annotated page to a PNG file: page outline, boxes,
// node dots, clipped connector lines with arrowheads, and type-index tags.
func ExportPNG(filename string, store *Store, pageSize Point, page int) error {
	anns := store.PageAnnotations(page)
	if len(anns) == 0 {
		return fmt.Errorf("nothing to export")
	}

	imageWidth := int(pageSize.X * exportScale)
	imageHeight := int(pageSize.Y * exportScale)
	if imageWidth < 1 || imageHeight < 1 {
		return fmt.Errorf("page has no dimensions")
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12.0,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Connections first so shapes draw over the lines.
	for _, a := range anns {
		if a.Type != TypeConnection {
			continue
		}
		src, dst, ok := store.Endpoints(a)
		if !ok {
			continue
		}
		from := attachmentPoint(src, dst.Center())
		to := attachmentPoint(dst, src.Center())
		drawConnectorPNG(dc, from, to)
	}

	for _, a := range anns {
		switch a.Type {
		case TypeBox, TypeText:
			drawBoxPNG(dc, a, store)
		case TypeNode:
			drawNodePNG(dc, a, store)
		case TypeLine:
			if len(a.Points) == 2 {
				dc.SetLineWidth(1.5)
				dc.DrawLine(a.Points[0].X*exportScale, a.Points[0].Y*exportScale,
					a.Points[1].X*exportScale, a.Points[1].Y*exportScale)
				dc.Stroke()
			}
		}
	}

	return dc.SavePNG(filename)
}

func drawConnectorPNG(dc *gg.Context, from, to Point) {
	fx, fy := from.X*exportScale, from.Y*exportScale
	tx, ty := to.X*exportScale, to.Y*exportScale

	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.DrawLine(fx, fy, tx, ty)
	dc.Stroke()

	// Arrowhead at the target end.
	dx := tx - fx
	dy := ty - fy
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	arrowSize := 8.0
	arrowAngle := 0.5 // radians

	baseX1 := tx - arrowSize*dx + arrowSize*dy*arrowAngle
	baseY1 := ty - arrowSize*dy - arrowSize*dx*arrowAngle
	baseX2 := tx - arrowSize*dx - arrowSize*dy*arrowAngle
	baseY2 := ty - arrowSize*dy + arrowSize*dx*arrowAngle

	dc.MoveTo(tx, ty)
	dc.LineTo(baseX1, baseY1)
	dc.LineTo(baseX2, baseY2)
	dc.ClosePath()
	dc.Fill()
}

func drawBoxPNG(dc *gg.Context, a Annotation, store *Store) {
	x := a.X * exportScale
	y := a.Y * exportScale
	w := a.Width * exportScale
	h := a.Height * exportScale

	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, w, h)
	if a.Type == TypeText {
		dc.SetDash(4, 4)
		dc.Stroke()
		dc.SetDash()
	} else {
		dc.Stroke()
	}

	tag := fmt.Sprintf("%s%d", typeTagPrefix(a.Type), store.TypeIndex(a.ID))
	if a.Label != "" {
		tag += " " + a.Label
	}
	dc.DrawString(tag, x+4, y+14)
}

func drawNodePNG(dc *gg.Context, a Annotation, store *Store) {
	c := a.Center()
	dc.SetColor(color.Black)
	dc.DrawCircle(c.X*exportScale, c.Y*exportScale, a.Width/2*exportScale+2)
	dc.Fill()

	tag := fmt.Sprintf("N%d", store.TypeIndex(a.ID))
	dc.DrawString(tag, c.X*exportScale+6, c.Y*exportScale-6)
}
