package main

import "math"

// Point is a 2D coordinate. Whether it is in screen or logical (document)
// space depends on context; the Viewport converts between the two.
type Point struct {
	X float64
	Y float64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

func (p Point) Distance(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is an axis-aligned rectangle in logical coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// NormalizeRect builds a rectangle from two drag endpoints. Width and height
// are always non-negative regardless of drag direction.
func NormalizeRect(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// RectEdgeIntersection returns the point on the rectangle's boundary where a
// connector heading from the rectangle's center toward `to` should attach.
// The exit face is picked by comparing the ray's slope against the box aspect
// ratio, and the attachment is the midpoint of that face, not the true
// ray-boundary hit. Connectors look better centered on an edge than pinned to
// the exact intersection, so this stays an approximation on purpose.
func RectEdgeIntersection(r Rect, to Point) Point {
	c := r.Center()
	dx := to.X - c.X
	dy := to.Y - c.Y

	if dx == 0 && dy == 0 {
		return c
	}

	// |dy/dx| < height/width, cross-multiplied to avoid dividing by zero.
	if math.Abs(dy)*r.Width < math.Abs(dx)*r.Height {
		if dx > 0 {
			return Point{r.X + r.Width, c.Y}
		}
		return Point{r.X, c.Y}
	}
	if dy > 0 {
		return Point{c.X, r.Y + r.Height}
	}
	return Point{c.X, r.Y}
}

// CircleIntersection returns the point on a circle's boundary along the ray
// from its center toward `to`. Unlike the rectangle case this is the true
// intersection. When the two centers coincide (within epsilon) there is no
// direction, so the center is returned unchanged.
func CircleIntersection(center Point, radius float64, to Point) Point {
	dx := to.X - center.X
	dy := to.Y - center.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < degenerateEpsilon {
		return center
	}
	return Point{
		X: center.X + dx/dist*radius,
		Y: center.Y + dy/dist*radius,
	}
}

// Handle identifies which resize handle a drag grabbed: one of the 8 compass
// points, or HandleMove for a whole-shape translation.
type Handle string

const (
	HandleNone Handle = ""
	HandleN    Handle = "n"
	HandleS    Handle = "s"
	HandleE    Handle = "e"
	HandleW    Handle = "w"
	HandleNE   Handle = "ne"
	HandleNW   Handle = "nw"
	HandleSE   Handle = "se"
	HandleSW   Handle = "sw"
	HandleMove Handle = "move"
)

// ApplyResize returns the rectangle after dragging the given handle by delta.
// East/south handles grow the dimension directly; west/north handles shift the
// origin and shrink, with the result floored at minSize so an edge can never
// cross through the opposite edge.
func ApplyResize(h Handle, orig Rect, delta Point, minSize float64) Rect {
	r := orig

	if h == HandleMove {
		r.X += delta.X
		r.Y += delta.Y
		return r
	}

	for _, letter := range h {
		switch letter {
		case 'e':
			r.Width = math.Max(minSize, orig.Width+delta.X)
		case 's':
			r.Height = math.Max(minSize, orig.Height+delta.Y)
		case 'w':
			w := math.Max(minSize, orig.Width-delta.X)
			r.X = orig.X + (orig.Width - w)
			r.Width = w
		case 'n':
			hh := math.Max(minSize, orig.Height-delta.Y)
			r.Y = orig.Y + (orig.Height - hh)
			r.Height = hh
		}
	}

	return r
}

// HandleAt hit-tests the resize handles of a rectangle. The tolerance is in
// the same (logical) space as the point; callers divide a screen-space grab
// radius by the current zoom so handles stay grabbable at any scale.
// Interior hits that miss every handle report HandleMove.
func HandleAt(r Rect, p Point, tolerance float64) Handle {
	near := func(a, b float64) bool { return math.Abs(a-b) <= tolerance }

	onLeft := near(p.X, r.X)
	onRight := near(p.X, r.X+r.Width)
	onTop := near(p.Y, r.Y)
	onBottom := near(p.Y, r.Y+r.Height)
	withinX := p.X >= r.X-tolerance && p.X <= r.X+r.Width+tolerance
	withinY := p.Y >= r.Y-tolerance && p.Y <= r.Y+r.Height+tolerance

	switch {
	case onTop && onLeft:
		return HandleNW
	case onTop && onRight:
		return HandleNE
	case onBottom && onLeft:
		return HandleSW
	case onBottom && onRight:
		return HandleSE
	case onTop && withinX:
		return HandleN
	case onBottom && withinX:
		return HandleS
	case onLeft && withinY:
		return HandleW
	case onRight && withinY:
		return HandleE
	}

	if r.Contains(p) {
		return HandleMove
	}
	return HandleNone
}
