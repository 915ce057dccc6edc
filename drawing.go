package main

import "math"

// Tool selects what a drawing gesture creates.
type Tool int

const (
	ToolNone Tool = iota
	ToolBox
	ToolLine
	ToolNode
	ToolConnection
	ToolText
)

func (t Tool) String() string {
	switch t {
	case ToolBox:
		return "box"
	case ToolLine:
		return "line"
	case ToolNode:
		return "node"
	case ToolConnection:
		return "connection"
	case ToolText:
		return "text"
	}
	return "none"
}

type gestureState int

const (
	gestureIdle gestureState = iota
	gestureDrawing
	gesturePendingSource
)

// Gesture turns pointer-down / pointer-move / pointer-up sequences into
// committed annotations, per tool. All coordinates are logical. The gesture
// never touches the store; it hands back a proto-annotation (without id) and
// the caller commits it.
type Gesture struct {
	tool    Tool
	state   gestureState
	anchor  Point
	current Point
	source  string
	page    int
}

func (g *Gesture) Tool() Tool {
	return g.tool
}

// Arm selects the active tool. Switching tools abandons any gesture in
// flight.
func (g *Gesture) Arm(tool Tool) {
	g.tool = tool
	g.Cancel()
}

// Active reports whether a drag is being drawn (used for preview rendering).
func (g *Gesture) Active() bool {
	return g.state == gestureDrawing
}

// PendingSource returns the id of the first connection endpoint, or "" when
// no connection is pending.
func (g *Gesture) PendingSource() string {
	if g.state == gesturePendingSource {
		return g.source
	}
	return ""
}

// Preview returns the in-flight drag rectangle for box/line tools.
func (g *Gesture) Preview() (Rect, bool) {
	if g.state != gestureDrawing {
		return Rect{}, false
	}
	return NormalizeRect(g.anchor, g.current), true
}

// PointerDown starts or advances a gesture. `hit` is the connectable
// annotation under the pointer, if any (only the connection tool cares).
// Node and connection commits happen on the down event; the returned
// annotation is non-nil when something committed, and finished reports that
// the gesture completed (successfully or not) so the caller can apply its
// tool-disarm policy.
func (g *Gesture) PointerDown(p Point, page int, hit *Annotation) (commit *Annotation, finished bool) {
	switch g.tool {
	case ToolBox, ToolLine, ToolText:
		if g.state == gestureIdle {
			g.state = gestureDrawing
			g.anchor = p
			g.current = p
			g.page = page
		}
		return nil, false

	case ToolNode:
		a := NodeAnnotation(p, page)
		return &a, true

	case ToolConnection:
		switch g.state {
		case gestureIdle:
			if hit != nil && hit.connectable() {
				g.state = gesturePendingSource
				g.source = hit.ID
				g.page = page
			}
			return nil, false
		case gesturePendingSource:
			if hit == nil || !hit.connectable() {
				// Click on empty canvas cancels the pending connection.
				g.Cancel()
				return nil, true
			}
			if hit.ID == g.source {
				// No self-loops; stay pending.
				return nil, false
			}
			a := Annotation{
				Type:     TypeConnection,
				SourceID: g.source,
				TargetID: hit.ID,
				Page:     page,
			}
			g.Cancel()
			return &a, true
		}
	}
	return nil, false
}

// PointerMove updates the drag endpoint.
func (g *Gesture) PointerMove(p Point) {
	if g.state == gestureDrawing {
		g.current = p
	}
}

// PointerUp commits a box or line drag. Degenerate gestures — a drag smaller
// than the minimum in either axis, or a line shorter than the minimum
// length — are discarded silently; that is normal user behavior, not an
// error.
func (g *Gesture) PointerUp(p Point) (commit *Annotation, finished bool) {
	if g.state != gestureDrawing {
		return nil, false
	}
	g.current = p
	anchor, current, page := g.anchor, g.current, g.page
	tool := g.tool
	g.Cancel()

	switch tool {
	case ToolBox, ToolText:
		if math.Abs(current.X-anchor.X) <= minDragSize || math.Abs(current.Y-anchor.Y) <= minDragSize {
			return nil, true
		}
		r := NormalizeRect(anchor, current)
		a := Annotation{Type: TypeBox, Page: page}
		if tool == ToolText {
			a.Type = TypeText
		}
		a.SetRect(r)
		return &a, true

	case ToolLine:
		if anchor.Distance(current) <= minLineLength {
			return nil, true
		}
		r := NormalizeRect(anchor, current)
		a := Annotation{
			Type:   TypeLine,
			Points: []Point{anchor, current},
			Page:   page,
		}
		a.SetRect(r)
		return &a, true
	}
	return nil, true
}

// Cancel abandons any gesture in flight. Called on pointer-leave and on tool
// switches.
func (g *Gesture) Cancel() {
	g.state = gestureIdle
	g.source = ""
}
