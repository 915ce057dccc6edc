package main

// Typed events emitted by the Controller. The composing UI subscribes instead
// of threading callbacks through every layer.

type Event interface {
	eventName() string
}

type AnnotationAdded struct {
	Annotation Annotation
}

func (AnnotationAdded) eventName() string { return "annotation_added" }

type AnnotationResized struct {
	ID   string
	Rect Rect
}

func (AnnotationResized) eventName() string { return "annotation_resized" }

type AnnotationMoved struct {
	ID   string
	Rect Rect
}

func (AnnotationMoved) eventName() string { return "annotation_moved" }

type AnnotationDeleted struct {
	ID string
}

func (AnnotationDeleted) eventName() string { return "annotation_deleted" }

type DrawingFinished struct {
	Tool      Tool
	Committed bool
}

func (DrawingFinished) eventName() string { return "drawing_finished" }

type ConnectionPending struct {
	SourceID string
}

func (ConnectionPending) eventName() string { return "connection_pending" }

// Modifiers carries the keyboard state attached to a pointer event.
type Modifiers struct {
	Alt  bool
	Ctrl bool
}

type dragKind int

const (
	dragNone dragKind = iota
	dragPan
	dragDraw
	dragAdjust // moving or resizing the selection
)

// Controller composes the viewport, the drawing gesture, and the store. It
// routes pointer events to panning, drawing, or resize/move depending on the
// armed tool and what is under the pointer, and emits typed events for the
// UI. All state lives here explicitly — no ambient globals.
type Controller struct {
	store *Store
	view  *Viewport

	gesture Gesture
	page    int

	selectedID string

	drag         dragKind
	activeHandle Handle
	dragStart    Point // logical, for adjust drags
	originalRect Rect
	lastScreen   Point // for pan deltas
	adjusted     bool

	subs []func(Event)
}

func NewController(store *Store, view *Viewport) *Controller {
	return &Controller{store: store, view: view, page: 1}
}

func (c *Controller) Subscribe(fn func(Event)) {
	c.subs = append(c.subs, fn)
}

func (c *Controller) emit(e Event) {
	for _, fn := range c.subs {
		fn(e)
	}
}

func (c *Controller) ArmTool(t Tool) {
	c.gesture.Arm(t)
}

func (c *Controller) Tool() Tool {
	return c.gesture.Tool()
}

func (c *Controller) Page() int {
	return c.page
}

// SetPage switches the working page and drops any in-flight gesture and
// selection — annotations are scoped per page.
func (c *Controller) SetPage(n int) {
	if n < 1 || n == c.page {
		return
	}
	c.page = n
	c.gesture.Cancel()
	c.selectedID = ""
	c.drag = dragNone
}

func (c *Controller) SelectedID() string {
	return c.selectedID
}

func (c *Controller) Select(id string) {
	c.selectedID = id
}

// PendingSource exposes the pending connection endpoint for rendering.
func (c *Controller) PendingSource() string {
	return c.gesture.PendingSource()
}

// Preview exposes the in-flight drag rectangle, in logical coordinates.
func (c *Controller) Preview() (Rect, bool) {
	return c.gesture.Preview()
}

func (c *Controller) HandlePointerDown(screen Point, mods Modifiers) {
	logical := c.view.ScreenToLogical(screen)
	c.lastScreen = screen

	if c.gesture.Tool() != ToolNone {
		c.drag = dragDraw
		var hit *Annotation
		if a, ok := c.store.HitTest(logical, c.page); ok {
			hit = &a
		}
		wasPending := c.gesture.PendingSource() != ""
		commit, finished := c.gesture.PointerDown(logical, c.page, hit)
		c.commitIfAny(commit, finished)
		if !wasPending && c.gesture.PendingSource() != "" {
			c.emit(ConnectionPending{SourceID: c.gesture.PendingSource()})
		}
		return
	}

	// No tool armed: adjust the selection if the pointer grabbed it,
	// select whatever else was hit, otherwise pan.
	if sel, ok := c.store.Get(c.selectedID); ok && sel.Page == c.page {
		tolerance := handleGrab / c.view.Scale
		if h := HandleAt(sel.Rect(), logical, tolerance); h != HandleNone {
			c.drag = dragAdjust
			c.activeHandle = h
			c.dragStart = logical
			c.originalRect = sel.Rect()
			c.adjusted = false
			return
		}
	}

	if a, ok := c.store.HitTest(logical, c.page); ok {
		c.selectedID = a.ID
		c.drag = dragAdjust
		c.activeHandle = HandleMove
		c.dragStart = logical
		c.originalRect = a.Rect()
		c.adjusted = false
		return
	}

	c.selectedID = ""
	c.drag = dragPan
}

func (c *Controller) HandlePointerMove(screen Point, mods Modifiers) {
	logical := c.view.ScreenToLogical(screen)

	switch c.drag {
	case dragPan:
		c.view.Pan(screen.Sub(c.lastScreen))

	case dragDraw:
		c.gesture.PointerMove(logical)

	case dragAdjust:
		delta := logical.Sub(c.dragStart)
		if delta.X != 0 || delta.Y != 0 {
			c.adjusted = true
		}
		newRect := ApplyResize(c.activeHandle, c.originalRect, delta, minAnnotationSize)
		c.store.Resize(c.selectedID, newRect)
	}

	c.lastScreen = screen
}

func (c *Controller) HandlePointerUp(screen Point, mods Modifiers) {
	logical := c.view.ScreenToLogical(screen)

	switch c.drag {
	case dragDraw:
		commit, finished := c.gesture.PointerUp(logical)
		c.commitIfAny(commit, finished)

	case dragAdjust:
		if c.adjusted {
			if a, ok := c.store.Get(c.selectedID); ok {
				if c.activeHandle == HandleMove {
					c.emit(AnnotationMoved{ID: a.ID, Rect: a.Rect()})
				} else {
					c.emit(AnnotationResized{ID: a.ID, Rect: a.Rect()})
				}
			}
		}
	}

	c.drag = dragNone
	c.activeHandle = HandleNone
}

// HandlePointerLeave abandons whatever was in flight: the only cancellation
// semantic in the core. In-progress adjustments snap back to the original
// rectangle.
func (c *Controller) HandlePointerLeave() {
	if c.drag == dragAdjust && c.adjusted {
		c.store.Resize(c.selectedID, c.originalRect)
	}
	c.gesture.Cancel()
	c.drag = dragNone
	c.activeHandle = HandleNone
}

// Delete removes the selected annotation (cascading to its connections) and
// clears the selection.
func (c *Controller) Delete(id string) {
	if _, ok := c.store.Get(id); !ok {
		return
	}
	c.store.Delete(id)
	if c.selectedID == id {
		c.selectedID = ""
	}
	c.emit(AnnotationDeleted{ID: id})
}

func (c *Controller) commitIfAny(commit *Annotation, finished bool) {
	if commit != nil {
		added := c.store.Add(*commit)
		c.selectedID = added.ID
		c.emit(AnnotationAdded{Annotation: added})
	}
	if finished {
		c.emit(DrawingFinished{Tool: c.gesture.Tool(), Committed: commit != nil})
	}
}
