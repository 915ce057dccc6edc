package main

import "github.com/google/uuid"

type AnnotationType string

const (
	TypeBox        AnnotationType = "box"
	TypeLine       AnnotationType = "line" // legacy two-point stroke
	TypeNode       AnnotationType = "node"
	TypeConnection AnnotationType = "connection"
	TypeText       AnnotationType = "text"
)

// Value is one transcribed value with optional unit affixes, e.g. "4.7" with
// suffix "kΩ".
type Value struct {
	Value      string `json:"value"`
	UnitPrefix string `json:"unit_prefix"`
	UnitSuffix string `json:"unit_suffix"`
}

// Annotation is a single labeled shape attached to a page. Which geometry
// fields apply depends on Type: box/text use the bbox, node uses a fixed-size
// square centered on the node position, line carries its two endpoints, and
// connection only references two other annotations by id.
type Annotation struct {
	ID     string         `json:"id"`
	Type   AnnotationType `json:"type"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Points []Point        `json:"points,omitempty"`

	SourceID string `json:"source_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`

	Label   string `json:"label"`
	Subtype string `json:"subtype,omitempty"`
	Content string `json:"content,omitempty"`
	Page    int    `json:"page"`

	RawText            string  `json:"raw_text,omitempty"`
	IsIgnored          bool    `json:"is_ignored"`
	LinkedAnnotationID string  `json:"linked_annotation_id,omitempty"`
	Values             []Value `json:"values,omitempty"`
}

func (a *Annotation) Rect() Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

func (a *Annotation) Center() Point {
	return a.Rect().Center()
}

// SetRect writes a rectangle back into the bbox fields.
func (a *Annotation) SetRect(r Rect) {
	a.X, a.Y, a.Width, a.Height = r.X, r.Y, r.Width, r.Height
}

// connectable reports whether this annotation can be a connection endpoint.
func (a *Annotation) connectable() bool {
	return a.Type == TypeBox || a.Type == TypeNode
}

// NodeAnnotation builds a node record: a fixed-size square whose center is
// the clicked position.
func NodeAnnotation(center Point, page int) Annotation {
	return Annotation{
		Type:   TypeNode,
		X:      center.X - nodeSize/2,
		Y:      center.Y - nodeSize/2,
		Width:  nodeSize,
		Height: nodeSize,
		Page:   page,
	}
}

// Store owns the ordered annotation collection. Ordering is significant: the
// per-type display index ("N3" = third node in collection order) is derived
// from it, and it is mutable only through Reorder. All mutations are silent
// no-ops on unknown ids — stale references from the UI loop are expected and
// must not crash anything.
type Store struct {
	annotations []Annotation
	newID       func() string
}

func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

func (s *Store) Len() int {
	return len(s.annotations)
}

// All returns the collection in order. The slice is shared; callers treat it
// as read-only.
func (s *Store) All() []Annotation {
	return s.annotations
}

// PageAnnotations returns the annotations on the given page, in collection
// order.
func (s *Store) PageAnnotations(page int) []Annotation {
	var out []Annotation
	for _, a := range s.annotations {
		if a.Page == page {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Get(id string) (Annotation, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.annotations[i], true
	}
	return Annotation{}, false
}

// Add assigns a fresh id and a default label derived from the type, appends
// the record, and returns it. Append order is display order within
// type-filtered views.
func (s *Store) Add(a Annotation) Annotation {
	a.ID = s.newID()
	if a.Label == "" {
		switch a.Type {
		case TypeNode:
			a.Label = "node"
		case TypeConnection, TypeLine:
			a.Label = "connection"
		}
	}
	s.annotations = append(s.annotations, a)
	return a
}

// Update applies a mutation to the record with the given id. Unknown ids are
// ignored. The id itself cannot be changed.
func (s *Store) Update(id string, mutate func(*Annotation)) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	mutate(&s.annotations[i])
	s.annotations[i].ID = id
}

// Resize merges a new bounding box into the record. Overlaps with other
// annotations are permitted; nothing is validated here.
func (s *Store) Resize(id string, r Rect) {
	s.Update(id, func(a *Annotation) { a.SetRect(r) })
}

// Delete removes the record and, in the same pass, every connection whose
// source or target references it. The cascade is single level: connections
// cannot reference other connections.
func (s *Store) Delete(id string) {
	if s.indexOf(id) < 0 {
		return
	}
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if a.ID == id {
			continue
		}
		if a.Type == TypeConnection && (a.SourceID == id || a.TargetID == id) {
			continue
		}
		kept = append(kept, a)
	}
	s.annotations = kept
}

// Reorder moves the element at fromIndex to toIndex. Out-of-range indices or
// a same-index move leave the collection untouched.
func (s *Store) Reorder(fromIndex, toIndex int) {
	n := len(s.annotations)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
		return
	}
	a := s.annotations[fromIndex]
	s.annotations = append(s.annotations[:fromIndex], s.annotations[fromIndex+1:]...)
	rest := append([]Annotation{}, s.annotations[toIndex:]...)
	s.annotations = append(s.annotations[:toIndex], a)
	s.annotations = append(s.annotations, rest...)
}

// TypeIndex returns the 1-based rank of the annotation among all annotations
// of the same type, in collection order. Recomputed on every call — it is a
// display number, never stored.
func (s *Store) TypeIndex(id string) int {
	i := s.indexOf(id)
	if i < 0 {
		return 0
	}
	rank := 0
	for j := 0; j <= i; j++ {
		if s.annotations[j].Type == s.annotations[i].Type {
			rank++
		}
	}
	return rank
}

// HitTest returns the topmost annotation under a logical point on the given
// page. Later annotations draw on top, so the scan runs back to front.
// Connections have no geometry of their own and are never hit.
func (s *Store) HitTest(p Point, page int) (Annotation, bool) {
	for i := len(s.annotations) - 1; i >= 0; i-- {
		a := s.annotations[i]
		if a.Page != page || a.Type == TypeConnection {
			continue
		}
		if a.Rect().Contains(p) {
			return a, true
		}
	}
	return Annotation{}, false
}

// Endpoints resolves a connection's source and target. ok is false when
// either reference dangles; callers skip rendering rather than treating that
// as corruption.
func (s *Store) Endpoints(conn Annotation) (src, dst Annotation, ok bool) {
	src, okA := s.Get(conn.SourceID)
	dst, okB := s.Get(conn.TargetID)
	return src, dst, okA && okB
}

// MissingLabels counts annotations that still need a user label before
// submission: boxes and non-ignored text annotations with an empty label.
func (s *Store) MissingLabels() int {
	n := 0
	for _, a := range s.annotations {
		switch a.Type {
		case TypeBox:
			if a.Label == "" {
				n++
			}
		case TypeText:
			if !a.IsIgnored && a.Label == "" && a.RawText == "" {
				n++
			}
		}
	}
	return n
}
