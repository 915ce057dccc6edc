package main

import "time"

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeLabelInput
	ModeTranscribe
	ModeLink
	ModeFileInput
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmDeleteAnnotation ConfirmAction = iota
	ConfirmSubmit
	ConfirmQuit
)

const (
	// Viewport scale bounds. Scale is clamped before any offset math so the
	// zoom ratio never divides by a near-zero value.
	minScale = 0.1
	maxScale = 10.0

	// Wheel zoom factor per notch. Terminal wheel events carry no magnitude,
	// only direction.
	zoomStep = 1.1

	// Minimum drag extent, per axis, for a box gesture to commit, and the
	// floor a resize can shrink a dimension to. Logical (image-space) units.
	minDragSize       = 0.5
	minAnnotationSize = 0.5

	// Legacy line tool: minimum Euclidean length, in the page-space units the
	// line is drawn in.
	minLineLength = 5.0

	// Node annotations are fixed-size squares centered on the click.
	nodeSize = 1.0

	// Screen-space grab radius for resize handles; divided by the current
	// scale when hit-testing in logical space.
	handleGrab = 1.0

	// Epsilon below which two connector endpoints are considered coincident.
	degenerateEpsilon = 0.001

	// Margin, in screen cells, left around the page by fit-to-container.
	fitPadding = 4.0

	// Keyboard pan distance in screen cells, and the shifted multiplier.
	panStep     = 2.0
	panFastMult = 5.0

	// Quiet period after the last wheel event before the draft render scale
	// is promoted to committed.
	draftPromoteDelay = 250 * time.Millisecond
)
