package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func main() {
	args := os.Args[1:]

	if len(args) > 0 && args[0] == "serve" {
		cfg := loadConfig()
		if err := runServer(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	p := tea.NewProgram(
		initialModel(path),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

type FileOperation int

const (
	FileOpOpen FileOperation = iota
	FileOpExportPNG
)

// eventQueue collects controller events between frames. It lives behind a
// pointer so the controller subscription survives bubbletea's model copying.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) drain() []Event {
	out := q.events
	q.events = nil
	return out
}

type model struct {
	width  int
	height int

	cfg    *Config
	client *BackendClient

	doc         *Document
	store       *Store
	view        *Viewport
	renderScale *RenderScale
	controller  *Controller
	queue       *eventQueue

	mode Mode
	help bool

	// mouseDown distinguishes the press from the motion reports that follow
	// it: the terminal reports both as button-left events.
	mouseDown bool

	input       string
	inputTarget string
	filename    string
	fileOp      FileOperation

	confirmAction ConfirmAction
	confirmID     string

	errorMessage   string
	successMessage string
	submitting     bool
}

type uploadResultMsg struct {
	resp *UploadResponse
	err  error
}

type submitResultMsg struct {
	err error
}

type promoteTickMsg time.Time

func initialModel(path string) model {
	cfg := loadConfig()

	m := model{
		cfg:    cfg,
		client: NewBackendClient(cfg.ServerAddr),
		queue:  &eventQueue{},
		mode:   ModeStartup,
	}
	m.resetWorkspace()

	if path != "" {
		if err := m.openDocument(path); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.mode = ModeNormal
		}
	}
	return m
}

// resetWorkspace builds a fresh store/viewport/controller trio and re-wires
// the event subscription.
func (m *model) resetWorkspace() {
	m.store = NewStore()
	m.view = NewViewport()
	m.renderScale = NewRenderScale(m.view.Scale)
	m.controller = NewController(m.store, m.view)
	q := m.queue
	m.controller.Subscribe(func(e Event) {
		q.events = append(q.events, e)
	})
}

func (m *model) openDocument(path string) error {
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	m.doc = doc
	m.resetWorkspace()
	m.fitPage()
	return nil
}

func (m *model) canvasHeight() int {
	h := m.height - 1 // status line
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) fitPage() {
	if m.doc == nil || m.width < 1 {
		return
	}
	size := m.doc.PageSize(m.controller.Page())
	m.view.FitToContainer(size, Point{float64(m.width), float64(m.canvasHeight())}, fitPadding)
	m.renderScale = NewRenderScale(m.view.Scale)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fitPage()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case promoteTickMsg:
		if m.renderScale.Promote(time.Time(msg)) {
			return m, nil
		}
		if m.renderScale.Pending() {
			return m, promoteTick()
		}
		return m, nil

	case uploadResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("upload failed: %v", msg.err)
		} else {
			m.successMessage = fmt.Sprintf("Uploaded %s (%d pages)", msg.resp.DocumentID, msg.resp.NumPages)
			if m.doc != nil && msg.resp.Classification != nil {
				m.doc.Classification = msg.resp.Classification
			}
		}
		return m, nil

	case submitResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("submit failed: %v", msg.err)
		} else {
			m.successMessage = "Annotations submitted"
		}
		return m, nil
	}
	return m, nil
}

func promoteTick() tea.Cmd {
	return tea.Tick(draftPromoteDelay, func(t time.Time) tea.Msg {
		return promoteTickMsg(t)
	})
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.help {
		switch msg.String() {
		case "esc", "escape", "q", "?":
			m.help = false
		}
		return m, nil
	}

	switch m.mode {
	case ModeStartup:
		return m.updateStartupKey(msg)
	case ModeNormal:
		return m.updateNormalKey(msg)
	case ModeLabelInput, ModeTranscribe:
		return m.updateTextInputKey(msg)
	case ModeLink:
		if msg.Type == tea.KeyEscape {
			m.mode = ModeNormal
			m.inputTarget = ""
		}
		return m, nil
	case ModeFileInput:
		return m.updateFileInputKey(msg)
	case ModeConfirm:
		return m.updateConfirmKey(msg)
	}
	return m, nil
}

func (m model) updateStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.mode = ModeFileInput
		m.fileOp = FileOpOpen
		m.filename = ""
		m.errorMessage = ""
	case "?":
		m.help = true
	}
	return m, nil
}

func (m model) updateNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errorMessage = ""
	m.successMessage = ""

	switch msg.String() {
	case "q":
		if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit

	case "?":
		m.help = true

	case "esc", "escape":
		m.controller.HandlePointerLeave()
		m.controller.ArmTool(ToolNone)
		m.controller.Select("")
		m.mouseDown = false

	case "b":
		m.toggleTool(ToolBox)
	case "L":
		m.toggleTool(ToolLine)
	case "n":
		m.toggleTool(ToolNode)
	case "c":
		m.toggleTool(ToolConnection)
	case "t":
		m.toggleTool(ToolText)

	case "+", "=":
		return m.zoomAtCenter(zoomStep)
	case "-", "_":
		return m.zoomAtCenter(1 / zoomStep)
	case "f":
		m.view.ResetCentering()
		m.fitPage()

	case "h", "left":
		m.view.Pan(Point{panStep, 0})
	case "l", "right":
		m.view.Pan(Point{-panStep, 0})
	case "k", "up":
		m.view.Pan(Point{0, panStep})
	case "j", "down":
		m.view.Pan(Point{0, -panStep})
	case "H":
		m.view.Pan(Point{panStep * panFastMult, 0})
	case "J":
		m.view.Pan(Point{0, -panStep * panFastMult})
	case "K":
		m.view.Pan(Point{0, panStep * panFastMult})

	case "o":
		m.mode = ModeFileInput
		m.fileOp = FileOpOpen
		m.filename = ""

	case "g":
		m.reorderSelected(-1)
	case "G":
		m.reorderSelected(+1)

	case "d":
		if id := m.controller.SelectedID(); id != "" {
			if m.cfg.Confirmations {
				m.mode = ModeConfirm
				m.confirmAction = ConfirmDeleteAnnotation
				m.confirmID = id
			} else {
				m.controller.Delete(id)
				m.drainEvents()
			}
		}

	case "e":
		if a, ok := m.selectedAnnotation(); ok {
			m.mode = ModeLabelInput
			m.inputTarget = a.ID
			m.input = a.Label
		}

	case "r":
		if a, ok := m.selectedAnnotation(); ok && a.Type == TypeText {
			m.mode = ModeTranscribe
			m.inputTarget = a.ID
			m.input = a.RawText
		}

	case "v":
		if a, ok := m.selectedAnnotation(); ok && a.Type == TypeText {
			text, err := readClipboardText()
			if err != nil {
				m.errorMessage = fmt.Sprintf("clipboard: %v", err)
				break
			}
			text = strings.TrimSpace(cleanClipboardText(text))
			m.store.Update(a.ID, func(a *Annotation) {
				a.RawText = text
				a.Values = parseValues(text)
			})
			m.successMessage = "Pasted transcription from clipboard"
		}

	case "i":
		if a, ok := m.selectedAnnotation(); ok && a.Type == TypeText {
			m.store.Update(a.ID, func(a *Annotation) {
				a.IsIgnored = !a.IsIgnored
			})
		}

	case "x":
		if a, ok := m.selectedAnnotation(); ok && a.Type == TypeText {
			m.mode = ModeLink
			m.inputTarget = a.ID
		}

	case "y":
		if a, ok := m.selectedAnnotation(); ok {
			text := a.Label
			if a.RawText != "" {
				text = a.RawText
			}
			if err := yankToClipboard(text); err != nil {
				m.errorMessage = fmt.Sprintf("clipboard: %v", err)
			} else {
				m.successMessage = "Yanked to clipboard"
			}
		}

	case "[":
		m.switchPage(m.controller.Page() - 1)
	case "]":
		m.switchPage(m.controller.Page() + 1)

	case "u":
		if m.doc == nil {
			break
		}
		path := m.doc.Path
		client := m.client
		m.successMessage = "Uploading..."
		return m, func() tea.Msg {
			resp, err := client.Upload(path)
			return uploadResultMsg{resp: resp, err: err}
		}

	case "W":
		if m.doc == nil {
			break
		}
		if m.submitting {
			m.errorMessage = "Submission already in progress"
			break
		}
		if n := m.store.MissingLabels(); n > 0 {
			m.errorMessage = fmt.Sprintf("%d annotation(s) still need a label", n)
			break
		}
		if m.cfg.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmSubmit
			return m, nil
		}
		return m.startSubmit()

	case "S":
		if m.doc == nil {
			break
		}
		m.mode = ModeFileInput
		m.fileOp = FileOpExportPNG
		m.filename = fmt.Sprintf("%s-p%d.png", m.doc.ID, m.controller.Page())
	}

	return m, nil
}

func (m *model) toggleTool(t Tool) {
	if m.controller.Tool() == t {
		m.controller.ArmTool(ToolNone)
		return
	}
	m.controller.ArmTool(t)
	m.successMessage = fmt.Sprintf("%s tool armed (Esc to disarm)", t)
}

func (m model) zoomAtCenter(factor float64) (tea.Model, tea.Cmd) {
	center := Point{float64(m.width) / 2, float64(m.canvasHeight()) / 2}
	m.view.ZoomAt(center, factor)
	m.renderScale.Touch(m.view.Scale, time.Now())
	return m, promoteTick()
}

func (m *model) reorderSelected(dir int) {
	id := m.controller.SelectedID()
	if id == "" {
		return
	}
	i := m.store.indexOf(id)
	m.store.Reorder(i, i+dir)
	m.successMessage = fmt.Sprintf("Now %s%d", typeTagPrefix(m.selectedType()), m.store.TypeIndex(id))
}

func (m *model) selectedType() AnnotationType {
	if a, ok := m.selectedAnnotation(); ok {
		return a.Type
	}
	return ""
}

func (m *model) selectedAnnotation() (Annotation, bool) {
	return m.store.Get(m.controller.SelectedID())
}

func (m *model) switchPage(n int) {
	if m.doc == nil || n < 1 || n > m.doc.NumPages() {
		return
	}
	m.controller.SetPage(n)
	m.view.ResetCentering()
	m.fitPage()
}

func (m model) startSubmit() (tea.Model, tea.Cmd) {
	m.submitting = true
	m.successMessage = "Submitting..."
	payload := BuildSubmitPayload(m.doc, m.store)
	client := m.client
	return m, func() tea.Msg {
		return submitResultMsg{err: client.Submit(payload)}
	}
}

func (m model) updateTextInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.input = ""
		m.inputTarget = ""

	case tea.KeyEnter:
		target := m.inputTarget
		text := m.input
		if m.mode == ModeLabelInput {
			m.store.Update(target, func(a *Annotation) { a.Label = text })
		} else {
			m.store.Update(target, func(a *Annotation) {
				a.RawText = text
				a.Values = parseValues(text)
			})
		}
		m.mode = ModeNormal
		m.input = ""
		m.inputTarget = ""

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}

	case tea.KeySpace:
		m.input += " "

	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m model) updateFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.filename = ""
		if m.doc == nil {
			m.mode = ModeStartup
		} else {
			m.mode = ModeNormal
		}

	case tea.KeyEnter:
		if m.filename == "" {
			return m, nil
		}
		switch m.fileOp {
		case FileOpOpen:
			if err := m.openDocument(m.filename); err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			m.successMessage = fmt.Sprintf("Opened %s (%d pages)", m.doc.Filename, m.doc.NumPages())
		case FileOpExportPNG:
			name := m.cfg.GetSavePath(m.filename)
			size := m.doc.PageSize(m.controller.Page())
			if err := ExportPNG(name, m.store, size, m.controller.Page()); err != nil {
				m.errorMessage = err.Error()
				return m, nil
			}
			m.successMessage = fmt.Sprintf("Exported %s", name)
		}
		m.mode = ModeNormal
		m.errorMessage = ""
		m.filename = ""

	case tea.KeyBackspace:
		if len(m.filename) > 0 {
			runes := []rune(m.filename)
			m.filename = string(runes[:len(runes)-1])
		}

	case tea.KeySpace:
		m.filename += " "

	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

func (m model) updateConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmDeleteAnnotation:
			m.controller.Delete(m.confirmID)
			m.confirmID = ""
			m.drainEvents()
		case ConfirmSubmit:
			return m.startSubmit()
		case ConfirmQuit:
			return m, tea.Quit
		}
	case "n", "N", "esc", "escape":
		m.mode = ModeNormal
		m.confirmID = ""
	}
	return m, nil
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := Point{float64(msg.X), float64(msg.Y)}

	if m.mode == ModeLink {
		if msg.Type == tea.MouseLeft {
			logical := m.view.ScreenToLogical(p)
			if hit, ok := m.store.HitTest(logical, m.controller.Page()); ok && hit.connectable() {
				target := m.inputTarget
				m.store.Update(target, func(a *Annotation) {
					a.LinkedAnnotationID = hit.ID
				})
				m.successMessage = fmt.Sprintf("Linked to %s%d", typeTagPrefix(hit.Type), m.store.TypeIndex(hit.ID))
				m.mode = ModeNormal
				m.inputTarget = ""
			}
		}
		return m, nil
	}

	if m.mode != ModeNormal {
		return m, nil
	}

	mods := Modifiers{Alt: msg.Alt, Ctrl: msg.Ctrl}

	switch msg.Type {
	case tea.MouseLeft:
		// The first left event is the press; cell-motion mode reports the
		// drag as further left events.
		if !m.mouseDown {
			m.mouseDown = true
			m.controller.HandlePointerDown(p, mods)
		} else {
			m.controller.HandlePointerMove(p, mods)
		}
		m.drainEvents()

	case tea.MouseMotion:
		if m.mouseDown {
			m.controller.HandlePointerMove(p, mods)
		}

	case tea.MouseRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.controller.HandlePointerUp(p, mods)
			m.drainEvents()
		}

	case tea.MouseWheelUp:
		m.view.ZoomAt(p, zoomStep)
		m.renderScale.Touch(m.view.Scale, time.Now())
		return m, promoteTick()

	case tea.MouseWheelDown:
		m.view.ZoomAt(p, 1/zoomStep)
		m.renderScale.Touch(m.view.Scale, time.Now())
		return m, promoteTick()
	}
	return m, nil
}

// drainEvents turns controller events into status messages and follow-up
// mode switches (a fresh box or text region goes straight to label input).
func (m *model) drainEvents() {
	for _, e := range m.queue.drain() {
		switch e := e.(type) {
		case AnnotationAdded:
			a := e.Annotation
			m.successMessage = fmt.Sprintf("Added %s%d", typeTagPrefix(a.Type), m.store.TypeIndex(a.ID))
			if a.Type == TypeBox || a.Type == TypeText {
				m.mode = ModeLabelInput
				m.inputTarget = a.ID
				m.input = ""
			}
		case AnnotationDeleted:
			m.successMessage = "Deleted"
		case AnnotationMoved:
			m.successMessage = "Moved"
		case AnnotationResized:
			m.successMessage = "Resized"
		case ConnectionPending:
			if src, ok := m.store.Get(e.SourceID); ok {
				m.successMessage = fmt.Sprintf("Connecting from %s%d (click target, empty space cancels)",
					typeTagPrefix(src.Type), m.store.TypeIndex(src.ID))
			}
		case DrawingFinished:
			if !e.Committed && e.Tool != ToolConnection {
				m.successMessage = "Drag too small, discarded"
			}
		}
	}
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Background(lipgloss.Color("236")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Background(lipgloss.Color("236"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	var result strings.Builder

	switch m.mode {
	case ModeStartup:
		result.WriteString("markterm — annotate scanned drawings in your terminal\n\n")
		result.WriteString("  o  open a document (.png, .jpg, .pdf)\n")
		result.WriteString("  ?  help\n")
		result.WriteString("  q  quit\n")
		if m.errorMessage != "" {
			result.WriteString("\nERROR: " + m.errorMessage + "\n")
		}

	case ModeFileInput:
		prompt := "Open document"
		field := "Path"
		if m.fileOp == FileOpExportPNG {
			prompt = "Export PNG"
			field = "Filename"
		}
		result.WriteString(prompt + "\n")
		result.WriteString(strings.Repeat("─", maxInt(m.width, 1)))
		result.WriteString("\n")
		result.WriteString(field + ": ")
		result.WriteString(m.filename)
		result.WriteString("█")
		if m.errorMessage != "" {
			result.WriteString("\nERROR: " + m.errorMessage)
		}

	default:
		opts := RenderOptions{
			SelectedID:    m.controller.SelectedID(),
			PendingSource: m.controller.PendingSource(),
			Draft:         m.renderScale.Pending(),
		}
		if r, ok := m.controller.Preview(); ok {
			opts.Preview = &r
		}
		if m.doc != nil {
			opts.PageSize = m.doc.PageSize(m.controller.Page())
		}
		lines := RenderCanvas(maxInt(m.width, 1), m.canvasHeight(), m.store, m.view, m.controller.Page(), opts)
		for _, line := range lines {
			result.WriteString(line)
			result.WriteString("\n")
		}
	}

	if m.mode != ModeStartup && m.mode != ModeFileInput {
		result.WriteString(m.statusLine())
	}
	return result.String()
}

func (m model) statusLine() string {
	var s string
	style := statusStyle

	switch m.mode {
	case ModeLabelInput:
		s = fmt.Sprintf(" LABEL | %s█ | Enter=save, Esc=cancel", m.input)
	case ModeTranscribe:
		s = fmt.Sprintf(" TRANSCRIBE | %s█ | Enter=save, Esc=cancel", m.input)
	case ModeLink:
		s = " LINK | click a box or node to link, Esc=cancel"
	case ModeConfirm:
		switch m.confirmAction {
		case ConfirmDeleteAnnotation:
			s = " Delete this annotation and its connections? (y/n)"
		case ConfirmSubmit:
			s = " Submit annotations to the backend? (y/n)"
		case ConfirmQuit:
			s = " Quit markterm? (y/n)"
		}
	default:
		tool := "none"
		if m.controller.Tool() != ToolNone {
			tool = m.controller.Tool().String()
		}
		s = fmt.Sprintf(" Tool: %s | Zoom: %d%%", tool, int(m.view.Scale*100+0.5))
		if m.doc != nil {
			s += fmt.Sprintf(" | Page %d/%d", m.controller.Page(), m.doc.NumPages())
		}
		if id := m.controller.SelectedID(); id != "" {
			if a, ok := m.store.Get(id); ok {
				s += fmt.Sprintf(" | Selected: %s%d", typeTagPrefix(a.Type), m.store.TypeIndex(id))
			}
		}
		if m.submitting {
			s += " | submitting..."
		}
		switch {
		case m.errorMessage != "":
			s += " | ERROR: " + m.errorMessage
			style = errorStyle
		case m.successMessage != "":
			s += " | " + m.successMessage
			style = successStyle
		default:
			s += " | ? for help"
		}
	}

	if m.errorMessage != "" && m.mode != ModeNormal {
		s += " | ERROR: " + m.errorMessage
		style = errorStyle
	}

	width := maxInt(m.width, 1)
	if len(s) < width {
		s += strings.Repeat(" ", width-len(s))
	}
	return style.Render(s)
}

func (m model) helpView() string {
	lines := []string{
		"markterm Help",
		"=============",
		"",
		"Tools (press again or Esc to disarm):",
		"  b   box        drag a rectangle around a component",
		"  t   text       drag a rectangle around handwritten text",
		"  n   node       click to drop a junction point",
		"  c   connection click source box/node, then target",
		"  L   line       drag a freehand two-point stroke",
		"",
		"Mouse:",
		"  drag on empty canvas     pan",
		"  drag on annotation       move it",
		"  drag a corner or edge    resize it",
		"  wheel                    zoom at pointer",
		"",
		"Annotations (on the selection):",
		"  e   edit label",
		"  r   transcribe text (text annotations)",
		"  v   paste transcription from clipboard",
		"  i   toggle ignored",
		"  x   link text to a box or node",
		"  y   yank label/text to clipboard",
		"  g/G move earlier/later in collection order",
		"  d   delete (cascades to connections)",
		"",
		"View:",
		"  +/- zoom at center        f  fit page",
		"  hjkl/arrows pan           H/J/K pan faster",
		"  [/] previous/next page",
		"",
		"Document:",
		"  u   upload to backend     W  submit annotations",
		"  S   export page as PNG    o  open another document",
		"",
		"  q quit | ? close help",
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
