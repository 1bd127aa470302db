package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	charmLog "github.com/charmbracelet/log"

	"github.com/hylla/tabula/internal/app"
	"github.com/hylla/tabula/internal/domain"
)

// rendering defaults tuned for a standard terminal.
const (
	defaultMaxColWidth = 32
	defaultFlash       = 350 * time.Millisecond
	defaultToast       = 2500 * time.Millisecond
	minColWidth        = 4
)

// helpMarkdown documents the interaction model for the help overlay.
const helpMarkdown = `# tabula

## Selecting
- **click** select a cell, **drag** a rectangle
- **ctrl+click** toggle a cell, **shift+click** extend the rectangle
- click the **column header** or **row number** for whole columns/rows
- **arrows** move the active cell, **shift+arrows** extend
- **ctrl+a** select everything, **esc** clear

## Acting
- **ctrl+c** copy the selection as a tab-separated block
- **e** edit cells, **v** toggle table/raw view
- **q** quit

## Editing
- **enter** commit the cell and move down
- **ctrl+z** undo, **ctrl+shift+z** / **ctrl+y** redo
- **ctrl+s** save, **ctrl+x** save and exit, **esc** cancel all edits
`

// Model is the grid view controller. All mutable interaction state lives
// here and is only touched on the bubbletea event loop.
type Model struct {
	grid    *domain.Grid
	sel     *domain.Selection
	session *app.Session
	host    app.Host
	clip    app.ClipboardWriter
	logger  *charmLog.Logger

	keys      keyMap
	help      help.Model
	editInput textinput.Model
	overlay   helpRenderer

	ready  bool
	width  int
	height int

	scrollRow int
	scrollCol int

	tableView bool
	showHelp  bool
	dragging  bool

	copyInFlight bool
	flashRect    domain.Rect
	flashOn      bool
	flashSeq     int
	flashFor     time.Duration

	toast    string
	toastSeq int
	toastFor time.Duration

	chunkSize   int
	maxColWidth int
	placeholder string
}

// NewModel constructs a new value for this package. The host and clipboard
// may be nil; the matching actions degrade to status toasts.
func NewModel(hostClient app.Host, clip app.ClipboardWriter, opts ...Option) Model {
	grid := domain.NewGrid(nil, nil)
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 0
	h := help.New()
	h.ShowAll = false
	m := Model{
		grid:        grid,
		sel:         domain.NewSelection(grid),
		session:     app.NewSession(grid),
		host:        hostClient,
		clip:        clip,
		logger:      charmLog.Default(),
		keys:        newKeyMap(),
		help:        h,
		editInput:   input,
		tableView:   true,
		chunkSize:   app.DefaultCopyChunkSize,
		maxColWidth: defaultMaxColWidth,
		flashFor:    defaultFlash,
		toastFor:    defaultToast,
		placeholder: "waiting for table...",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.announceReady
}

// announceReady tells the host the view is wired up and wants content.
func (m Model) announceReady() tea.Msg {
	if m.host == nil {
		return nil
	}
	if err := m.host.Ready(); err != nil {
		return hostErrorMsg{err: err}
	}
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case TableInitMsg:
		m.grid.Reset(msg.Header, msg.Rows)
		m.session.ForceExit()
		m.editInput.Blur()
		m.sel.Clear()
		m.scrollRow = 0
		m.scrollCol = 0
		m.flashOn = false
		m.copyInFlight = false
		m.logger.Debug("table initialized", "rows", m.grid.RowCount(), "cols", m.grid.ColCount())
		return m, (&m).setToast(fmt.Sprintf("loaded %d rows", m.grid.RowCount()))

	case RowsAppendedMsg:
		m.grid.AppendRows(msg.Rows)
		return m, nil

	case SaveResultMsg:
		return m.finishSave(msg)

	case HostClosedMsg:
		if msg.Err != nil {
			m.logger.Warn("host channel closed", "err", msg.Err)
			return m, (&m).setToast("host disconnected: " + msg.Err.Error())
		}
		return m, (&m).setToast("host disconnected")

	case hostErrorMsg:
		m.logger.Warn("host send failed", "err", msg.err)
		return m, (&m).setToast("host error: " + msg.err.Error())

	case copyDoneMsg:
		return m.finishCopy(msg)

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flashOn = false
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.session.Editing() {
			return m.handleEditKey(msg)
		}
		return m.handleViewKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		m.dragging = false
		m.sel.EndDrag()
		return m, nil

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)
	}
	return m, nil
}

// handleViewKey dispatches keys while browsing.
func (m Model) handleViewKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	extend := msg.Mod&tea.ModShift != 0
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.clear):
		m.sel.Clear()
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		m.sel.Move(-1, 0, extend)
		m.scrollToActive()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.sel.Move(1, 0, extend)
		m.scrollToActive()
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.sel.Move(0, -1, extend)
		m.scrollToActive()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.sel.Move(0, 1, extend)
		m.scrollToActive()
		return m, nil

	case key.Matches(msg, m.keys.selectAll):
		m.sel.SelectAll()
		return m, nil

	case key.Matches(msg, m.keys.copyCells):
		return m.startCopy()

	case key.Matches(msg, m.keys.editMode):
		return m.enterEditMode()

	case key.Matches(msg, m.keys.toggleView):
		return m.requestToggleView()
	}
	return m, nil
}

// handleEditKey dispatches keys while editing or saving.
func (m Model) handleEditKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.session.Saving() {
		switch {
		case key.Matches(msg, m.keys.save), key.Matches(msg, m.keys.saveAndExit):
			return m, (&m).setToast("save already in flight")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.cancelEdit):
		m.session.Cancel()
		m.editInput.Blur()
		return m, (&m).setToast("edits discarded")

	case key.Matches(msg, m.keys.undo):
		if m.session.Undo() {
			m.loadActiveCell()
			return m, nil
		}
		return m, (&m).setToast("nothing to undo")

	case key.Matches(msg, m.keys.redo):
		if m.session.Redo() {
			m.loadActiveCell()
			return m, nil
		}
		return m, (&m).setToast("nothing to redo")

	case key.Matches(msg, m.keys.save):
		return m.startSave(false)

	case key.Matches(msg, m.keys.saveAndExit):
		return m.startSave(true)

	case key.Matches(msg, m.keys.commit):
		if active, ok := m.sel.Active(); ok {
			m.session.CommitCell(active.Row, active.Col, m.editInput.Value())
		}
		m.sel.Move(1, 0, false)
		m.scrollToActive()
		m.loadActiveCell()
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

// startCopy launches the chunked clipboard copy as a command goroutine
// over an immutable snapshot. Re-entry is suppressed on the event loop.
func (m Model) startCopy() (tea.Model, tea.Cmd) {
	if m.copyInFlight {
		return m, (&m).setToast("copy already in progress")
	}
	if m.sel.Count() == 0 {
		return m, (&m).setToast("nothing selected")
	}
	m.copyInFlight = true
	cells := m.sel.Cells()
	snapshot := m.grid.Snapshot()
	chunk := m.chunkSize
	clip := m.clip
	copyCmd := func() tea.Msg {
		result, err := app.BuildTabSeparated(context.Background(), cells, func(c domain.Coord) string {
			if c.Row >= 0 && c.Row < len(snapshot) && c.Col >= 0 && c.Col < len(snapshot[c.Row]) {
				return snapshot[c.Row][c.Col]
			}
			return ""
		}, chunk, nil)
		if err != nil {
			return copyDoneMsg{err: err}
		}
		if clip == nil {
			return copyDoneMsg{err: fmt.Errorf("no clipboard available")}
		}
		if err := clip.Write(result.Text); err != nil {
			return copyDoneMsg{err: err}
		}
		return copyDoneMsg{result: result}
	}
	return m, copyCmd
}

// finishCopy applies the copy outcome: flash on success, toast on failure.
func (m Model) finishCopy(msg copyDoneMsg) (tea.Model, tea.Cmd) {
	m.copyInFlight = false
	if msg.err != nil {
		m.logger.Warn("copy failed", "err", msg.err)
		return m, (&m).setToast("copy failed: " + msg.err.Error())
	}
	m.flashRect = msg.result.Rect
	m.flashOn = true
	m.flashSeq++
	seq := m.flashSeq
	flashCmd := tea.Tick(m.flashFor, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
	return m, tea.Batch(flashCmd, (&m).setToast(fmt.Sprintf("copied %d cells", msg.result.Cells)))
}

// enterEditMode starts an edit session focused on the active cell.
func (m Model) enterEditMode() (tea.Model, tea.Cmd) {
	if m.grid.RowCount() == 0 || m.grid.ColCount() == 0 {
		return m, (&m).setToast("no table to edit")
	}
	m.session.Enter()
	// Editing narrows the selection to the focused cell.
	focus := domain.Coord{}
	if active, ok := m.sel.Active(); ok {
		focus = active
	}
	m.sel.Click(focus)
	m.scrollToActive()
	m.loadActiveCell()
	return m, m.editInput.Focus()
}

// loadActiveCell mirrors the active cell's text into the edit input.
func (m *Model) loadActiveCell() {
	active, ok := m.sel.Active()
	if !ok {
		return
	}
	m.editInput.SetValue(m.grid.GetCell(active.Row, active.Col))
	m.editInput.CursorEnd()
}

// startSave serializes the grid and asks the host to persist it. The
// session guards against a second request while one is in flight.
func (m Model) startSave(exitAfter bool) (tea.Model, tea.Cmd) {
	if m.host == nil {
		return m, (&m).setToast("no host connected")
	}
	if active, ok := m.sel.Active(); ok {
		m.session.CommitCell(active.Row, active.Col, m.editInput.Value())
	}
	m.editInput.Blur()
	m.sel.Clear()
	text, err := m.session.Save(exitAfter)
	if err != nil {
		return m, (&m).setToast(err.Error())
	}
	hostClient := m.host
	sendCmd := func() tea.Msg {
		if err := hostClient.RequestSave(text); err != nil {
			return hostErrorMsg{err: err}
		}
		return nil
	}
	return m, tea.Batch(sendCmd, (&m).setToast("saving..."))
}

// finishSave applies the host's save verdict.
func (m Model) finishSave(msg SaveResultMsg) (tea.Model, tea.Cmd) {
	exited := m.session.CompleteSave(msg.OK)
	if !msg.OK {
		reason := strings.TrimSpace(msg.Reason)
		if reason == "" {
			reason = "rejected by host"
		}
		m.logger.Warn("save rejected", "reason", reason)
		return m, (&m).setToast("save failed: " + reason)
	}
	if exited {
		m.editInput.Blur()
	}
	return m, (&m).setToast("saved")
}

// requestToggleView flips the table/raw preference and tells the host.
func (m Model) requestToggleView() (tea.Model, tea.Cmd) {
	if m.host == nil {
		return m, (&m).setToast("no host connected")
	}
	m.tableView = !m.tableView
	hostClient := m.host
	isTable := m.tableView
	sendCmd := func() tea.Msg {
		if err := hostClient.RequestToggleView(isTable); err != nil {
			return hostErrorMsg{err: err}
		}
		return nil
	}
	return m, sendCmd
}

// setToast replaces the transient status toast and schedules its expiry.
func (m *Model) setToast(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.toastFor, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// hitZone identifies what part of the grid chrome a mouse position maps to.
type hitZone int

const (
	zoneNone hitZone = iota
	zoneCell
	zoneColHeader
	zoneRowGutter
)

// hitTest maps terminal coordinates to a grid location. The geometry must
// mirror View's layout exactly.
func (m Model) hitTest(x, y int) (hitZone, domain.Coord) {
	rows, cols := m.grid.RowCount(), m.grid.ColCount()
	if rows == 0 || cols == 0 {
		return zoneNone, domain.Coord{}
	}
	gutter := m.gutterWidth()
	headerY := m.gridTop() - 1
	dataTop := m.gridTop()
	dataBottom := dataTop + min(m.pageRows(), rows-m.scrollRow) - 1

	col, inCols := m.colAt(x - gutter)
	switch {
	case y == headerY && inCols:
		return zoneColHeader, domain.Coord{Col: col}
	case y >= dataTop && y <= dataBottom:
		row := m.scrollRow + (y - dataTop)
		if row >= rows {
			return zoneNone, domain.Coord{}
		}
		if x < gutter {
			return zoneRowGutter, domain.Coord{Row: row}
		}
		if inCols {
			return zoneCell, domain.Coord{Row: row, Col: col}
		}
	}
	return zoneNone, domain.Coord{}
}

// colAt resolves a column index from an x offset inside the data area.
func (m Model) colAt(x int) (int, bool) {
	if x < 0 {
		return 0, false
	}
	widths := m.colWidths()
	pos := 0
	for col := m.scrollCol; col < len(widths); col++ {
		next := pos + widths[col] + 1
		if x < next {
			return col, true
		}
		pos = next
	}
	return 0, false
}

// handleMouseClick routes a press to cell, header, or gutter selection.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	ctrl := msg.Mod&tea.ModCtrl != 0
	shift := msg.Mod&tea.ModShift != 0

	zone, coord := m.hitTest(msg.X, msg.Y)

	if m.session.Editing() {
		// Editing commits the focused cell before moving focus elsewhere.
		if zone != zoneCell || m.session.Saving() {
			return m, nil
		}
		if active, ok := m.sel.Active(); ok {
			m.session.CommitCell(active.Row, active.Col, m.editInput.Value())
		}
		m.sel.Click(coord)
		m.loadActiveCell()
		return m, nil
	}

	switch zone {
	case zoneCell:
		switch {
		case ctrl:
			m.sel.CtrlClick(coord)
		case shift:
			m.sel.ShiftClick(coord)
		default:
			m.sel.Click(coord)
			m.dragging = true
		}
	case zoneColHeader:
		switch {
		case ctrl:
			m.sel.ColCtrlClick(coord.Col)
		case shift:
			m.sel.ColShiftClick(coord.Col)
		default:
			m.sel.ColClick(coord.Col)
		}
	case zoneRowGutter:
		switch {
		case ctrl:
			m.sel.RowCtrlClick(coord.Row)
		case shift:
			m.sel.RowShiftClick(coord.Row)
		default:
			m.sel.RowClick(coord.Row)
		}
	default:
		m.sel.Clear()
	}
	return m, nil
}

// handleMouseMotion grows the drag rectangle while the button is held.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.dragging || m.session.Editing() {
		return m, nil
	}
	if zone, coord := m.hitTest(msg.X, msg.Y); zone == zoneCell {
		m.sel.DragTo(coord)
	}
	return m, nil
}

// handleMouseWheel scrolls the viewport.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseWheelUp:
		m.scrollRow--
	case tea.MouseWheelDown:
		m.scrollRow++
	case tea.MouseWheelLeft:
		m.scrollCol--
	case tea.MouseWheelRight:
		m.scrollCol++
	}
	m.clampScroll()
	return m, nil
}

// gridTop returns the terminal row of the first data row.
func (m Model) gridTop() int {
	return 2 // title line + column header row
}

// pageRows returns how many data rows fit in the viewport.
func (m Model) pageRows() int {
	// title + header row above, status + help chrome below.
	return max(1, m.height-6)
}

// gutterWidth returns the row-number gutter width including its separator.
func (m Model) gutterWidth() int {
	digits := 1
	for n := m.grid.RowCount(); n >= 10; n /= 10 {
		digits++
	}
	return max(3, digits+1)
}

// colWidths computes rendered column widths from the header and the
// visible row window, capped at the configured maximum.
func (m Model) colWidths() []int {
	cols := m.grid.ColCount()
	widths := make([]int, cols)
	for col := 0; col < cols; col++ {
		w := len([]rune(m.grid.Header(col)))
		last := min(m.grid.RowCount(), m.scrollRow+m.pageRows())
		for row := m.scrollRow; row < last; row++ {
			if l := len([]rune(m.grid.GetCell(row, col))); l > w {
				w = l
			}
		}
		widths[col] = clamp(w, minColWidth, m.maxColWidth)
	}
	return widths
}

// scrollToActive keeps the active cell inside the viewport.
func (m *Model) scrollToActive() {
	active, ok := m.sel.Active()
	if !ok {
		return
	}
	page := m.pageRows()
	if active.Row < m.scrollRow {
		m.scrollRow = active.Row
	}
	if active.Row >= m.scrollRow+page {
		m.scrollRow = active.Row - page + 1
	}
	if active.Col < m.scrollCol {
		m.scrollCol = active.Col
	}
	lastVisible := m.lastVisibleCol()
	for active.Col > lastVisible && m.scrollCol < m.grid.ColCount()-1 {
		m.scrollCol++
		lastVisible = m.lastVisibleCol()
	}
	m.clampScroll()
}

// lastVisibleCol returns the rightmost column that fully fits on screen.
func (m Model) lastVisibleCol() int {
	widths := m.colWidths()
	avail := m.width - m.gutterWidth()
	if m.width <= 0 {
		return len(widths) - 1
	}
	pos := 0
	last := m.scrollCol
	for col := m.scrollCol; col < len(widths); col++ {
		pos += widths[col] + 1
		if pos > avail {
			break
		}
		last = col
	}
	return last
}

// clampScroll bounds the viewport offsets to the grid.
func (m *Model) clampScroll() {
	maxRow := max(0, m.grid.RowCount()-m.pageRows())
	m.scrollRow = clamp(m.scrollRow, 0, maxRow)
	m.scrollCol = clamp(m.scrollCol, 0, max(0, m.grid.ColCount()-1))
}

// inFlash reports whether a cell is inside the copied-cell flash rectangle.
func (m Model) inFlash(c domain.Coord) bool {
	return m.flashOn && m.flashRect.Contains(c)
}

// View renders the grid, chrome, and overlays.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	gutterStyle := lipgloss.NewStyle().Foreground(muted)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(accent)
	flashStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("114"))

	title := titleStyle.Render("tabula")
	switch {
	case m.session.Saving():
		title += statusStyle.Render("  [saving]")
	case m.session.Editing():
		title += statusStyle.Render("  [edit]")
	default:
		title += statusStyle.Render("  [view]")
	}
	if !m.tableView {
		title += statusStyle.Render("  raw view requested")
	}
	if summary := m.sel.Summary(); summary != "" {
		title += statusStyle.Render("  " + summary)
	}
	if m.copyInFlight {
		title += statusStyle.Render("  copying...")
	}

	sections := []string{title}

	rows, cols := m.grid.RowCount(), m.grid.ColCount()
	if rows == 0 || cols == 0 {
		sections = append(sections, "", statusStyle.Render(m.placeholder))
	} else {
		sections = append(sections, m.renderGrid(headerStyle, gutterStyle, selectedStyle, activeStyle, flashStyle)...)
	}

	if strings.TrimSpace(m.toast) != "" {
		sections = append(sections, statusStyle.Render(m.toast))
	} else if m.session.Editing() {
		if active, ok := m.sel.Active(); ok {
			sections = append(sections, statusStyle.Render(fmt.Sprintf("editing r%d c%d", active.Row+1, active.Col+1)))
		}
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	contentHeight := lipgloss.Height(content)
	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		contentHeight = max(0, m.height-helpHeight)
		content = fitLines(content, contentHeight)
	}

	fullContent := content + "\n" + helpLine
	if m.showHelp {
		overlay := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Render(m.overlay.render(max(24, m.width-12)))
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderGrid renders the column header row and the visible data window.
func (m Model) renderGrid(headerStyle, gutterStyle, selectedStyle, activeStyle, flashStyle lipgloss.Style) []string {
	widths := m.colWidths()
	gutter := m.gutterWidth()
	lastCol := m.lastVisibleCol()
	active, hasActive := m.sel.Active()
	editing := m.session.Editing()

	headerCells := make([]string, 0, lastCol-m.scrollCol+1)
	for col := m.scrollCol; col <= lastCol; col++ {
		headerCells = append(headerCells, headerStyle.Render(padCell(m.grid.Header(col), widths[col])))
	}
	headerRow := strings.Repeat(" ", gutter) + strings.Join(headerCells, " ")

	lines := make([]string, 0, m.pageRows()+1)
	lines = append(lines, headerRow)

	lastRow := min(m.grid.RowCount(), m.scrollRow+m.pageRows())
	for row := m.scrollRow; row < lastRow; row++ {
		number := fmt.Sprintf("%*d ", gutter-1, row+1)
		cells := make([]string, 0, lastCol-m.scrollCol+1)
		for col := m.scrollCol; col <= lastCol; col++ {
			coord := domain.Coord{Row: row, Col: col}
			isActive := hasActive && coord == active
			if editing && isActive {
				cells = append(cells, m.editInput.View())
				continue
			}
			text := padCell(m.grid.GetCell(row, col), widths[col])
			switch {
			case m.inFlash(coord):
				text = flashStyle.Render(text)
			case isActive:
				text = activeStyle.Render(text)
			case m.sel.Contains(coord):
				text = selectedStyle.Render(text)
			}
			cells = append(cells, text)
		}
		lines = append(lines, gutterStyle.Render(number)+strings.Join(cells, " "))
	}
	return lines
}

// padCell truncates or pads cell text to a fixed rendering width.
func padCell(text string, width int) string {
	text = truncate(text, width)
	if pad := width - len([]rune(text)); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return text
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
