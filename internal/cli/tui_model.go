package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"clockin/internal/cli/formatter"
	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/services"
	"clockin/internal/session"
)

const toastDuration = 4 * time.Second

type toastKind int

const (
	toastInfo toastKind = iota
	toastError
)

// ── messages ─────────────────────────────────────────────────────────────────

// tickMsg carries the generation it was scheduled under. A tick from an
// older generation is dropped, which is how stopping cancels the timer.
type tickMsg struct {
	gen int
	at  time.Time
}

type checkedInMsg struct {
	status *services.SessionStatus
	err    error
}

type checkedOutMsg struct {
	result *services.CheckoutResult
	err    error
}

type persistedMsg struct {
	entry *domain.TimeEntry
	err   error
}

type historyLoadedMsg struct {
	report *services.HistoryReport
	err    error
}

type rangeParsedMsg struct {
	rng *domain.DateRange
	err error
}

type toastExpiredMsg struct{ seq int }

type feedMsg struct{ entry *domain.TimeEntry }

type feedClosedMsg struct{}

// pendingCheckouts tracks writes still in flight so the command can wait
// for them after the program exits.
type pendingCheckouts struct {
	mu    sync.Mutex
	items []*session.Checkout
}

func (p *pendingCheckouts) add(c *session.Checkout) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, c)
}

// Wait blocks until every tracked checkout has resolved or ctx ends.
func (p *pendingCheckouts) Wait(ctx context.Context) []error {
	p.mu.Lock()
	items := append([]*session.Checkout(nil), p.items...)
	p.mu.Unlock()

	var errs []error
	for _, c := range items {
		if err := c.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// rangeBounds holds the form's values. It lives on the heap because the
// model is copied on every update.
type rangeBounds struct {
	from string
	to   string
}

// ── model ────────────────────────────────────────────────────────────────────

// attendanceModel is the bubbletea Model behind `clockin ui`.
type attendanceModel struct {
	ctx context.Context
	app *App

	status  *services.SessionStatus
	tickGen int

	table  table.Model
	report *services.HistoryReport
	rng    *domain.DateRange

	form   *huh.Form
	bounds *rangeBounds

	toast     string
	toastKind toastKind
	toastSeq  int

	feed     <-chan *domain.TimeEntry
	pending  *pendingCheckouts
	width    int
	quitting bool
}

func newAttendanceModel(ctx context.Context, app *App, feed <-chan *domain.TimeEntry) attendanceModel {
	t := table.New(
		table.WithColumns(entryColumns(0)),
		table.WithFocused(true),
		table.WithHeight(app.config.Display.TableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(formatter.ColorHeader).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(formatter.ColorDim).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(formatter.ColorBg).Background(formatter.ColorGreen)
	t.SetStyles(styles)

	return attendanceModel{
		ctx:     ctx,
		app:     app,
		status:  app.businessAPI.GetStatus(ctx),
		table:   t,
		feed:    feed,
		pending: &pendingCheckouts{},
	}
}

func entryColumns(width int) []table.Column {
	widths := []int{11, 10, 10, 10, 20}
	if width > 0 {
		// Give spare width to the Total Time column.
		used := 0
		for _, w := range widths {
			used += w + 2
		}
		if extra := width - used; extra > 0 {
			widths[4] += extra
		}
	}
	cols := make([]table.Column, len(formatter.EntryHeaders))
	for i, title := range formatter.EntryHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m attendanceModel) scheduleTick() tea.Cmd {
	gen := m.tickGen
	interval := m.app.config.Session.TickInterval
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m attendanceModel) loadHistory() tea.Cmd {
	ctx, api, rng := m.ctx, m.app.businessAPI, m.rng
	return func() tea.Msg {
		report, err := api.GetHistory(ctx, rng)
		return historyLoadedMsg{report: report, err: err}
	}
}

func (m attendanceModel) checkIn() tea.Cmd {
	ctx, api := m.ctx, m.app.businessAPI
	return func() tea.Msg {
		status, err := api.CheckIn(ctx)
		return checkedInMsg{status: status, err: err}
	}
}

func (m attendanceModel) checkOut() tea.Cmd {
	ctx, api := m.ctx, m.app.businessAPI
	return func() tea.Msg {
		result, err := api.CheckOut(ctx)
		return checkedOutMsg{result: result, err: err}
	}
}

// awaitPersist resolves once the store answers. It does not watch the
// model's context, so leaving the view never abandons a write.
func awaitPersist(c *session.Checkout) tea.Cmd {
	return func() tea.Msg {
		<-c.Done()
		entry := c.Stored()
		if entry == nil {
			entry = c.Entry
		}
		return persistedMsg{entry: entry, err: c.Err()}
	}
}

func (m attendanceModel) parseRange(from, to string) tea.Cmd {
	ctx, api := m.ctx, m.app.businessAPI
	return func() tea.Msg {
		rng, err := api.ParseTimeRange(ctx, from, to, "")
		return rangeParsedMsg{rng: rng, err: err}
	}
}

func waitForFeed(feed <-chan *domain.TimeEntry) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		return feedMsg{entry: entry}
	}
}

func (m *attendanceModel) notify(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastKind = kind
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m attendanceModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadHistory(), waitForFeed(m.feed)}
	if m.status.Active {
		cmds = append(cmds, m.scheduleTick())
	}
	return tea.Batch(cmds...)
}

func (m attendanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(entryColumns(msg.Width))
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg)

	case tickMsg:
		if msg.gen != m.tickGen || !m.status.Active {
			return m, nil
		}
		m.status = m.app.businessAPI.GetStatus(m.ctx)
		return m, m.scheduleTick()

	case checkedInMsg:
		if msg.err != nil {
			toast := m.notify(toastError, errors.GetUserMessage(msg.err))
			return m, toast
		}
		m.status = msg.status
		m.tickGen++
		label := m.app.config.Display.ClockedInLabel
		toast := m.notify(toastInfo, fmt.Sprintf("%s: %s", label, m.app.formatClock(*msg.status.CheckInTime)))
		return m, tea.Batch(m.scheduleTick(), toast)

	case checkedOutMsg:
		if msg.err != nil {
			toast := m.notify(toastError, errors.GetUserMessage(msg.err))
			return m, toast
		}
		m.tickGen++
		m.status = m.app.businessAPI.GetStatus(m.ctx)
		m.pending.add(msg.result.Checkout)

		cmds := []tea.Cmd{awaitPersist(msg.result.Checkout)}
		if msg.result.Warning != nil {
			cmds = append(cmds, m.notify(toastError, "Session state not cleared: "+errors.GetUserMessage(msg.result.Warning)))
		} else {
			cmds = append(cmds, m.notify(toastInfo, "Worked "+msg.result.Entry.TotalTime))
		}
		return m, tea.Batch(cmds...)

	case persistedMsg:
		if m.quitting {
			return m, nil
		}
		if msg.err != nil {
			toast := m.notify(toastError, "Check-out not recorded: "+errors.GetUserMessage(msg.err))
			return m, toast
		}
		toast := m.notify(toastInfo, "Check-out recorded")
		return m, tea.Batch(m.loadHistory(), toast)

	case historyLoadedMsg:
		if msg.report != nil {
			m.report = msg.report
			m.table.SetRows(m.rows())
		}
		if msg.err != nil {
			toast := m.notify(toastError, errors.GetUserMessage(msg.err))
			return m, toast
		}
		return m, nil

	case rangeParsedMsg:
		if msg.err != nil {
			toast := m.notify(toastError, errors.GetUserMessage(msg.err))
			return m, toast
		}
		m.rng = msg.rng
		return m, m.loadHistory()

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case feedMsg:
		return m, tea.Batch(m.loadHistory(), waitForFeed(m.feed))

	case feedClosedMsg:
		m.feed = nil
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m attendanceModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case " ", "enter":
		if m.status.Active {
			return m, m.checkOut()
		}
		return m, m.checkIn()
	case "r":
		m.bounds = &rangeBounds{}
		if m.rng != nil {
			if !m.rng.Start.IsZero() {
				m.bounds.from = m.rng.Start.In(m.app.location).Format(history.InputDateLayout)
			}
			if m.rng.End.Year() < 9999 {
				m.bounds.to = m.rng.End.In(m.app.location).Format(history.InputDateLayout)
			}
		}
		m.form = rangeForm(&m.bounds.from, &m.bounds.to)
		if m.width > 0 {
			m.form = m.form.WithWidth(m.width)
		}
		return m, m.form.Init()
	case "c":
		if m.rng == nil {
			return m, nil
		}
		m.rng = nil
		return m, m.loadHistory()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateForm forwards to the range form. Esc cancels it.
func (m attendanceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, tea.Batch(cmd, m.parseRange(strings.TrimSpace(m.bounds.from), strings.TrimSpace(m.bounds.to)))
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m attendanceModel) rows() []table.Row {
	if m.report == nil {
		return nil
	}
	raw := formatter.EntryRows(m.report.Summary.Entries, m.app.config.Time.TimeFormat, m.app.location)
	rows := make([]table.Row, len(raw))
	for i, r := range raw {
		rows[i] = table.Row(r)
	}
	return rows
}

var (
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(formatter.ColorFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(formatter.ColorHeader).
			Padding(0, 3)
	toastInfoStyle  = lipgloss.NewStyle().Foreground(formatter.ColorBg).Background(formatter.ColorGreen).Padding(0, 1)
	toastErrorStyle = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorRed).Padding(0, 1)
)

func (m attendanceModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}
	if m.form != nil {
		return m.form.View()
	}

	var b strings.Builder
	b.WriteString(formatter.StatusIndicator(m.status.Active))
	b.WriteString("  ")
	b.WriteString(formatter.Dim(m.status.Owner))
	b.WriteString("\n\n")

	b.WriteString(timerStyle.Render(m.status.FormattedElapsed))
	b.WriteString("\n")
	if m.status.Active {
		fmt.Fprintf(&b, "%s: %s\n", m.app.config.Display.ClockedInLabel, m.app.formatClock(*m.status.CheckInTime))
	} else {
		b.WriteString(formatter.Dim("Press space to clock in") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(formatter.Header(m.historyTitle()))
	b.WriteString("\n")
	if m.report == nil || m.report.Summary.Count == 0 {
		b.WriteString(formatter.Dim("No time entries") + "\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
		if m.rng != nil {
			b.WriteString(formatter.StyleTotal.Render("Total: " + m.report.Summary.FormattedTotal))
			b.WriteString("\n")
		}
	}
	if m.report != nil && m.report.Stale {
		b.WriteString(formatter.StyleYellow.Render("Showing last loaded history") + "\n")
	}

	b.WriteString("\n")
	if m.toast != "" {
		style := toastInfoStyle
		if m.toastKind == toastError {
			style = toastErrorStyle
		}
		b.WriteString(style.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(formatter.Dim("space start/stop · r range · c clear range · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m attendanceModel) historyTitle() string {
	if m.rng == nil {
		return "History"
	}
	from, to := "…", "…"
	if !m.rng.Start.IsZero() {
		from = m.rng.Start.In(m.app.location).Format(m.app.config.Time.DateFormat)
	}
	if m.rng.End.Year() < 9999 {
		to = m.rng.End.In(m.app.location).Format(m.app.config.Time.DateFormat)
	}
	return fmt.Sprintf("History %s - %s", from, to)
}
