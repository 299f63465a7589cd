package cli

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// cmdTimeout separates commands that answer at once (store calls) from
// timers such as tea.Tick, which are skipped.
const cmdTimeout = 100 * time.Millisecond

const maxDrainDepth = 100

// tuiDriver calls Update synchronously and drains the returned commands.
type tuiDriver struct {
	t        *testing.T
	model    attendanceModel
	quitting bool
}

func newTUIDriver(t *testing.T, m attendanceModel) *tuiDriver {
	t.Helper()
	d := &tuiDriver{t: t, model: m}
	d.Send(tea.WindowSizeMsg{Width: 100, Height: 40})
	d.drain(m.Init(), 0)
	return d
}

func (d *tuiDriver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.quitting {
		return
	}
	updated, cmd := d.model.Update(msg)
	d.model = updated.(attendanceModel)
	d.drain(cmd, 0)
}

func (d *tuiDriver) PressKey(r rune) {
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *tuiDriver) PressSpace() {
	d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
}

func (d *tuiDriver) PressEsc() {
	d.Send(tea.KeyMsg{Type: tea.KeyEsc})
}

func (d *tuiDriver) View() string {
	return d.model.View()
}

func (d *tuiDriver) drain(cmd tea.Cmd, depth int) {
	d.t.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDrainDepth {
		d.t.Logf("tuiDriver: drain depth limit (%d) reached", maxDrainDepth)
		return
	}

	msg := execWithTimeout(cmd)
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			d.drain(sub, depth+1)
		}
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		d.quitting = true
		return
	}

	updated, next := d.model.Update(msg)
	d.model = updated.(attendanceModel)
	d.drain(next, depth+1)
}

func execWithTimeout(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}
