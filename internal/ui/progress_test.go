package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/driver"
)

func TestProgressModelEvents(t *testing.T) {
	events := make(chan driver.Event, 8)
	m := NewProgressModel("quibble diag", []string{"a.js", "App.vue"}, events).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.js", Stage: driver.StageParse, Status: driver.StatusWorking}))
	assert.Equal(t, "parsing", m.items[0].status)
	assert.InDelta(t, 0.2, m.percent(), 1e-9)

	m.Update(eventMsg(driver.Event{File: "a.js", Stage: driver.StageLint, Status: driver.StatusDone}))
	m.Update(eventMsg(driver.Event{File: "App.vue", Stage: driver.StageLint, Status: driver.StatusCached}))
	m.Update(eventMsg(driver.Event{File: "unknown.js", Stage: driver.StageLint, Status: driver.StatusError}))
	assert.Equal(t, 2, m.finished())
	assert.InDelta(t, 1.0, m.percent(), 1e-9)

	view := m.View()
	assert.Contains(t, view, "quibble diag (2/2)")
	assert.Contains(t, view, "a.js")
	assert.Contains(t, view, "cached")

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.True(t, strings.HasPrefix(stripANSI(m.View()), "done: "))
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestProgressModelListensUntilClosed(t *testing.T) {
	events := make(chan driver.Event, 1)
	m := NewProgressModel("t", []string{"a.js"}, events).(*progressModel)

	events <- driver.Event{File: "a.js", Stage: driver.StageLoad, Status: driver.StatusQueued}
	msg := m.listenForEvent()()
	assert.Equal(t, eventMsg(driver.Event{File: "a.js", Stage: driver.StageLoad, Status: driver.StatusQueued}), msg)

	close(events)
	assert.Equal(t, doneMsg{}, m.listenForEvent()())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "src/co...", truncate("src/components/Card.tsx", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
