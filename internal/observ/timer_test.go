package observ

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("discover")
	timer.End(idx, "3 files")
	timer.Add("lint", 2*time.Millisecond, "")
	err := timer.Track("write", func() error { return errors.New("disk full") })
	require.Error(t, err)

	report := timer.Report()
	require.Len(t, report.Phases, 3)
	assert.Equal(t, "discover", report.Phases[0].Name)
	assert.Equal(t, "3 files", report.Phases[0].Note)
	assert.InDelta(t, 2.0, report.Phases[1].DurationMS, 0.001)
	assert.Equal(t, "disk full", report.Phases[2].Note)
	assert.GreaterOrEqual(t, report.TotalMS, 2.0)

	summary := timer.Summary()
	assert.True(t, strings.HasPrefix(summary, "timings:\n"))
	assert.Contains(t, summary, "// 3 files")
	assert.Contains(t, summary, "total")
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(5, "ignored")
	assert.Equal(t, Report{}, timer.Report())
}

func TestTimerLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	timer := NewTimer()
	timer.Add("parse", time.Millisecond, "vue")
	timer.Log(&logger, "timings")

	out := buf.String()
	assert.Contains(t, out, `"phase":"parse"`)
	assert.Contains(t, out, `"note":"vue"`)
	assert.Contains(t, out, `"total_ms"`)

	buf.Reset()
	quiet := zerolog.New(&buf).Level(zerolog.WarnLevel)
	timer.Log(&quiet, "timings")
	assert.Empty(t, buf.String())
}
