package diag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRollingAverageWindow(t *testing.T) {
	r := NewRollingAverage(3)
	assert.Equal(t, time.Duration(0), r.Average())

	r.Add(10 * time.Millisecond)
	r.Add(20 * time.Millisecond)
	assert.Equal(t, 15*time.Millisecond, r.Average())

	r.Add(30 * time.Millisecond)
	r.Add(60 * time.Millisecond) // evicts the 10ms sample
	assert.Equal(t, (20+30+60)/3*time.Millisecond, r.Average())
}

func TestRollingAverageReset(t *testing.T) {
	r := NewRollingAverage(4)
	r.Add(time.Second)
	r.Reset()
	assert.Equal(t, time.Duration(0), r.Average())
}

func TestMonitorFPS(t *testing.T) {
	m := NewMonitor(16)

	for i := 0; i < 6; i++ {
		m.RecordPresented()
		time.Sleep(10 * time.Millisecond)
	}

	report := m.GetReport()
	// 6 frames roughly 10ms apart; allow generous slack for scheduler noise.
	assert.Greater(t, report.FPS, 30.0)
	assert.Less(t, report.FPS, 200.0)
	assert.Equal(t, uint64(6), report.TotalFrames)
}

func TestMonitorNoFramesNoFPS(t *testing.T) {
	m := NewMonitor(8)
	assert.Equal(t, 0.0, m.GetReport().FPS)

	m.RecordPresented()
	assert.Equal(t, 0.0, m.GetReport().FPS) // one sample has no span
}

func TestMonitorReset(t *testing.T) {
	m := NewMonitor(8)
	m.RecordPresented()
	m.RecordTick(5 * time.Millisecond)

	m.Reset()
	report := m.GetReport()
	assert.Equal(t, uint64(0), report.TotalFrames)
	assert.Equal(t, 0.0, report.AvgTickMs)
}
