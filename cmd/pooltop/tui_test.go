package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-i2p/dbpool/lib/testutil"
)

func testSetup() (*pool.Pool, *workload) {
	var dials int32
	p := pool.NewWithConfig(testutil.Factory(&dials), pool.Config{
		MaxConnections: 4,
		PendingTimeout: 0,
	})
	return p, newWorkload(p, 2, time.Second)
}

func TestModelSnapshot(t *testing.T) {
	p, w := testSetup()
	m := newModel(p, w)

	p.Acquire(1)
	p.Acquire(2)
	p.Acquire(2)

	msg := m.snapshot()
	stats, ok := msg.(statsMsg)
	if !ok {
		t.Fatalf("snapshot returned %T, want statsMsg", msg)
	}
	if stats.Bound != 2 {
		t.Errorf("snapshot Bound = %d, want 2", stats.Bound)
	}
	if stats.Hits != 1 {
		t.Errorf("snapshot Hits = %d, want 1", stats.Hits)
	}
}

func TestModelStatsUpdate(t *testing.T) {
	p, w := testSetup()
	m := newModel(p, w)

	p.Acquire(1)
	p.Acquire(2)

	next, _ := m.Update(statsMsg(p.Stats()))
	m = next.(model)

	if m.stats.Bound != 2 {
		t.Errorf("stats.Bound = %d, want 2", m.stats.Bound)
	}
	if m.stats.Creates != 2 {
		t.Errorf("stats.Creates = %d, want 2", m.stats.Creates)
	}
}

func TestModelCeilingKeys(t *testing.T) {
	p, w := testSetup()
	m := newModel(p, w)

	grow := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")}
	next, _ := m.Update(grow)
	m = next.(model)

	if p.MaxConnections() != 5 {
		t.Errorf("ceiling after grow = %d, want 5", p.MaxConnections())
	}

	shrink := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")}
	next, _ = m.Update(shrink)
	m = next.(model)

	if p.MaxConnections() != 4 {
		t.Errorf("ceiling after shrink = %d, want 4", p.MaxConnections())
	}
	if m.err != nil {
		t.Errorf("unexpected error: %v", m.err)
	}
}

func TestModelViewRendersStats(t *testing.T) {
	p, w := testSetup()
	m := newModel(p, w)

	p.Acquire(1)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(statsMsg(p.Stats()))
	m = next.(model)

	view := m.View()
	if !strings.Contains(view, "Capacity") {
		t.Error("view missing Capacity box")
	}
	if !strings.Contains(view, "1 / 4") {
		t.Error("view missing bound/ceiling readout")
	}
	if !strings.Contains(view, "Activity") {
		t.Error("view missing Activity box")
	}
}

func TestWorkloadStartStop(t *testing.T) {
	p, w := testSetup()

	w.Start()
	// Workers sleep a jittered interval of at most 300ms before each acquire.
	time.Sleep(400 * time.Millisecond)
	w.Stop()

	// Both workers should have had time to bind.
	if p.Stats().AcquireCount == 0 {
		t.Error("workload produced no acquisitions")
	}
}

func TestWorkloadTogglePause(t *testing.T) {
	_, w := testSetup()

	if !w.TogglePause() {
		t.Error("first toggle should pause")
	}
	if w.TogglePause() {
		t.Error("second toggle should resume")
	}
}
