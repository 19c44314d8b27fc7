package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModelQueuesEveryNameInOrder(t *testing.T) {
	events := make(chan Event)
	m := NewModel("add_test.bz", []string{"add", "subtract"}, events).(*model)
	if len(m.items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.items))
	}
	for _, it := range m.items {
		if it.status != StatusQueued {
			t.Fatalf("expected every item queued, got %v", it.status)
		}
	}
	if m.index["add"] != 0 || m.index["subtract"] != 1 {
		t.Fatalf("unexpected index: %v", m.index)
	}
}

func TestUpdateAppliesEventToMatchingItem(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", []string{"add"}, events).(*model)

	next, _ := m.Update(eventMsg{Name: "add", Status: StatusRunning})
	m = next.(*model)
	if m.items[0].status != StatusRunning {
		t.Fatalf("expected StatusRunning, got %v", m.items[0].status)
	}

	next, _ = m.Update(eventMsg{Name: "add", Status: StatusFailed, Message: "boom"})
	m = next.(*model)
	if m.items[0].status != StatusFailed || m.items[0].message != "boom" {
		t.Fatalf("expected failed/boom, got %+v", m.items[0])
	}
}

func TestUpdateIgnoresEventForUnknownName(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", []string{"add"}, events).(*model)
	next, _ := m.Update(eventMsg{Name: "nope", Status: StatusPassed})
	m = next.(*model)
	if m.items[0].status != StatusQueued {
		t.Fatalf("expected the unrelated item to stay queued, got %v", m.items[0].status)
	}
}

func TestDoneMsgMarksModelDoneAndQuits(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", []string{"add"}, events).(*model)
	_, cmd := m.Update(doneMsg{})
	if !m.done {
		t.Fatalf("expected done to be set")
	}
	if cmd == nil {
		t.Fatalf("expected a tea.Quit command")
	}
}

func TestListenTranslatesChannelCloseToDoneMsg(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", nil, events).(*model)
	close(events)
	msg := m.listen()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg on a closed channel, got %T", msg)
	}
}

func TestListenTranslatesEventToEventMsg(t *testing.T) {
	events := make(chan Event, 1)
	m := NewModel("t.bz", []string{"add"}, events).(*model)
	events <- Event{Name: "add", Status: StatusPassed}
	msg := m.listen()()
	ev, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", msg)
	}
	if ev.Name != "add" || ev.Status != StatusPassed {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestViewReportsPassedFailedAndTotalCounts(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", []string{"add", "sub"}, events).(*model)
	next, _ := m.Update(eventMsg{Name: "add", Status: StatusPassed})
	m = next.(*model)
	next, _ = m.Update(eventMsg{Name: "sub", Status: StatusFailed, Message: "bad"})
	m = next.(*model)

	view := m.View()
	if !strings.Contains(view, "1 passed, 1 failed, 2 total") {
		t.Fatalf("expected summary line, got %q", view)
	}
	if !strings.Contains(view, "bad") {
		t.Fatalf("expected failure message in view, got %q", view)
	}
}

func TestInitBatchesSpinnerTickAndListen(t *testing.T) {
	events := make(chan Event)
	m := NewModel("t.bz", nil, events).(*model)
	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected a non-nil init command")
	}
}

var _ tea.Model = (*model)(nil)
