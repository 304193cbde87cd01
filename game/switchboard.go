package game

import (
	"sync"

	"golang.org/x/term"
)

const (
	// Lines kept per slot and replayed when lua_debug attaches.
	consoleBacklog = 64
)

type backlog struct {
	lines [][]byte
	next  int
	full  bool
}

func (b *backlog) push(line []byte) {
	if b.lines == nil {
		b.lines = make([][]byte, consoleBacklog)
	}
	b.lines[b.next] = append([]byte(nil), line...)
	b.next = (b.next + 1) % consoleBacklog
	if b.next == 0 {
		b.full = true
	}
}

func (b *backlog) all() [][]byte {
	if !b.full {
		return append([][]byte(nil), b.lines[:b.next]...)
	}
	result := make([][]byte, 0, consoleBacklog)
	result = append(result, b.lines[b.next:]...)
	return append(result, b.lines[:b.next]...)
}

// Switchboard routes what each module prints to the operator terminals
// debugging its slot.
type Switchboard struct {
	mu        sync.RWMutex
	terminals map[int]map[*term.Terminal]bool
	backlogs  map[int]*backlog
}

func NewSwitchboard() *Switchboard {
	return &Switchboard{
		terminals: map[int]map[*term.Terminal]bool{},
		backlogs:  map[int]*backlog{},
	}
}

// Attach starts copying slot output to t and returns the backlog.
func (s *Switchboard) Attach(slot int, t *term.Terminal) [][]byte {
	if t == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminals[slot] == nil {
		s.terminals[slot] = map[*term.Terminal]bool{}
	}
	s.terminals[slot][t] = true
	if b := s.backlogs[slot]; b != nil {
		return b.all()
	}
	return nil
}

func (s *Switchboard) Detach(slot int, t *term.Terminal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detach(slot, t)
}

func (s *Switchboard) detach(slot int, t *term.Terminal) {
	if terms := s.terminals[slot]; terms != nil {
		delete(terms, t)
		if len(terms) == 0 {
			delete(s.terminals, slot)
		}
	}
}

// DetachAll removes t from every slot and returns the slots it watched.
func (s *Switchboard) DetachAll(t *term.Terminal) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []int{}
	for slot, terms := range s.terminals {
		if terms[t] {
			result = append(result, slot)
			s.detach(slot, t)
		}
	}
	return result
}

func (s *Switchboard) IsAttached(slot int, t *term.Terminal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminals[slot][t]
}

// Clear forgets the backlog of slot, for when a new module takes it.
func (s *Switchboard) Clear(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.backlogs, slot)
}

func (s *Switchboard) Backlog(slot int) [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b := s.backlogs[slot]; b != nil {
		return b.all()
	}
	return nil
}

// Writer returns the console of slot. Writes never fail, terminals that
// fail are detached.
func (s *Switchboard) Writer(slot int) *SwitchboardWriter {
	return &SwitchboardWriter{s: s, slot: slot}
}

type SwitchboardWriter struct {
	s    *Switchboard
	slot int
}

func (w *SwitchboardWriter) Write(b []byte) (int, error) {
	w.s.mu.Lock()
	if w.s.backlogs[w.slot] == nil {
		w.s.backlogs[w.slot] = &backlog{}
	}
	w.s.backlogs[w.slot].push(b)
	list := make([]*term.Terminal, 0, len(w.s.terminals[w.slot]))
	for t := range w.s.terminals[w.slot] {
		list = append(list, t)
	}
	w.s.mu.Unlock()

	// Terminals are written unlocked.
	for _, t := range list {
		if _, err := t.Write(b); err != nil {
			w.s.Detach(w.slot, t)
		}
	}
	return len(b), nil
}
