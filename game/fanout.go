package game

import (
	"sync"

	"golang.org/x/term"
)

// Fanout copies the server console to every operator terminal following
// it. Terminals that fail a write are dropped.
type Fanout struct {
	mu        sync.Mutex
	terminals map[*term.Terminal]bool
}

func (f *Fanout) Push(t *term.Terminal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.terminals == nil {
		f.terminals = map[*term.Terminal]bool{}
	}
	f.terminals[t] = true
}

func (f *Fanout) Drop(t *term.Terminal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.terminals, t)
}

func (f *Fanout) Has(t *term.Terminal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminals[t]
}

func (f *Fanout) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.terminals)
}

func (f *Fanout) Write(b []byte) (int, error) {
	f.mu.Lock()
	list := make([]*term.Terminal, 0, len(f.terminals))
	for t := range f.terminals {
		list = append(list, t)
	}
	f.mu.Unlock()
	for _, t := range list {
		if _, err := t.Write(b); err != nil {
			f.Drop(t)
		}
	}
	return len(b), nil
}
