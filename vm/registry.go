package vm

import (
	"io"
	"iter"
	"log"
	"time"

	"github.com/pkg/errors"

	lua "github.com/yuin/gopher-lua"
)

const (
	DefaultCapacity = 64
)

var (
	ErrNoFreeSlots = errors.New("no free VM slots")
)

// Registry is the single authority over which slot ids are taken. Reserved
// ids are held while a module loads, and only occupied ids are visible to
// lookups and iteration.
type Registry struct {
	slots    []*Slot
	reserved []bool
	logger   *log.Logger
}

func NewRegistry(capacity int, logger *log.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Registry{
		slots:    make([]*Slot, capacity),
		reserved: make([]bool, capacity),
		logger:   logger,
	}
}

func (r *Registry) Cap() int {
	return len(r.slots)
}

func (r *Registry) Logger() *log.Logger {
	return r.logger
}

// Reserve claims the lowest free id.
func (r *Registry) Reserve() (int, error) {
	for id := range r.slots {
		if r.slots[id] == nil && !r.reserved[id] {
			r.reserved[id] = true
			return id, nil
		}
	}
	return -1, ErrNoFreeSlots
}

// Release gives back a reserved id whose load failed.
func (r *Registry) Release(id int) {
	if id < 0 || id >= len(r.slots) {
		return
	}
	r.reserved[id] = false
}

// Occupy publishes a started slot under its reserved id.
func (r *Registry) Occupy(slot *Slot) error {
	if slot.ID < 0 || slot.ID >= len(r.slots) {
		return errors.Errorf("slot id %d out of range", slot.ID)
	}
	if r.slots[slot.ID] != nil {
		return errors.Errorf("slot %d already occupied", slot.ID)
	}
	r.reserved[slot.ID] = false
	r.slots[slot.ID] = slot
	return nil
}

func (r *Registry) Get(id int) (*Slot, bool) {
	if id < 0 || id >= len(r.slots) || r.slots[id] == nil {
		return nil, false
	}
	return r.slots[id], true
}

// ByState finds the slot owning an interpreter, which is how native
// functions learn who called them.
func (r *Registry) ByState(L *lua.LState) (*Slot, bool) {
	for _, slot := range r.slots {
		if slot != nil && slot.ctx != nil && slot.ctx.State() == L {
			return slot, true
		}
	}
	return nil, false
}

// Each yields occupied slots in ascending id order. Slots unloaded during
// iteration are skipped.
func (r *Registry) Each() iter.Seq[*Slot] {
	return func(yield func(*Slot) bool) {
		for id := range r.slots {
			if slot := r.slots[id]; slot != nil {
				if !yield(slot) {
					return
				}
			}
		}
	}
}

func (r *Registry) Len() int {
	count := 0
	for _, slot := range r.slots {
		if slot != nil {
			count++
		}
	}
	return count
}

// Unload stops a slot and frees its id. The clean unload line is only logged
// for modules that never failed.
func (r *Registry) Unload(slot *Slot) {
	if slot == nil {
		return
	}
	slot.Stop()
	if slot.ID >= 0 && slot.ID < len(r.slots) && r.slots[slot.ID] == slot {
		r.slots[slot.ID] = nil
	}
	if slot.Errors == 0 {
		r.logger.Printf("Lua API: Lua module [%s] [%s] unloaded.", slot.SourcePath, slot.Signature)
	}
}

func (r *Registry) UnloadAll() {
	for slot := range r.Each() {
		r.Unload(slot)
	}
}

type Status struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Signature string    `json:"signature"`
	File      string    `json:"file"`
	Size      int       `json:"size"`
	Errors    int       `json:"errors"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Status snapshots every occupied slot in id order.
func (r *Registry) Status() []Status {
	result := []Status{}
	for slot := range r.Each() {
		result = append(result, Status{
			ID:        slot.ID,
			Name:      slot.DisplayName(),
			Signature: slot.Signature.String(),
			File:      slot.SourcePath,
			Size:      slot.Size,
			Errors:    slot.Errors,
			LoadedAt:  slot.LoadedAt,
		})
	}
	return result
}
