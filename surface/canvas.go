// Package surface holds the nodes a resolution call produces until a painter
// consumes them.
package surface

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/devize/spec"
)

// Entry is an attached node and the handle assigned to it.
type Entry struct {
	ID         string
	Node       spec.Spec
	AttachedAt time.Time
}

// Canvas is an in-memory drawing surface. It is safe for concurrent use so
// several engines may attach into the same canvas.
type Canvas struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{byID: make(map[string]int)}
}

// Attach appends node. Use AttachWithID to learn its handle.
func (c *Canvas) Attach(node spec.Spec) {
	c.AttachWithID(node)
}

// AttachWithID appends node and returns the handle assigned to it.
func (c *Canvas) AttachWithID(node spec.Spec) string {
	id := uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byID == nil {
		c.byID = make(map[string]int)
	}
	c.byID[id] = len(c.entries)
	c.entries = append(c.entries, Entry{ID: id, Node: node, AttachedAt: time.Now()})
	return id
}

// Get returns the node attached under id.
func (c *Canvas) Get(id string) (spec.Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return c.entries[i].Node, true
}

// Nodes returns the attached nodes in attach order.
func (c *Canvas) Nodes() []spec.Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]spec.Spec, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Node
	}
	return out
}

// Entries returns a copy of the attached entries in attach order.
func (c *Canvas) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of attached nodes.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every attached node.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.byID = make(map[string]int)
}
