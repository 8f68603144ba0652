package session

import (
	"context"
	"fmt"
	"time"
)

// Catalog is the ordered list of sessions found in the store.
// Order follows the store scan and names are unique.
// A Catalog is not safe for concurrent use.
type Catalog struct {
	sessions []Session
	index    map[string]int

	// OnSelectionChange, when set, is called after a session's selection changes.
	OnSelectionChange func(Session)
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Build reads session bounds from the store. When the query fails the
// returned catalog is empty but usable and the error is returned alongside it.
func Build(ctx context.Context, store BoundsSource, loc *time.Location) (*Catalog, error) {
	c := NewCatalog()
	bounds, err := store.SessionBounds(ctx)
	if err != nil {
		return c, fmt.Errorf("loading sessions: %w", err)
	}
	for _, b := range bounds {
		c.Add(New(b.Start, b.End, loc))
	}
	return c, nil
}

// Add appends s unless a session with the same name already exists.
func (c *Catalog) Add(s Session) bool {
	if _, ok := c.index[s.Name]; ok {
		return false
	}
	c.index[s.Name] = len(c.sessions)
	c.sessions = append(c.sessions, s)
	return true
}

// Len returns the number of sessions.
func (c *Catalog) Len() int {
	return len(c.sessions)
}

// Sessions returns a copy of every session in catalog order.
func (c *Catalog) Sessions() []Session {
	out := make([]Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Get returns the session with the given name.
func (c *Catalog) Get(name string) (Session, bool) {
	i, ok := c.index[name]
	if !ok {
		return Session{}, false
	}
	return c.sessions[i], true
}

// Selected returns the selected sessions in catalog order.
func (c *Catalog) Selected() []Session {
	var out []Session
	for _, s := range c.sessions {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}

// SetSelected changes the selection of one session.
func (c *Catalog) SetSelected(name string, selected bool) error {
	i, ok := c.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	c.set(i, selected)
	return nil
}

// SetAllSelected changes the selection of every session.
func (c *Catalog) SetAllSelected(selected bool) {
	for i := range c.sessions {
		c.set(i, selected)
	}
}

// Clear discards every session, as when the view is torn down.
func (c *Catalog) Clear() {
	c.sessions = nil
	c.index = make(map[string]int)
}

func (c *Catalog) set(i int, selected bool) {
	if c.sessions[i].Selected == selected {
		return
	}
	c.sessions[i].Selected = selected
	if c.OnSelectionChange != nil {
		c.OnSelectionChange(c.sessions[i])
	}
}
