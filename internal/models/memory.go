package models

import "time"

// Memory is one journal entry. Memories are kept newest-first; new entries
// are prepended.
type Memory struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Date        string     `json:"date"`
	Location    string     `json:"location,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	CreatedDate time.Time  `json:"createdDate"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
}

// Touch marks the memory as updated now.
func (m *Memory) Touch() {
	now := time.Now()
	m.UpdatedDate = &now
}

// Clone returns a deep copy of the memory.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	out := *m
	out.Tags = append([]string(nil), m.Tags...)
	if m.UpdatedDate != nil {
		u := *m.UpdatedDate
		out.UpdatedDate = &u
	}
	return &out
}
