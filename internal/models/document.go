// Package models provides the data model definitions for the anniversary
// document and its collections.
package models

import "time"

// SchemaVersion is the current document schema version tag.
const SchemaVersion = "3.0"

// Document is the single aggregate holding all couple data. One document
// exists per couple identifier; every mutation rewrites it as a whole.
type Document struct {
	Version     string      `json:"version"`
	LastUpdated time.Time   `json:"lastUpdated"`
	CoupleInfo  CoupleInfo  `json:"coupleInfo"`
	Memories    []*Memory   `json:"memories"`
	Photos      []*Photo    `json:"photos"`
	LoveNotes   []*LoveNote `json:"loveNotes"`
	Settings    Settings    `json:"settings"`
}

// CoupleInfo holds the couple's profile and the anniversary epoch.
type CoupleInfo struct {
	Person1      Person        `json:"person1"`
	Person2      Person        `json:"person2"`
	StartDate    string        `json:"startDate"`
	SpecialDates []SpecialDate `json:"specialDates"`
}

// Person describes one partner.
type Person struct {
	Name          string `json:"name"`
	Birthday      string `json:"birthday,omitempty"`
	FavoriteColor string `json:"favoriteColor,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// SpecialDate is a named date the couple tracks besides the anniversary.
type SpecialDate struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Settings holds UI-facing preferences persisted with the document.
type Settings struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	PrivateMode   bool   `json:"privateMode"`
}

// LoveNote is a short note; the core logic only counts these.
type LoveNote struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats summarizes the document for the dashboard.
type Stats struct {
	TotalMemories  int       `json:"totalMemories"`
	TotalPhotos    int       `json:"totalPhotos"`
	TotalLoveNotes int       `json:"totalLoveNotes"`
	DaysTogether   int       `json:"daysTogether"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// Touch advances the document's LastUpdated timestamp.
func (d *Document) Touch() {
	d.LastUpdated = time.Now()
}

// Clone returns a deep copy of the document. Callers receiving a document
// across a package boundary get a clone so the store's in-memory instance is
// never aliased.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d

	out.CoupleInfo.SpecialDates = append([]SpecialDate(nil), d.CoupleInfo.SpecialDates...)

	if d.Memories != nil {
		out.Memories = make([]*Memory, len(d.Memories))
		for i, m := range d.Memories {
			out.Memories[i] = m.Clone()
		}
	}
	if d.Photos != nil {
		out.Photos = make([]*Photo, len(d.Photos))
		for i, p := range d.Photos {
			out.Photos[i] = p.Clone()
		}
	}
	if d.LoveNotes != nil {
		out.LoveNotes = make([]*LoveNote, len(d.LoveNotes))
		for i, n := range d.LoveNotes {
			cp := *n
			out.LoveNotes[i] = &cp
		}
	}
	return &out
}
