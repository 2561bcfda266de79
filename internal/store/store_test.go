// Package store provides unit tests for the local document store.
package store

import (
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/models"
	"github.com/hungduong/loveanniversary/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *events.Bus) {
	t.Helper()
	kv, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	bus := events.NewBus()
	s := New(kv, bus, Defaults{Person1: "Hung", Person2: "Hang"})
	return s, bus
}

func collectEvents(bus *events.Bus, types ...events.Type) *[]events.Event {
	var got []events.Event
	for _, t := range types {
		bus.Subscribe(t, func(e events.Event) { got = append(got, e) })
	}
	return &got
}

// TestNew_defaults verifies a fresh store starts with the default document.
func TestNew_defaults(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.Document()
	if doc.Version != models.SchemaVersion {
		t.Errorf("Expected version %s, got %s", models.SchemaVersion, doc.Version)
	}
	if doc.CoupleInfo.Person1.Name != "Hung" || doc.CoupleInfo.Person2.Name != "Hang" {
		t.Errorf("Expected configured couple names, got %+v", doc.CoupleInfo)
	}
	if len(doc.Memories) != 0 {
		t.Errorf("Expected no memories, got %d", len(doc.Memories))
	}
	if len(doc.Photos) != 1 {
		t.Errorf("Expected the seeded default photo, got %d photos", len(doc.Photos))
	}
	if _, ok := parseStartDate(doc.CoupleInfo.StartDate); !ok {
		t.Errorf("Default startDate should be a full timestamp, got %q", doc.CoupleInfo.StartDate)
	}
}

// TestAddMemory verifies creation, defaults, prepending and the event.
func TestAddMemory(t *testing.T) {
	s, bus := newTestStore(t)
	got := collectEvents(bus, events.MemoryAdded)

	first, err := s.AddMemory(MemoryInput{Title: "First date", Content: "The park"})
	if err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}
	if first.ID == "" {
		t.Error("Created memory should carry a generated id")
	}
	if first.Date != time.Now().Format("2006-01-02") {
		t.Errorf("Date should default to today, got %q", first.Date)
	}
	if first.CreatedBy != "you" {
		t.Errorf("CreatedBy should default to \"you\", got %q", first.CreatedBy)
	}

	second, err := s.AddMemory(MemoryInput{Title: "Second date", Date: "2026-02-14"})
	if err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}

	doc := s.Document()
	if len(doc.Memories) != 2 {
		t.Fatalf("Expected 2 memories, got %d", len(doc.Memories))
	}
	// Newest first.
	if doc.Memories[0].ID != second.ID || doc.Memories[1].ID != first.ID {
		t.Error("New memories should be prepended")
	}

	if len(*got) != 2 {
		t.Errorf("Expected 2 memoryAdded events, got %d", len(*got))
	}
}

// TestAddMemory_uniqueIDs verifies generated ids are distinct in a session.
func TestAddMemory_uniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		m, err := s.AddMemory(MemoryInput{Title: "m"})
		if err != nil {
			t.Fatalf("AddMemory() failed: %v", err)
		}
		if m.ID == "" || seen[m.ID] {
			t.Fatalf("Duplicate or empty id: %q", m.ID)
		}
		seen[m.ID] = true
	}
}

// TestAddMemory_validation verifies the minimal shape check.
func TestAddMemory_validation(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMemory(MemoryInput{Title: "   "}); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected VALIDATION_ERROR for blank title, got %v", err)
	}
}

// TestUpdateMemory verifies patching, updatedDate and the event.
func TestUpdateMemory(t *testing.T) {
	s, bus := newTestStore(t)

	m, err := s.AddMemory(MemoryInput{Title: "Old title", Location: "Hanoi"})
	if err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}

	got := collectEvents(bus, events.MemoryUpdated)

	title := "New title"
	updated, err := s.UpdateMemory(m.ID, MemoryPatch{Title: &title, Tags: []string{"trip"}})
	if err != nil {
		t.Fatalf("UpdateMemory() failed: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("Expected patched title, got %q", updated.Title)
	}
	if updated.Location != "Hanoi" {
		t.Errorf("Unpatched fields must be preserved, got location %q", updated.Location)
	}
	if updated.UpdatedDate == nil {
		t.Error("UpdateMemory() should stamp updatedDate")
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "trip" {
		t.Errorf("Expected patched tags, got %v", updated.Tags)
	}
	if len(*got) != 1 {
		t.Errorf("Expected 1 memoryUpdated event, got %d", len(*got))
	}
}

// TestUpdateMemory_notFound verifies the failure leaves the collection
// byte-for-byte unchanged.
func TestUpdateMemory_notFound(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMemory(MemoryInput{Title: "keep me"}); err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}

	before, err := json.Marshal(s.Document().Memories)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	title := "x"
	_, err = s.UpdateMemory("no-such-id", MemoryPatch{Title: &title})
	if !apperrors.Is(err, apperrors.ErrMemoryNotFound) {
		t.Fatalf("Expected MEMORY_NOT_FOUND, got %v", err)
	}

	after, err := json.Marshal(s.Document().Memories)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Failed update must leave the memory collection unchanged")
	}
}

// TestDeleteMemory verifies add-then-delete restores prior length and order.
func TestDeleteMemory(t *testing.T) {
	s, bus := newTestStore(t)

	a, _ := s.AddMemory(MemoryInput{Title: "a"})
	b, _ := s.AddMemory(MemoryInput{Title: "b"})

	before, _ := json.Marshal(s.Document().Memories)

	c, err := s.AddMemory(MemoryInput{Title: "c"})
	if err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}

	got := collectEvents(bus, events.MemoryDeleted)

	if err := s.DeleteMemory(c.ID); err != nil {
		t.Fatalf("DeleteMemory() failed: %v", err)
	}

	after, _ := json.Marshal(s.Document().Memories)
	if string(before) != string(after) {
		t.Error("Add then delete should restore the prior collection")
	}

	doc := s.Document()
	if len(doc.Memories) != 2 || doc.Memories[0].ID != b.ID || doc.Memories[1].ID != a.ID {
		t.Error("Remaining memories should keep their ordering")
	}

	if len(*got) != 1 || (*got)[0].Payload != c.ID {
		t.Errorf("Expected memoryDeleted event with the id, got %v", *got)
	}

	if err := s.DeleteMemory(c.ID); !apperrors.Is(err, apperrors.ErrMemoryNotFound) {
		t.Errorf("Deleting a missing memory should fail with MEMORY_NOT_FOUND, got %v", err)
	}
}

// TestPhotoCRUD verifies the photo operations mirror the memory ones.
func TestPhotoCRUD(t *testing.T) {
	s, bus := newTestStore(t)
	added := collectEvents(bus, events.PhotoAdded)
	updated := collectEvents(bus, events.PhotoUpdated)
	deleted := collectEvents(bus, events.PhotoDeleted)

	p, err := s.AddPhoto(PhotoInput{URL: "https://example.com/p.jpg", Caption: "us"})
	if err != nil {
		t.Fatalf("AddPhoto() failed: %v", err)
	}
	if p.ID == "" || p.UploadedAt.IsZero() {
		t.Error("Created photo should carry id and uploadedAt")
	}

	doc := s.Document()
	if doc.Photos[0].ID != p.ID {
		t.Error("New photos should be prepended")
	}

	caption := "the two of us"
	p2, err := s.UpdatePhoto(p.ID, PhotoPatch{Caption: &caption})
	if err != nil {
		t.Fatalf("UpdatePhoto() failed: %v", err)
	}
	if p2.Caption != caption || p2.URL != p.URL {
		t.Errorf("Patch should change caption only, got %+v", p2)
	}

	if _, err := s.UpdatePhoto("missing", PhotoPatch{Caption: &caption}); !apperrors.Is(err, apperrors.ErrPhotoNotFound) {
		t.Errorf("Expected PHOTO_NOT_FOUND, got %v", err)
	}

	if err := s.DeletePhoto(p.ID); err != nil {
		t.Fatalf("DeletePhoto() failed: %v", err)
	}
	if err := s.DeletePhoto(p.ID); !apperrors.Is(err, apperrors.ErrPhotoNotFound) {
		t.Errorf("Expected PHOTO_NOT_FOUND on double delete, got %v", err)
	}

	if _, err := s.AddPhoto(PhotoInput{}); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected VALIDATION_ERROR for empty url, got %v", err)
	}

	if len(*added) != 1 || len(*updated) != 1 || len(*deleted) != 1 {
		t.Errorf("Expected one event per operation, got %d/%d/%d", len(*added), len(*updated), len(*deleted))
	}
}

// TestUpdateCoupleInfo verifies merging and startDate normalization.
func TestUpdateCoupleInfo(t *testing.T) {
	s, bus := newTestStore(t)
	got := collectEvents(bus, events.CoupleInfoUpdated)

	startDate := "2026-01-01"
	info, err := s.UpdateCoupleInfo(CoupleInfoPatch{
		StartDate: &startDate,
		Person1:   &models.Person{Name: "H", FavoriteColor: "#fff"},
	})
	if err != nil {
		t.Fatalf("UpdateCoupleInfo() failed: %v", err)
	}

	if info.StartDate != "2026-01-01T00:00:00Z" {
		t.Errorf("Bare startDate should normalize to UTC midnight, got %q", info.StartDate)
	}
	if info.Person1.Name != "H" {
		t.Errorf("Expected patched person1, got %+v", info.Person1)
	}
	if info.Person2.Name != "Hang" {
		t.Errorf("Unpatched person2 must be preserved, got %+v", info.Person2)
	}
	if len(*got) != 1 {
		t.Errorf("Expected 1 coupleInfoUpdated event, got %d", len(*got))
	}
}

// TestLastUpdated_advances verifies the mutation timestamp moves forward.
func TestLastUpdated_advances(t *testing.T) {
	s, _ := newTestStore(t)

	before := s.LastUpdated()
	time.Sleep(5 * time.Millisecond)
	if _, err := s.AddMemory(MemoryInput{Title: "tick"}); err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}
	if !s.LastUpdated().After(before) {
		t.Error("lastUpdated should advance on every persisted mutation")
	}
}

// TestPersistence verifies the document survives a store restart.
func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	kv, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}

	s := New(kv, events.NewBus(), Defaults{Person1: "A", Person2: "B"})
	m, err := s.AddMemory(MemoryInput{Title: "persisted"})
	if err != nil {
		t.Fatalf("AddMemory() failed: %v", err)
	}
	kv.Close()

	kv2, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer kv2.Close()

	s2 := New(kv2, events.NewBus(), Defaults{Person1: "A", Person2: "B"})
	doc := s2.Document()
	if len(doc.Memories) != 1 || doc.Memories[0].ID != m.ID {
		t.Error("Document should be reloaded from storage")
	}
}

// TestStats_daysTogether verifies the calendar-date day count.
func TestStats_daysTogether(t *testing.T) {
	s, _ := newTestStore(t)

	localMidnight := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{
			name:  "today at local midnight",
			start: localMidnight(time.Now()),
			want:  0,
		},
		{
			name:  "ten days ago",
			start: localMidnight(time.Now().AddDate(0, 0, -10)),
			want:  10,
		},
		{
			name:  "start date in the future clamps to zero",
			start: localMidnight(time.Now().AddDate(0, 0, 3)),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startDate := tt.start.Format(time.RFC3339)
			if _, err := s.UpdateCoupleInfo(CoupleInfoPatch{StartDate: &startDate}); err != nil {
				t.Fatalf("UpdateCoupleInfo() failed: %v", err)
			}

			// The count must not depend on the current wall-clock time of
			// day: evaluate at both ends of the same calendar day.
			y, m, d := time.Now().Date()
			for _, clock := range []time.Time{
				time.Date(y, m, d, 0, 1, 0, 0, time.Local),
				time.Date(y, m, d, 23, 59, 0, 0, time.Local),
			} {
				s.now = func() time.Time { return clock }
				if got := s.Stats().DaysTogether; got != tt.want {
					t.Errorf("DaysTogether at %v = %d, want %d", clock.Format("15:04"), got, tt.want)
				}
			}
			s.now = time.Now
		})
	}
}

// TestStats_daysTogetherBareStartDate verifies a bare calendar startDate
// counts the same number of days regardless of the device's zone. The bare
// date is anchored at UTC midnight; west of UTC that instant falls on the
// previous local day and must not inflate the count.
func TestStats_daysTogetherBareStartDate(t *testing.T) {
	origLocal := time.Local
	time.Local = time.FixedZone("UTC-5", -5*60*60)
	defer func() { time.Local = origLocal }()

	s, _ := newTestStore(t)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }

	bare := "2026-08-21"
	if _, err := s.UpdateCoupleInfo(CoupleInfoPatch{StartDate: &bare}); err != nil {
		t.Fatalf("UpdateCoupleInfo() failed: %v", err)
	}

	if got := s.Stats().DaysTogether; got != 10 {
		t.Errorf("DaysTogether for a bare date 10 days ago = %d, want 10", got)
	}
}

// TestStats_counts verifies the collection totals.
func TestStats_counts(t *testing.T) {
	s, _ := newTestStore(t)

	s.AddMemory(MemoryInput{Title: "m1"})
	s.AddMemory(MemoryInput{Title: "m2"})
	s.AddPhoto(PhotoInput{URL: "https://example.com/1.jpg"})

	stats := s.Stats()
	if stats.TotalMemories != 2 {
		t.Errorf("Expected 2 memories, got %d", stats.TotalMemories)
	}
	// One uploaded photo plus the seeded default.
	if stats.TotalPhotos != 2 {
		t.Errorf("Expected 2 photos, got %d", stats.TotalPhotos)
	}
	if stats.TotalLoveNotes != 0 {
		t.Errorf("Expected 0 love notes, got %d", stats.TotalLoveNotes)
	}
	if stats.LastUpdated.IsZero() {
		t.Error("Stats should carry lastUpdated")
	}
}

// TestExportImport_roundTrip verifies import(export()) restores the
// document except for lastUpdated.
func TestExportImport_roundTrip(t *testing.T) {
	s, bus := newTestStore(t)

	s.AddMemory(MemoryInput{Title: "round", Content: "trip", Tags: []string{"x"}})
	s.AddPhoto(PhotoInput{URL: "https://example.com/rt.jpg"})

	beforeDoc := s.Document()

	filename, data, err := s.Export()
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	wantName := "love-anniversary-" + time.Now().Format("2006-01-02") + ".json"
	if filename != wantName {
		t.Errorf("Expected date-stamped filename %q, got %q", wantName, filename)
	}

	// Mutate, then import the snapshot back.
	s.AddMemory(MemoryInput{Title: "extra"})

	got := collectEvents(bus, events.DataImported)
	if err := s.Import(data); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if len(*got) != 1 {
		t.Errorf("Expected dataImported event, got %d", len(*got))
	}

	afterDoc := s.Document()
	beforeDoc.LastUpdated = time.Time{}
	afterDoc.LastUpdated = time.Time{}

	beforeJSON, _ := json.Marshal(beforeDoc)
	afterJSON, _ := json.Marshal(afterDoc)
	if string(beforeJSON) != string(afterJSON) {
		t.Errorf("Round-trip should restore the document.\nbefore: %s\nafter:  %s", beforeJSON, afterJSON)
	}
}

// TestImport_invalidPayloads verifies rejection leaves state unchanged.
func TestImport_invalidPayloads(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddMemory(MemoryInput{Title: "survivor"})

	before, _ := json.Marshal(s.Document())

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{broken"},
		{"missing coupleInfo", `{"memories":[]}`},
		{"missing memories", `{"coupleInfo":{}}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Import([]byte(tt.payload))
			if !apperrors.Is(err, apperrors.ErrImportInvalid) {
				t.Fatalf("Expected IMPORT_INVALID, got %v", err)
			}
			after, _ := json.Marshal(s.Document())
			if string(before) != string(after) {
				t.Error("Rejected import must not mutate the document")
			}
		})
	}
}

// TestReset verifies storage is cleared and defaults restored.
func TestReset(t *testing.T) {
	s, bus := newTestStore(t)
	s.AddMemory(MemoryInput{Title: "gone"})

	got := collectEvents(bus, events.DataReset)

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if len(*got) != 1 {
		t.Errorf("Expected dataReset event, got %d", len(*got))
	}

	doc := s.Document()
	if len(doc.Memories) != 0 {
		t.Errorf("Reset should clear memories, got %d", len(doc.Memories))
	}
	if doc.CoupleInfo.Person1.Name != "Hung" {
		t.Error("Reset should restore configured defaults")
	}
}

// TestTheme verifies the separate theme preference key.
func TestTheme(t *testing.T) {
	s, _ := newTestStore(t)

	if got := s.Theme(); got != "light" {
		t.Errorf("Expected default theme light, got %q", got)
	}
	if err := s.SetTheme("dark"); err != nil {
		t.Fatalf("SetTheme() failed: %v", err)
	}
	if got := s.Theme(); got != "dark" {
		t.Errorf("Expected dark after SetTheme, got %q", got)
	}
}

// TestLastSync verifies the separate last-sync key round-trips.
func TestLastSync(t *testing.T) {
	s, _ := newTestStore(t)

	if !s.LastSync().IsZero() {
		t.Errorf("Fresh store should have no last sync time, got %v", s.LastSync())
	}

	at := time.Date(2026, 8, 31, 10, 30, 0, 123456789, time.UTC)
	if err := s.SetLastSync(at); err != nil {
		t.Fatalf("SetLastSync() failed: %v", err)
	}
	if got := s.LastSync(); !got.Equal(at) {
		t.Errorf("LastSync() = %v, want %v", got, at)
	}
}

// TestDocument_isCopy verifies callers cannot alias the internal document.
func TestDocument_isCopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddMemory(MemoryInput{Title: "original"})

	doc := s.Document()
	doc.Memories[0].Title = "tampered"

	if s.Document().Memories[0].Title != "original" {
		t.Error("Document() must return a deep copy")
	}
}
