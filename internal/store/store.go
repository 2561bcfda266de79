// Package store implements the local anniversary document store: the single
// source of truth when no remote backend is reachable. It owns the one
// in-memory document, persists it to local key-value storage on every
// mutation and announces changes on the event bus.
//
// A process runs exactly one Store instance; consumers receive it by
// reference. Mutations are serialized by an internal mutex.
package store

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/ident"
	"github.com/hungduong/loveanniversary/internal/logging"
	"github.com/hungduong/loveanniversary/internal/models"
	"github.com/hungduong/loveanniversary/internal/storage"
)

// Store holds the in-memory document and its persistence.
type Store struct {
	mu       sync.Mutex
	kv       *storage.KV
	bus      *events.Bus
	log      *logging.Logger
	defaults Defaults
	doc      *models.Document
	now      func() time.Time
}

// New creates the store, loading the persisted document or falling back to
// a fresh default one. A read failure never fails construction.
func New(kv *storage.KV, bus *events.Bus, defaults Defaults) *Store {
	s := &Store{
		kv:       kv,
		bus:      bus,
		log:      logging.Get().With("store"),
		defaults: defaults,
		now:      time.Now,
	}
	s.doc = s.load()
	return s
}

// load reads and migrates the persisted document. Missing or unreadable
// state falls back to defaults.
func (s *Store) load() *models.Document {
	raw, err := s.kv.Get(storage.KeyDocument)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrKeyNotFound) {
			s.log.Error("failed to load document, using defaults", err)
		}
		return s.defaultDocument()
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.log.Error("persisted document is corrupt, using defaults", err)
		return s.defaultDocument()
	}

	migrated := s.migrate(&doc)
	migrated.CoupleInfo.StartDate = NormalizeStartDate(migrated.CoupleInfo.StartDate)
	return migrated
}

// persist advances lastUpdated, writes the document and announces the save.
// Callers hold the mutex.
func (s *Store) persist() error {
	s.doc.LastUpdated = s.now()

	data, err := json.Marshal(s.doc)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageWrite, "failed to encode document", err)
	}
	if err := s.kv.Put(storage.KeyDocument, string(data)); err != nil {
		s.log.Error("failed to persist document", err)
		return err
	}

	s.bus.Publish(events.DataSaved, s.doc.LastUpdated)
	return nil
}

// Document returns a deep copy of the current document.
func (s *Store) Document() *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Replace swaps the in-memory document and persists it. The sync adapter
// uses it to apply a merged remote state; no CRUD event fires.
func (s *Store) Replace(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return s.persist()
}

// LastUpdated returns the document's conflict-resolution timestamp.
func (s *Store) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LastUpdated
}

// MemoryInput carries the caller-supplied fields of a new memory.
type MemoryInput struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Date      string   `json:"date"`
	Location  string   `json:"location"`
	Tags      []string `json:"tags"`
	PhotoURL  string   `json:"photoUrl"`
	CreatedBy string   `json:"createdBy"`
}

// AddMemory creates a memory with a generated id, prepends it, persists and
// emits memoryAdded. Date defaults to today; CreatedBy defaults to "you".
func (s *Store) AddMemory(input MemoryInput) (*models.Memory, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "memory title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &models.Memory{
		ID:          ident.NewID(),
		Title:       input.Title,
		Content:     input.Content,
		Date:        input.Date,
		Location:    input.Location,
		Tags:        append([]string(nil), input.Tags...),
		PhotoURL:    input.PhotoURL,
		CreatedDate: s.now(),
		CreatedBy:   input.CreatedBy,
	}
	if m.Date == "" {
		m.Date = s.now().Format("2006-01-02")
	}
	if m.CreatedBy == "" {
		m.CreatedBy = "you"
	}

	s.doc.Memories = append([]*models.Memory{m}, s.doc.Memories...)
	if err := s.persist(); err != nil {
		return nil, err
	}

	s.bus.Publish(events.MemoryAdded, m.Clone())
	return m.Clone(), nil
}

// MemoryPatch carries partial updates; nil fields are left unchanged.
type MemoryPatch struct {
	Title     *string  `json:"title"`
	Content   *string  `json:"content"`
	Date      *string  `json:"date"`
	Location  *string  `json:"location"`
	Tags      []string `json:"tags"`
	PhotoURL  *string  `json:"photoUrl"`
	CreatedBy *string  `json:"createdBy"`
}

// UpdateMemory merges the patch into an existing memory, stamps
// updatedDate, persists and emits memoryUpdated.
func (s *Store) UpdateMemory(id string, patch MemoryPatch) (*models.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.findMemory(id)
	if m == nil {
		return nil, apperrors.New(apperrors.ErrMemoryNotFound, "memory not found: "+id)
	}

	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Content != nil {
		m.Content = *patch.Content
	}
	if patch.Date != nil {
		m.Date = *patch.Date
	}
	if patch.Location != nil {
		m.Location = *patch.Location
	}
	if patch.Tags != nil {
		m.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.PhotoURL != nil {
		m.PhotoURL = *patch.PhotoURL
	}
	if patch.CreatedBy != nil {
		m.CreatedBy = *patch.CreatedBy
	}
	updated := s.now()
	m.UpdatedDate = &updated

	if err := s.persist(); err != nil {
		return nil, err
	}

	s.bus.Publish(events.MemoryUpdated, m.Clone())
	return m.Clone(), nil
}

// DeleteMemory removes a memory, persists and emits memoryDeleted.
func (s *Store) DeleteMemory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.doc.Memories {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.New(apperrors.ErrMemoryNotFound, "memory not found: "+id)
	}

	s.doc.Memories = append(s.doc.Memories[:idx], s.doc.Memories[idx+1:]...)
	if err := s.persist(); err != nil {
		return err
	}

	s.bus.Publish(events.MemoryDeleted, id)
	return nil
}

func (s *Store) findMemory(id string) *models.Memory {
	for _, m := range s.doc.Memories {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// PhotoInput carries the caller-supplied fields of a new photo.
type PhotoInput struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Caption      string `json:"caption"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
}

// AddPhoto creates a photo with a generated id, prepends it, persists and
// emits photoAdded.
func (s *Store) AddPhoto(input PhotoInput) (*models.Photo, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "photo url must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Photo{
		ID:           ident.NewID(),
		URL:          input.URL,
		ThumbnailURL: input.ThumbnailURL,
		Caption:      input.Caption,
		Filename:     input.Filename,
		Size:         input.Size,
		UploadedAt:   s.now(),
	}

	s.doc.Photos = append([]*models.Photo{p}, s.doc.Photos...)
	if err := s.persist(); err != nil {
		return nil, err
	}

	s.bus.Publish(events.PhotoAdded, p.Clone())
	return p.Clone(), nil
}

// PhotoPatch carries partial updates; nil fields are left unchanged.
type PhotoPatch struct {
	URL          *string `json:"url"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Caption      *string `json:"caption"`
	Filename     *string `json:"filename"`
	Size         *int64  `json:"size"`
}

// UpdatePhoto merges the patch into an existing photo, persists and emits
// photoUpdated.
func (s *Store) UpdatePhoto(id string, patch PhotoPatch) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *models.Photo
	for _, candidate := range s.doc.Photos {
		if candidate.ID == id {
			p = candidate
			break
		}
	}
	if p == nil {
		return nil, apperrors.New(apperrors.ErrPhotoNotFound, "photo not found: "+id)
	}

	if patch.URL != nil {
		p.URL = *patch.URL
	}
	if patch.ThumbnailURL != nil {
		p.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.Caption != nil {
		p.Caption = *patch.Caption
	}
	if patch.Filename != nil {
		p.Filename = *patch.Filename
	}
	if patch.Size != nil {
		p.Size = *patch.Size
	}

	if err := s.persist(); err != nil {
		return nil, err
	}

	s.bus.Publish(events.PhotoUpdated, p.Clone())
	return p.Clone(), nil
}

// DeletePhoto removes a photo, persists and emits photoDeleted.
func (s *Store) DeletePhoto(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.doc.Photos {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.New(apperrors.ErrPhotoNotFound, "photo not found: "+id)
	}

	s.doc.Photos = append(s.doc.Photos[:idx], s.doc.Photos[idx+1:]...)
	if err := s.persist(); err != nil {
		return err
	}

	s.bus.Publish(events.PhotoDeleted, id)
	return nil
}

// CoupleInfoPatch carries partial couple-info updates.
type CoupleInfoPatch struct {
	Person1      *models.Person       `json:"person1"`
	Person2      *models.Person       `json:"person2"`
	StartDate    *string              `json:"startDate"`
	SpecialDates []models.SpecialDate `json:"specialDates"`
}

// UpdateCoupleInfo merges the patch, normalizing a bare calendar-date
// startDate to a full timestamp, persists and emits coupleInfoUpdated.
func (s *Store) UpdateCoupleInfo(patch CoupleInfoPatch) (models.CoupleInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Person1 != nil {
		s.doc.CoupleInfo.Person1 = *patch.Person1
	}
	if patch.Person2 != nil {
		s.doc.CoupleInfo.Person2 = *patch.Person2
	}
	if patch.StartDate != nil {
		s.doc.CoupleInfo.StartDate = NormalizeStartDate(*patch.StartDate)
	}
	if patch.SpecialDates != nil {
		s.doc.CoupleInfo.SpecialDates = append([]models.SpecialDate(nil), patch.SpecialDates...)
	}

	if err := s.persist(); err != nil {
		return models.CoupleInfo{}, err
	}

	info := s.doc.CoupleInfo
	info.SpecialDates = append([]models.SpecialDate(nil), info.SpecialDates...)
	s.bus.Publish(events.CoupleInfoUpdated, info)
	return info, nil
}

// startDate resolves the anniversary epoch; unparseable values fall back
// to the configured default, then to "now".
func (s *Store) startDate() time.Time {
	if t, ok := parseStartDate(s.doc.CoupleInfo.StartDate); ok {
		return t
	}
	if t, ok := parseStartDate(NormalizeStartDate(s.defaults.StartDate)); ok {
		return t
	}
	return s.now()
}

// Stats computes the dashboard summary. DaysTogether is the calendar-date
// difference between today and the start date, floored and clamped at zero.
func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.Stats{
		TotalMemories:  len(s.doc.Memories),
		TotalPhotos:    len(s.doc.Photos),
		TotalLoveNotes: len(s.doc.LoveNotes),
		DaysTogether:   civilDaysBetween(s.startDate(), s.now()),
		LastUpdated:    s.doc.LastUpdated,
	}
}

// LastSync returns the persisted time of the last successful remote sync,
// zero when the device has never synced.
func (s *Store) LastSync() time.Time {
	raw, err := s.kv.Get(storage.KeyLastSync)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetLastSync records the time of a successful remote sync under its own
// key, so sync status survives restarts.
func (s *Store) SetLastSync(t time.Time) error {
	return s.kv.Put(storage.KeyLastSync, t.Format(time.RFC3339Nano))
}

// Theme returns the UI theme preference, falling back to the document
// settings when no separate preference is stored.
func (s *Store) Theme() string {
	if theme, err := s.kv.Get(storage.KeyTheme); err == nil && theme != "" {
		return theme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings.Theme
}

// SetTheme stores the UI theme preference under its own key. The preference
// is per device and deliberately not synchronized through the document.
func (s *Store) SetTheme(theme string) error {
	return s.kv.Put(storage.KeyTheme, theme)
}
