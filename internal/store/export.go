package store

import (
	"encoding/json"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/models"
	"github.com/hungduong/loveanniversary/internal/storage"
)

// Export serializes the document as formatted JSON under a date-stamped
// filename for download.
func (s *Store) Export() (filename string, data []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err = json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrStorageWrite, "failed to encode export", err)
	}

	filename = "love-anniversary-" + s.now().Format("2006-01-02") + ".json"
	return filename, data, nil
}

// Import replaces the document with a parsed payload. The payload must
// carry the memories and coupleInfo top-level fields; anything else is
// rejected and the current state is left untouched. The imported document
// goes through migration before it is adopted.
func (s *Store) Import(raw []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return apperrors.Wrap(apperrors.ErrImportInvalid, "import payload is not valid JSON", err)
	}
	if _, ok := probe["memories"]; !ok {
		return apperrors.New(apperrors.ErrImportInvalid, "import payload lacks memories")
	}
	if _, ok := probe["coupleInfo"]; !ok {
		return apperrors.New(apperrors.ErrImportInvalid, "import payload lacks coupleInfo")
	}

	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperrors.Wrap(apperrors.ErrImportInvalid, "import payload does not match the document shape", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	migrated := s.migrate(&doc)
	migrated.CoupleInfo.StartDate = NormalizeStartDate(migrated.CoupleInfo.StartDate)
	s.doc = migrated

	if err := s.persist(); err != nil {
		return err
	}

	s.bus.Publish(events.DataImported, nil)
	return nil
}

// Reset clears persisted storage and reinitializes the in-memory document
// to defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(storage.KeyDocument); err != nil {
		return err
	}
	s.doc = s.defaultDocument()

	s.bus.Publish(events.DataReset, nil)
	return nil
}
