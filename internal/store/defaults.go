package store

import (
	"time"

	"github.com/hungduong/loveanniversary/internal/models"
)

// Defaults seeds the document created on first load.
type Defaults struct {
	Person1 string
	Person2 string
	// StartDate is RFC3339 or a bare calendar date; empty means "now".
	StartDate string
}

// defaultPhoto seeds the gallery so the page is never empty on first visit.
func defaultPhoto() *models.Photo {
	return &models.Photo{
		ID:         "1",
		URL:        "https://images.unsplash.com/photo-1518568814500-bf0f8d125f46?ixlib=rb-4.0.3&auto=format&fit=crop&w=687&q=80",
		Caption:    "Our first day",
		UploadedAt: time.Now(),
	}
}

// defaultDocument constructs a fresh document with the configured couple
// info and an otherwise empty state.
func (s *Store) defaultDocument() *models.Document {
	startDate := NormalizeStartDate(s.defaults.StartDate)
	if startDate == "" {
		startDate = s.now().Format(time.RFC3339)
	}

	return &models.Document{
		Version:     models.SchemaVersion,
		LastUpdated: s.now(),
		CoupleInfo: models.CoupleInfo{
			Person1: models.Person{
				Name:          s.defaults.Person1,
				FavoriteColor: "#ff6b9d",
			},
			Person2: models.Person{
				Name:          s.defaults.Person2,
				FavoriteColor: "#4d94ff",
			},
			StartDate:    startDate,
			SpecialDates: []models.SpecialDate{},
		},
		Memories:  []*models.Memory{},
		Photos:    []*models.Photo{defaultPhoto()},
		LoveNotes: []*models.LoveNote{},
		Settings: models.Settings{
			Theme:         "light",
			Notifications: true,
			PrivateMode:   false,
		},
	}
}
