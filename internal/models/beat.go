// internal/models/beat.go
package models

import "time"

type Beat struct {
	BaseModel
	Title       string  `json:"title" gorm:"size:255;not null"`
	Artist      string  `json:"artist" gorm:"size:255;default:'Producer'"`
	Genre       string  `json:"genre" gorm:"size:100;not null;index"`
	Key         string  `json:"key" gorm:"size:10"`
	BPM         int     `json:"bpm" gorm:"not null;index"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Description string  `json:"description" gorm:"type:text"`

	// Asset references, each empty until the matching file is uploaded.
	DemoURL         string `json:"demo_url"`
	FullAudioURL    string `json:"-"`
	ProjectFilesURL string `json:"-"`
	CoverURL        string `json:"cover_url"`

	// No gorm default: a default tag makes gorm drop explicit false on
	// insert. Creation paths set the flag themselves.
	IsAvailable bool `json:"is_available" gorm:"index"`
}

// BeatDetail is the payload shape for single-beat responses. The full-audio
// and project-file URLs are pointers so that unpurchased callers get no key
// at all rather than an empty string that leaks the storage layout.
type BeatDetail struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Genre           string    `json:"genre"`
	Key             string    `json:"key"`
	BPM             int       `json:"bpm"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	DemoURL         string    `json:"demo_url"`
	CoverURL        string    `json:"cover_url"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	FullAudioURL    *string   `json:"full_audio_url,omitempty"`
	ProjectFilesURL *string   `json:"project_files_url,omitempty"`
}

// Detail builds the public view of a beat. Entitled callers additionally
// see the full-audio and project-file URLs.
func (b *Beat) Detail(entitled bool) *BeatDetail {
	detail := &BeatDetail{
		ID:          b.ID.String(),
		Title:       b.Title,
		Artist:      b.Artist,
		Genre:       b.Genre,
		Key:         b.Key,
		BPM:         b.BPM,
		Price:       b.Price,
		Description: b.Description,
		DemoURL:     b.DemoURL,
		CoverURL:    b.CoverURL,
		IsAvailable: b.IsAvailable,
		CreatedAt:   b.CreatedAt,
	}
	if entitled {
		full := b.FullAudioURL
		project := b.ProjectFilesURL
		detail.FullAudioURL = &full
		detail.ProjectFilesURL = &project
	}
	return detail
}
