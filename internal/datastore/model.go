package datastore

import (
	"time"
)

// SavedSighting is a sighting a caller chose to keep. Classification fields
// are stored denormalized so saved items render without re-running the
// pipeline.
type SavedSighting struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	CallerID       string    `gorm:"index:idx_saved_caller" json:"callerId"`
	CommonName     string    `json:"commonName"`
	ScientificName string    `json:"scientificName"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"imageUrl"`
	Source         string    `json:"source"`
	IsDangerous    bool      `json:"isDangerous"`
	Rarity         string    `json:"rarity"`
}

// SearchLog records one executed search for history and usage analysis.
type SearchLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `gorm:"index:idx_search_created" json:"createdAt"`
	CallerID     string    `gorm:"index:idx_search_caller" json:"callerId"`
	LocationText string    `json:"locationText"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusKm     float64   `json:"radiusKm"`
	ResultCount  int       `json:"resultCount"`
	Status       string    `json:"status"`
}
