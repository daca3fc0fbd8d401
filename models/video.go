// Package models defines the data structures used throughout the application.
package models

// Category is a named grouping of videos. Names are unique.
type Category struct {
	Name string `json:"category" db:"name"`
}

// VideoDetail is the full record rendered by the detail page of the client
type VideoDetail struct {
	ID                 int64  `json:"id" db:"id"`
	Category           string `json:"category" db:"category"`
	Description        string `json:"description" db:"description"`
	SourceURL          string `json:"source" db:"source"`
	CardImageURL       string `json:"card" db:"card"`
	BackgroundImageURL string `json:"background" db:"background"`
	Title              string `json:"title" db:"title"`
	Studio             string `json:"studio" db:"studio"`
	Rented             bool   `json:"rented" db:"rented"`
}

// VideoSummary is the projection of a VideoDetail used by list views
type VideoSummary struct {
	ID                 int64  `json:"id" db:"id"`
	Category           string `json:"category" db:"category"`
	SourceURL          string `json:"source" db:"source"`
	CardImageURL       string `json:"card" db:"card"`
	BackgroundImageURL string `json:"background" db:"background"`
	Title              string `json:"title" db:"title"`
	Studio             string `json:"studio" db:"studio"`
}

// Summary projects the detail into its list-view form.
func (v VideoDetail) Summary() VideoSummary {
	return VideoSummary{
		ID:                 v.ID,
		Category:           v.Category,
		SourceURL:          v.SourceURL,
		CardImageURL:       v.CardImageURL,
		BackgroundImageURL: v.BackgroundImageURL,
		Title:              v.Title,
		Studio:             v.Studio,
	}
}
