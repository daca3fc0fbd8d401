package models

// SeedCategory is one category of the embedded sample catalog
type SeedCategory struct {
	Category string      `json:"category"`
	Videos   []SeedVideo `json:"videos"`
}

// SeedVideo is a video entry of the embedded sample catalog
type SeedVideo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Studio      string   `json:"studio"`
	Sources     []string `json:"sources"`
	Card        string   `json:"card"`
	Background  string   `json:"background"`
}

// Source returns the first playable source, or "" when none is listed.
func (v SeedVideo) Source() string {
	if len(v.Sources) == 0 {
		return ""
	}
	return v.Sources[0]
}

// Detail builds the VideoDetail stored for this seed entry.
func (v SeedVideo) Detail(id int64, category string) VideoDetail {
	return VideoDetail{
		ID:                 id,
		Category:           category,
		Description:        v.Description,
		SourceURL:          v.Source(),
		CardImageURL:       v.Card,
		BackgroundImageURL: v.Background,
		Title:              v.Title,
		Studio:             v.Studio,
		Rented:             false,
	}
}
