// Package sample embeds the static video catalog used to seed the store.
package sample

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"tvshowcase/models"
)

//go:embed catalog.json
var catalogJSON []byte

// Catalog decodes the embedded sample catalog.
func Catalog() ([]models.SeedCategory, error) {
	var categories []models.SeedCategory
	if err := json.Unmarshal(catalogJSON, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode sample catalog: %w", err)
	}
	return categories, nil
}
