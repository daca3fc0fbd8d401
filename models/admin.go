package models

// CatalogStatus reports the bootstrap state of the catalog store
type CatalogStatus struct {
	Created    bool  `json:"created"`
	Categories int   `json:"categories"`
	Videos     int   `json:"videos"`
	NextID     int64 `json:"next_id"`
}

// AdminResponse is returned by the bootstrap endpoints
type AdminResponse struct {
	Message string         `json:"message"`
	Status  *CatalogStatus `json:"status,omitempty"`
}
