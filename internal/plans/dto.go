package plans

// CatalogResponse lists the selectable form options.
type CatalogResponse struct {
	Categories      []Category       `json:"categories"`
	InstrumentTypes []InstrumentType `json:"instrumentTypes"`
	PlatformTypes   []PlatformType   `json:"platformTypes"`
}

// SummaryResponse is one history list entry.
type SummaryResponse struct {
	ID             string         `json:"id"`
	Tag            string         `json:"tag"`
	Category       Category       `json:"category"`
	InstrumentType InstrumentType `json:"instrumentType"`
	PlatformType   PlatformType   `json:"platformType"`
	CreatedAt      string         `json:"createdAt"`
}

func toSummary(p Plan) SummaryResponse {
	return SummaryResponse{
		ID:             p.ID,
		Tag:            p.Tag,
		Category:       p.Category,
		InstrumentType: p.InstrumentType,
		PlatformType:   p.PlatformType,
		CreatedAt:      p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
