package catalog

// RestaurantSummary is one catalog entry as delivered by the backend. Entries
// are immutable once fetched; the liked marker lives on the engine, not here.
type RestaurantSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"user_ratings_total"`
	ImageURL    string  `json:"icon_url"`
	IsClosed    bool    `json:"is_closed"`
}

// PageQuery addresses one page within a search series. Two queries belong to
// the same series iff their search terms are equal.
type PageQuery struct {
	PageNumber int
	SearchTerm string
}

// Page is a single server-delivered page of results.
type Page struct {
	Restaurants []RestaurantSummary
	TotalPages  int
}
