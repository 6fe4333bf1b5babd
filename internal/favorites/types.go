package favorites

import "github.com/google/uuid"

// ToggleInput identifies the favorite to flip. A non-empty FavoriteID removes
// that favorite; otherwise one is created for ProductID. Pathname is the public
// route whose cached data becomes stale; other paths are ignored.
type ToggleInput struct {
	ProductID  string `json:"product_id"`
	FavoriteID string `json:"favorite_id"`
	Pathname   string `json:"pathname"`
}

// Lookup reports the caller's favorite for a product, if any.
type Lookup struct {
	FavoriteID *uuid.UUID `json:"favorite_id"`
}
