package entity

import "time"

// Location is a geocoded place. Its identity is the canonical place name
// (exact string match); at most one row exists per distinct name.
// Locations are created lazily on first sighting and are immutable
// afterwards. A place that failed to geocode is never stored.
type Location struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

// ArticleLocation is the many-to-many edge between an Article and a
// Location it mentions. The edge has no independent lifecycle: it exists
// only as a consequence of a successful article + location pairing and is
// removed with its article.
type ArticleLocation struct {
	ArticleID  int64
	LocationID int64
}
