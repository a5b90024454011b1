package domain

// WashService is a catalog entry: a wash service the business offers,
// with its list price and standard duration
type WashService struct {
	ID              int64
	Name            string
	Price           float64
	DurationMinutes int
	Active          bool
}
