package tmdb

import "context"

// Provider is the port for fetching movie metadata from TMDB.
type Provider interface {
	GetMovie(ctx context.Context, id int64) (*MovieDetail, error)
	Trending(ctx context.Context, page int) (*MovieList, error)
	Popular(ctx context.Context, page int) (*MovieList, error)
	Search(ctx context.Context, query string, page int) (*MovieList, error)
}

// Genre is the structured genre pair TMDB returns on detail lookups.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is the shared list-item shape.
type Movie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
}

// MovieDetail is the single-movie shape with the structured genre list.
type MovieDetail struct {
	Movie
	Genres []Genre `json:"genres"`
}

// MovieList is the paginated shape shared by all list endpoints.
type MovieList struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
