package store

import (
	"context"
	"time"
)

// Movie is a locally cached copy of one externally sourced title. The
// id is assigned by the metadata provider and never generated locally.
type Movie struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Overview     string     `json:"overview"`
	PosterPath   *string    `json:"poster_path,omitempty"`
	BackdropPath *string    `json:"backdrop_path,omitempty"`
	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	VoteAverage  float64    `json:"vote_average"`
	Popularity   float64    `json:"popularity"`
	Genres       []string   `json:"genres"`
	SyncedAt     time.Time  `json:"synced_at"`
}

// MovieStore persists synced movie metadata. Only single-movie detail
// lookups ever write here; list results are never persisted.
type MovieStore interface {
	Get(ctx context.Context, id int64) (Movie, error)
	Upsert(ctx context.Context, m Movie) error
}
