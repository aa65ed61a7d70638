package domain

import (
	"time"
)

// CREATE TABLE public.tracks (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     catalog_id       TEXT UNIQUE NOT NULL,
//     title            TEXT,
//     artist           TEXT,
//     genre            TEXT,
//     release_year     INT,
//     preview_url      TEXT,
//     artwork_url      TEXT,
//     created_at       TIMESTAMPTZ DEFAULT NOW(),
//     updated_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Track struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	CatalogID   string    `gorm:"column:catalog_id;uniqueIndex;not null" json:"catalog_id"`
	Title       string    `gorm:"column:title;type:text" json:"title"`
	Artist      string    `gorm:"column:artist;type:text" json:"artist"`
	Genre       string    `gorm:"column:genre;type:text" json:"genre"`
	ReleaseYear int       `gorm:"column:release_year" json:"release_year"`
	PreviewURL  string    `gorm:"column:preview_url;type:text" json:"preview_url"`
	ArtworkURL  string    `gorm:"column:artwork_url;type:text" json:"artwork_url"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"-"`
}

func (Track) TableName() string {
	return "tracks"
}
