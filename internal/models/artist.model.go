package models

import "time"

// Artist is the canonical identity for an act, created on first import from
// the primary catalog and enriched from the secondary catalog. The generation
// pipeline never mutates it after creation except for the SongsCount cache.
type Artist struct {
	BaseModel
	Name          string     `gorm:"type:text;not null;index"  json:"name"`
	Photo         string     `gorm:"type:text"                 json:"photo"`
	CountryCode   *string    `gorm:"type:varchar(2)"           json:"countryCode,omitempty"`
	Genre         *string    `gorm:"type:text"                 json:"genre,omitempty"`
	Biography     *string    `gorm:"type:text"                 json:"biography,omitempty"`
	CareerStart   *time.Time `json:"careerStart,omitempty"`
	CareerEnd     *time.Time `json:"careerEnd,omitempty"`
	IsActive      bool       `gorm:"default:true"              json:"isActive"`
	SongsCount    int        `gorm:"default:0"                 json:"songsCount"`
	MusicBrainzID *string    `gorm:"type:varchar(36);index"    json:"musicBrainzId,omitempty"`

	Albums []Album `gorm:"foreignKey:ArtistID" json:"albums,omitempty"`
	Songs  []Song  `gorm:"foreignKey:ArtistID" json:"songs,omitempty"`
}
