package models

// Album is created once per secondary-catalog album id and reused across
// import runs (get-or-create keyed by AudioDBID).
type Album struct {
	BaseModel
	Title         string  `gorm:"type:text;not null"             json:"title"`
	YearReleased  *int    `json:"yearReleased,omitempty"`
	Genre         *string `gorm:"type:text"                      json:"genre,omitempty"`
	Style         *string `gorm:"type:text"                      json:"style,omitempty"`
	Mood          *string `gorm:"type:text"                      json:"mood,omitempty"`
	Label         *string `gorm:"type:text"                      json:"label,omitempty"`
	Thumb         *string `gorm:"type:text"                      json:"thumb,omitempty"`
	Description   *string `gorm:"type:text"                      json:"description,omitempty"`
	MusicBrainzID *string `gorm:"type:varchar(36)"               json:"musicBrainzId,omitempty"`
	AudioDBID     *string `gorm:"type:varchar(32);uniqueIndex"   json:"audioDbId,omitempty"`
	ArtistID      int     `gorm:"not null;index"                 json:"artistId"`

	Artist *Artist `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Songs  []Song  `gorm:"foreignKey:AlbumID"  json:"songs,omitempty"`
}
