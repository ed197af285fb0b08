package models

// Song is a resolved, playable recording. YoutubeID is never empty: the
// import pipeline drops any track it cannot resolve to a video.
type Song struct {
	BaseModel
	Title         string  `gorm:"type:text;not null;index" json:"title"`
	CountryCode   *string `gorm:"type:varchar(2)"          json:"countryCode,omitempty"`
	Duration      int     `gorm:"not null"                 json:"duration"`
	ReleaseYear   *int    `json:"releaseYear,omitempty"`
	Genre         *string `gorm:"type:text"                json:"genre,omitempty"`
	PlayCount     int     `gorm:"default:0"                json:"playCount"`
	YoutubeID     string  `gorm:"type:text;not null"       json:"youtubeId"`
	MusicBrainzID *string `gorm:"type:varchar(36)"         json:"musicBrainzId,omitempty"`
	ISRC          *string `gorm:"type:varchar(15);index"   json:"isrc,omitempty"`
	ArtistID      int     `gorm:"not null;index"           json:"artistId"`
	AlbumID       *int    `gorm:"index"                    json:"albumId,omitempty"`

	Artist *Artist `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Album  *Album  `gorm:"foreignKey:AlbumID"  json:"album,omitempty"`
}
