package models

import "time"

type Playlist struct {
	BaseModel
	Name        string  `gorm:"type:text;not null;index" json:"name"`
	Description *string `gorm:"type:text"                json:"description,omitempty"`
	Category    *string `gorm:"type:text"                json:"category,omitempty"`
	SongsCount  int     `gorm:"default:0"                json:"songsCount"`
	IsGenerated bool    `gorm:"default:false"            json:"isGenerated"`
	UserID      string  `gorm:"type:text;not null;index" json:"userId"`

	PlaylistSongs   []PlaylistSong   `gorm:"foreignKey:PlaylistID" json:"playlistSongs,omitempty"`
	PlaylistArtists []PlaylistArtist `gorm:"foreignKey:PlaylistID" json:"playlistArtists,omitempty"`
}

// PlaylistSong orders songs within a playlist. Position is 1-based and
// strictly increasing in collection order.
type PlaylistSong struct {
	BaseModel
	PlaylistID int       `gorm:"not null;index" json:"playlistId"`
	SongID     int       `gorm:"not null;index" json:"songId"`
	Position   int       `gorm:"not null"       json:"position"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"addedAt"`

	Playlist *Playlist `gorm:"foreignKey:PlaylistID" json:"playlist,omitempty"`
	Song     *Song     `gorm:"foreignKey:SongID"     json:"song,omitempty"`
}

// PlaylistArtist records the distinct artists represented in a playlist.
type PlaylistArtist struct {
	BaseModel
	PlaylistID int `gorm:"not null;index" json:"playlistId"`
	ArtistID   int `gorm:"not null;index" json:"artistId"`

	Playlist *Playlist `gorm:"foreignKey:PlaylistID" json:"playlist,omitempty"`
	Artist   *Artist   `gorm:"foreignKey:ArtistID"   json:"artist,omitempty"`
}
