package repositories

import (
	"jukebox/internal/database"
)

type Repository struct {
	Artist   ArtistRepository
	Album    AlbumRepository
	Song     SongRepository
	Playlist PlaylistRepository
}

func New(db database.DB) Repository {
	return Repository{
		Artist:   NewArtistRepository(db),
		Album:    NewAlbumRepository(db),
		Song:     NewSongRepository(db),
		Playlist: NewPlaylistRepository(db),
	}
}
