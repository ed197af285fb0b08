package repositories

import (
	"context"
	"strings"

	"jukebox/internal/database"
	. "jukebox/internal/models"
	"jukebox/pkg/logger"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	GetByID(ctx context.Context, id int) (*Playlist, error)
	FindByUserAndName(ctx context.Context, userID, name string) (*Playlist, error)
	Create(ctx context.Context, playlist *Playlist) (*Playlist, error)
	Update(ctx context.Context, playlist *Playlist) error
	Delete(ctx context.Context, id int) error
	HardDelete(ctx context.Context, id int) error
	AddSongs(ctx context.Context, playlistID int, songIDs []int) error
	AddArtists(ctx context.Context, playlistID int, artistIDs []int) error
}

type playlistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPlaylistRepository(db database.DB) PlaylistRepository {
	return &playlistRepository{
		db:  db,
		log: logger.New("playlistRepository"),
	}
}

func (r *playlistRepository) GetByID(ctx context.Context, id int) (*Playlist, error) {
	log := r.log.Function("GetByID")

	var playlist Playlist
	err := r.db.SQLWithContext(ctx).
		Preload("PlaylistSongs", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_songs.position ASC")
		}).
		Preload("PlaylistSongs.Song").
		Preload("PlaylistArtists.Artist").
		First(&playlist, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get playlist by ID", err, "id", id)
	}

	return &playlist, nil
}

func (r *playlistRepository) FindByUserAndName(
	ctx context.Context,
	userID, name string,
) (*Playlist, error) {
	log := r.log.Function("FindByUserAndName")

	var playlist Playlist
	err := r.db.SQLWithContext(ctx).
		First(&playlist, "user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to find playlist", err, "userID", userID, "name", name)
	}

	return &playlist, nil
}

func (r *playlistRepository) Create(ctx context.Context, playlist *Playlist) (*Playlist, error) {
	log := r.log.Function("Create")

	if playlist.Name == "" {
		return nil, log.ErrMsg("playlist name cannot be empty")
	}

	if err := r.db.SQLWithContext(ctx).Create(playlist).Error; err != nil {
		return nil, log.Err("failed to create playlist", err, "name", playlist.Name)
	}

	return playlist, nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *Playlist) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(playlist).Error; err != nil {
		return log.Err("failed to update playlist", err, "id", playlist.ID)
	}

	return nil
}

// Delete soft-deletes a playlist a user no longer wants. The row stays
// recoverable, unlike HardDelete.
func (r *playlistRepository) Delete(ctx context.Context, id int) error {
	log := r.log.Function("Delete")

	if err := r.db.SQLWithContext(ctx).Delete(&Playlist{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to soft delete playlist", err, "id", id)
	}

	return nil
}

// HardDelete removes the playlist row entirely. Used to roll back a
// provisional shell when generation resolved zero songs: a soft delete
// would still leave an orphan record behind.
func (r *playlistRepository) HardDelete(ctx context.Context, id int) error {
	log := r.log.Function("HardDelete")

	if err := r.db.SQLWithContext(ctx).Unscoped().Delete(&Playlist{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete playlist", err, "id", id)
	}

	return nil
}

// AddSongs links songs to the playlist with 1-based positions in the order
// given.
func (r *playlistRepository) AddSongs(ctx context.Context, playlistID int, songIDs []int) error {
	log := r.log.Function("AddSongs")

	if len(songIDs) == 0 {
		return nil
	}

	links := make([]PlaylistSong, len(songIDs))
	for i, songID := range songIDs {
		links[i] = PlaylistSong{
			PlaylistID: playlistID,
			SongID:     songID,
			Position:   i + 1,
		}
	}

	if err := r.db.SQLWithContext(ctx).Create(&links).Error; err != nil {
		return log.Err("failed to add songs to playlist", err,
			"playlistID", playlistID, "count", len(songIDs))
	}

	return nil
}

func (r *playlistRepository) AddArtists(ctx context.Context, playlistID int, artistIDs []int) error {
	log := r.log.Function("AddArtists")

	if len(artistIDs) == 0 {
		return nil
	}

	links := make([]PlaylistArtist, len(artistIDs))
	for i, artistID := range artistIDs {
		links[i] = PlaylistArtist{
			PlaylistID: playlistID,
			ArtistID:   artistID,
		}
	}

	if err := r.db.SQLWithContext(ctx).Create(&links).Error; err != nil {
		return log.Err("failed to add artists to playlist", err,
			"playlistID", playlistID, "count", len(artistIDs))
	}

	return nil
}
