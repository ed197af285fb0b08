package repositories

import (
	"context"

	"jukebox/internal/database"
	. "jukebox/internal/models"
	"jukebox/pkg/logger"
)

type SongRepository interface {
	GetTitlesByArtistID(ctx context.Context, artistID int) ([]string, error)
	GetRandomPlayableByArtistID(ctx context.Context, artistID, limit int) ([]Song, error)
	ExistsByISRC(ctx context.Context, isrc string) (bool, error)
	Create(ctx context.Context, song *Song) (*Song, error)
}

type songRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSongRepository(db database.DB) SongRepository {
	return &songRepository{
		db:  db,
		log: logger.New("songRepository"),
	}
}

func (r *songRepository) GetTitlesByArtistID(ctx context.Context, artistID int) ([]string, error) {
	log := r.log.Function("GetTitlesByArtistID")

	var titles []string
	if err := r.db.SQLWithContext(ctx).
		Model(&Song{}).
		Where("artist_id = ?", artistID).
		Pluck("title", &titles).Error; err != nil {
		return nil, log.Err("failed to get song titles for artist", err, "artistID", artistID)
	}

	return titles, nil
}

// GetRandomPlayableByArtistID returns up to limit songs with a resolved
// video id, in uniform random order.
func (r *songRepository) GetRandomPlayableByArtistID(
	ctx context.Context,
	artistID, limit int,
) ([]Song, error) {
	log := r.log.Function("GetRandomPlayableByArtistID")

	var songs []Song
	if err := r.db.SQLWithContext(ctx).
		Where("artist_id = ? AND youtube_id <> ''", artistID).
		Order("RANDOM()").
		Limit(limit).
		Find(&songs).Error; err != nil {
		return nil, log.Err("failed to get playable songs for artist", err, "artistID", artistID)
	}

	return songs, nil
}

func (r *songRepository) ExistsByISRC(ctx context.Context, isrc string) (bool, error) {
	log := r.log.Function("ExistsByISRC")

	var count int64
	if err := r.db.SQLWithContext(ctx).
		Model(&Song{}).
		Where("isrc = ?", isrc).
		Count(&count).Error; err != nil {
		return false, log.Err("failed to check ISRC existence", err, "isrc", isrc)
	}

	return count > 0, nil
}

func (r *songRepository) Create(ctx context.Context, song *Song) (*Song, error) {
	log := r.log.Function("Create")

	if song.YoutubeID == "" {
		return nil, log.ErrMsg("song youtube ID cannot be empty")
	}

	if err := r.db.SQLWithContext(ctx).Create(song).Error; err != nil {
		return nil, log.Err("failed to create song", err, "title", song.Title)
	}

	return song, nil
}
