package repositories

import (
	"context"
	"strings"

	"jukebox/internal/database"
	. "jukebox/internal/models"
	"jukebox/pkg/logger"

	"gorm.io/gorm"
)

type ArtistRepository interface {
	GetByID(ctx context.Context, id int) (*Artist, error)
	GetByIDs(ctx context.Context, ids []int) ([]*Artist, error)
	GetByMusicBrainzID(ctx context.Context, mbid string) (*Artist, error)
	GetByMusicBrainzIDs(ctx context.Context, mbids []string) (map[string]*Artist, error)
	FindByName(ctx context.Context, name string) (*Artist, error)
	Create(ctx context.Context, artist *Artist) (*Artist, error)
	Update(ctx context.Context, artist *Artist) error
	RefreshSongsCount(ctx context.Context, artistID int) (int, error)
}

type artistRepository struct {
	db  database.DB
	log logger.Logger
}

func NewArtistRepository(db database.DB) ArtistRepository {
	return &artistRepository{
		db:  db,
		log: logger.New("artistRepository"),
	}
}

func (r *artistRepository) GetByID(ctx context.Context, id int) (*Artist, error) {
	log := r.log.Function("GetByID")

	var artist Artist
	if err := r.db.SQLWithContext(ctx).First(&artist, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get artist by ID", err, "id", id)
	}

	return &artist, nil
}

func (r *artistRepository) GetByIDs(ctx context.Context, ids []int) ([]*Artist, error) {
	log := r.log.Function("GetByIDs")

	if len(ids) == 0 {
		return nil, nil
	}

	var artists []*Artist
	if err := r.db.SQLWithContext(ctx).Where("id IN ?", ids).Find(&artists).Error; err != nil {
		return nil, log.Err("failed to get artists by IDs", err, "count", len(ids))
	}

	return artists, nil
}

func (r *artistRepository) GetByMusicBrainzID(ctx context.Context, mbid string) (*Artist, error) {
	log := r.log.Function("GetByMusicBrainzID")

	var artist Artist
	if err := r.db.SQLWithContext(ctx).First(&artist, "music_brainz_id = ?", mbid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get artist by MusicBrainz ID", err, "mbid", mbid)
	}

	return &artist, nil
}

func (r *artistRepository) GetByMusicBrainzIDs(
	ctx context.Context,
	mbids []string,
) (map[string]*Artist, error) {
	log := r.log.Function("GetByMusicBrainzIDs")

	if len(mbids) == 0 {
		return make(map[string]*Artist), nil
	}

	var artists []*Artist
	if err := r.db.SQLWithContext(ctx).Where("music_brainz_id IN ?", mbids).Find(&artists).Error; err != nil {
		return nil, log.Err("failed to get artists by MusicBrainz IDs", err, "count", len(mbids))
	}

	result := make(map[string]*Artist, len(artists))
	for _, artist := range artists {
		if artist.MusicBrainzID != nil {
			result[*artist.MusicBrainzID] = artist
		}
	}

	return result, nil
}

func (r *artistRepository) FindByName(ctx context.Context, name string) (*Artist, error) {
	log := r.log.Function("FindByName")

	var artist Artist
	err := r.db.SQLWithContext(ctx).
		First(&artist, "LOWER(name) = ?", strings.ToLower(name)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to find artist by name", err, "name", name)
	}

	return &artist, nil
}

func (r *artistRepository) Create(ctx context.Context, artist *Artist) (*Artist, error) {
	log := r.log.Function("Create")

	if artist.Name == "" {
		return nil, log.ErrMsg("artist name cannot be empty")
	}

	if err := r.db.SQLWithContext(ctx).Create(artist).Error; err != nil {
		return nil, log.Err("failed to create artist", err, "name", artist.Name)
	}

	return artist, nil
}

func (r *artistRepository) Update(ctx context.Context, artist *Artist) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(artist).Error; err != nil {
		return log.Err("failed to update artist", err, "id", artist.ID)
	}

	return nil
}

// RefreshSongsCount recounts persisted songs for the artist and stores the
// result on the artist record.
func (r *artistRepository) RefreshSongsCount(ctx context.Context, artistID int) (int, error) {
	log := r.log.Function("RefreshSongsCount")

	var count int64
	if err := r.db.SQLWithContext(ctx).
		Model(&Song{}).
		Where("artist_id = ?", artistID).
		Count(&count).Error; err != nil {
		return 0, log.Err("failed to count songs for artist", err, "artistID", artistID)
	}

	if err := r.db.SQLWithContext(ctx).
		Model(&Artist{}).
		Where("id = ?", artistID).
		Update("songs_count", count).Error; err != nil {
		return 0, log.Err("failed to update artist songs count", err, "artistID", artistID)
	}

	return int(count), nil
}
