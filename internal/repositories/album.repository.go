package repositories

import (
	"context"

	"jukebox/internal/database"
	. "jukebox/internal/models"
	"jukebox/pkg/logger"

	"gorm.io/gorm"
)

type AlbumRepository interface {
	GetByAudioDBID(ctx context.Context, audioDBID string) (*Album, error)
	Create(ctx context.Context, album *Album) (*Album, error)
	FindOrCreateByAudioDBID(ctx context.Context, album *Album) (*Album, error)
}

type albumRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAlbumRepository(db database.DB) AlbumRepository {
	return &albumRepository{
		db:  db,
		log: logger.New("albumRepository"),
	}
}

func (r *albumRepository) GetByAudioDBID(ctx context.Context, audioDBID string) (*Album, error) {
	log := r.log.Function("GetByAudioDBID")

	var album Album
	if err := r.db.SQLWithContext(ctx).First(&album, "audio_db_id = ?", audioDBID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, log.Err("failed to get album by AudioDB ID", err, "audioDBID", audioDBID)
	}

	return &album, nil
}

func (r *albumRepository) Create(ctx context.Context, album *Album) (*Album, error) {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(album).Error; err != nil {
		return nil, log.Err("failed to create album", err, "title", album.Title)
	}

	return album, nil
}

// FindOrCreateByAudioDBID returns the stored album for the secondary-catalog
// id, creating it on first sight. Albums are reused across import runs.
func (r *albumRepository) FindOrCreateByAudioDBID(ctx context.Context, album *Album) (*Album, error) {
	log := r.log.Function("FindOrCreateByAudioDBID")

	if album.AudioDBID == nil || *album.AudioDBID == "" {
		return nil, log.ErrMsg("album AudioDB ID cannot be empty")
	}

	existing, err := r.GetByAudioDBID(ctx, *album.AudioDBID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return r.Create(ctx, album)
}
