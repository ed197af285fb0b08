package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"jukebox/internal/database"
	"jukebox/internal/models"
	"jukebox/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	return db
}

func TestPlaylistRepository_AddSongsAssignsPositions(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	artist, err := repo.Artist.Create(ctx, &models.Artist{Name: "Queen"})
	require.NoError(t, err)

	var songIDs []int
	for i := 0; i < 3; i++ {
		song, err := repo.Song.Create(ctx, &models.Song{
			Title:     fmt.Sprintf("Song %d", i),
			ArtistID:  artist.ID,
			YoutubeID: fmt.Sprintf("vid%d", i),
		})
		require.NoError(t, err)
		songIDs = append(songIDs, song.ID)
	}

	playlist, err := repo.Playlist.Create(ctx, &models.Playlist{
		Name:   "Test Mix",
		UserID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Playlist.AddSongs(ctx, playlist.ID, songIDs))

	loaded, err := repo.Playlist.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.PlaylistSongs, 3)

	for i, entry := range loaded.PlaylistSongs {
		assert.Equal(t, i+1, entry.Position)
		assert.Equal(t, songIDs[i], entry.SongID)
	}
}

func TestPlaylistRepository_FindByUserAndName(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	_, err := repo.Playlist.Create(ctx, &models.Playlist{Name: "My Mix", UserID: "user-1"})
	require.NoError(t, err)

	found, err := repo.Playlist.FindByUserAndName(ctx, "user-1", "my mix")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "My Mix", found.Name)

	missing, err := repo.Playlist.FindByUserAndName(ctx, "user-2", "my mix")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlaylistRepository_DeleteIsSoft(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	playlist, err := repo.Playlist.Create(ctx, &models.Playlist{
		Name:   "Retired Mix",
		UserID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Playlist.Delete(ctx, playlist.ID))

	loaded, err := repo.Playlist.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// the row survives for recovery
	var count int64
	require.NoError(t, db.SQL.Unscoped().Model(&models.Playlist{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPlaylistRepository_HardDeleteRemovesRow(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	playlist, err := repo.Playlist.Create(ctx, &models.Playlist{
		Name:   "Doomed Mix",
		UserID: "user-1",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Playlist.HardDelete(ctx, playlist.ID))

	var count int64
	require.NoError(t, db.SQL.Unscoped().Model(&models.Playlist{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestArtistRepository_RefreshSongsCount(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	artist, err := repo.Artist.Create(ctx, &models.Artist{Name: "Queen"})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := repo.Song.Create(ctx, &models.Song{
			Title:     fmt.Sprintf("Song %d", i),
			ArtistID:  artist.ID,
			YoutubeID: fmt.Sprintf("vid%d", i),
		})
		require.NoError(t, err)
	}

	count, err := repo.Artist.RefreshSongsCount(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	stored, err := repo.Artist.GetByID(ctx, artist.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 4, stored.SongsCount)
}

func TestAlbumRepository_FindOrCreateByAudioDBID(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	artist, err := repo.Artist.Create(ctx, &models.Artist{Name: "Queen"})
	require.NoError(t, err)

	audioDBID := "adb-album-1"
	first, err := repo.Album.FindOrCreateByAudioDBID(ctx, &models.Album{
		Title:     "A Night at the Opera",
		ArtistID:  artist.ID,
		AudioDBID: &audioDBID,
	})
	require.NoError(t, err)

	second, err := repo.Album.FindOrCreateByAudioDBID(ctx, &models.Album{
		Title:     "A Night at the Opera",
		ArtistID:  artist.ID,
		AudioDBID: &audioDBID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.SQL.Model(&models.Album{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSongRepository_GetRandomPlayableByArtistID(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.New(db)
	ctx := context.Background()

	artist, err := repo.Artist.Create(ctx, &models.Artist{Name: "Queen"})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := repo.Song.Create(ctx, &models.Song{
			Title:     fmt.Sprintf("Song %d", i),
			ArtistID:  artist.ID,
			YoutubeID: fmt.Sprintf("vid%d", i),
		})
		require.NoError(t, err)
	}

	songs, err := repo.Song.GetRandomPlayableByArtistID(ctx, artist.ID, 5)
	require.NoError(t, err)
	assert.Len(t, songs, 5)

	all, err := repo.Song.GetRandomPlayableByArtistID(ctx, artist.ID, 30)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
