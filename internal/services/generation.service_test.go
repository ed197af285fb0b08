package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"jukebox/internal/database"
	"jukebox/internal/models"
	"jukebox/internal/repositories"
	"jukebox/internal/services"

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

type fakeCatalog struct {
	searchResults []services.MusicBrainzArtistResult
	artistsByID   map[string]*services.MusicBrainzArtistResult
	recordings    []services.MusicBrainzSongResult
	searchCalls   int
}

func (f *fakeCatalog) SearchArtists(
	ctx context.Context,
	artistName string,
	limit int,
) []services.MusicBrainzArtistResult {
	f.searchCalls++
	if limit < len(f.searchResults) {
		return f.searchResults[:limit]
	}
	return f.searchResults
}

func (f *fakeCatalog) GetArtistByID(
	ctx context.Context,
	mbid string,
) *services.MusicBrainzArtistResult {
	return f.artistsByID[mbid]
}

func (f *fakeCatalog) GetArtistRecordings(
	ctx context.Context,
	mbid string,
	yearFrom, yearTo *int,
	limit int,
) []services.MusicBrainzSongResult {
	return f.recordings
}

type fakeEnricher struct {
	artist        *services.AudioDBArtist
	albums        []services.AudioDBAlbum
	tracksByAlbum map[string][]services.AudioDBTrack
	videos        []services.AudioDBTrack
}

func (f *fakeEnricher) GetArtistByMBID(ctx context.Context, mbid string) *services.AudioDBArtist {
	return f.artist
}

func (f *fakeEnricher) SearchArtistByName(ctx context.Context, name string) *services.AudioDBArtist {
	return f.artist
}

func (f *fakeEnricher) GetAlbumsByArtistID(ctx context.Context, artistID string) []services.AudioDBAlbum {
	return f.albums
}

func (f *fakeEnricher) GetTracksByAlbumID(ctx context.Context, albumID string) []services.AudioDBTrack {
	return f.tracksByAlbum[albumID]
}

func (f *fakeEnricher) GetMusicVideosByArtistID(ctx context.Context, artistID string) []services.AudioDBTrack {
	return f.videos
}

type fakeVideoSearcher struct {
	resolve   bool
	exhausted bool
	calls     int
}

func (f *fakeVideoSearcher) SearchOfficialVideo(
	ctx context.Context,
	artistName, songTitle string,
) *services.YouTubeVideo {
	f.calls++
	if f.exhausted || !f.resolve {
		return nil
	}
	return &services.YouTubeVideo{
		VideoID: fmt.Sprintf("yt-%d", f.calls),
		Title:   songTitle,
	}
}

func (f *fakeVideoSearcher) IsQuotaExhausted() bool {
	return f.exhausted
}

func seedArtist(t *testing.T, db database.DB, name, mbid string) *models.Artist {
	t.Helper()

	artist := &models.Artist{Name: name, Photo: "default.jpg"}
	if mbid != "" {
		artist.MusicBrainzID = &mbid
	}
	require.NoError(t, db.SQL.Create(artist).Error)

	return artist
}

func watchLink(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func TestGeneratePlaylist_CapsImportsPerArtist(t *testing.T) {
	db := newTestDB(t)
	artist := seedArtist(t, db, "Queen", "mbid-queen")

	tracks := make(map[string][]services.AudioDBTrack)
	for i := 0; i < 40; i++ {
		albumID := "a1"
		if i >= 25 {
			albumID = "a2"
		}
		tracks[albumID] = append(tracks[albumID], services.AudioDBTrack{
			ID:            fmt.Sprintf("t%02d", i),
			Title:         fmt.Sprintf("Anthem%02d Crown%02d", i, i),
			DurationMS:    "200000",
			MusicVideoURL: watchLink(fmt.Sprintf("vid%02d", i)),
		})
	}

	enricher := &fakeEnricher{
		artist: &services.AudioDBArtist{ID: "adb-1", Name: "Queen", Genre: "Rock"},
		albums: []services.AudioDBAlbum{
			{ID: "a1", Title: "First Album", YearReleased: "1975"},
			{ID: "a2", Title: "Second Album", YearReleased: "1980"},
		},
		tracksByAlbum: tracks,
	}
	videos := &fakeVideoSearcher{resolve: true}
	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, enricher, videos)

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Rock Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	require.NotNil(t, playlist)

	assert.Equal(t, 30, playlist.SongsCount)
	assert.True(t, playlist.IsGenerated)
	require.NotNil(t, playlist.Category)
	assert.Equal(t, "Mixed", *playlist.Category)
	require.NotNil(t, playlist.Description)
	assert.Equal(t, "Artists: Queen", *playlist.Description)

	require.Len(t, playlist.PlaylistSongs, 30)
	for i, entry := range playlist.PlaylistSongs {
		assert.Equal(t, i+1, entry.Position)
		require.NotNil(t, entry.Song)
		assert.NotEmpty(t, entry.Song.YoutubeID)
	}

	require.Len(t, playlist.PlaylistArtists, 1)
	assert.Equal(t, artist.ID, playlist.PlaylistArtists[0].ArtistID)

	// the import stops at the per-artist cap even though more tracks exist
	var songCount int64
	require.NoError(t, db.SQL.Model(&models.Song{}).Count(&songCount).Error)
	assert.EqualValues(t, 30, songCount)

	// every video came from the embedded links, no search spent
	assert.Zero(t, videos.calls)

	var stored models.Artist
	require.NoError(t, db.SQL.First(&stored, "id = ?", artist.ID).Error)
	assert.Equal(t, 30, stored.SongsCount)
}

func TestGeneratePlaylist_ZeroSongsRemovesShell(t *testing.T) {
	db := newTestDB(t)
	artist := seedArtist(t, db, "Unknown Act", "")

	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, &fakeEnricher{}, &fakeVideoSearcher{})

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Empty Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	assert.Nil(t, playlist)

	var playlistCount int64
	require.NoError(t, db.SQL.Unscoped().Model(&models.Playlist{}).Count(&playlistCount).Error)
	assert.Zero(t, playlistCount)
}

func TestGeneratePlaylist_FallsBackToPrimaryCatalog(t *testing.T) {
	db := newTestDB(t)
	artist := seedArtist(t, db, "Queen", "mbid-queen")

	isrc := "GBUM71029604"
	catalog := &fakeCatalog{
		recordings: []services.MusicBrainzSongResult{
			{MusicBrainzID: "r1", Title: "Bohemian Rhapsody", Duration: 354, ReleaseYear: 1975, ISRC: &isrc},
			{MusicBrainzID: "r2", Title: "Innuendo", Duration: 393, ReleaseYear: 1991},
		},
	}
	videos := &fakeVideoSearcher{resolve: true}
	service := services.NewGenerationService(
		repositories.New(db), catalog, &fakeEnricher{}, videos)

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Fallback Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	require.NotNil(t, playlist)
	assert.Equal(t, 2, playlist.SongsCount)
	assert.Equal(t, 2, videos.calls)

	var songs []models.Song
	require.NoError(t, db.SQL.Order("id").Find(&songs).Error)
	require.Len(t, songs, 2)
	assert.Equal(t, "Bohemian Rhapsody", songs[0].Title)
	require.NotNil(t, songs[0].ISRC)
	assert.Equal(t, isrc, *songs[0].ISRC)
	require.NotNil(t, songs[0].ReleaseYear)
	assert.Equal(t, 1975, *songs[0].ReleaseYear)
}

func TestGeneratePlaylist_SkipsDuplicateTitles(t *testing.T) {
	db := newTestDB(t)
	artist := seedArtist(t, db, "Queen", "mbid-queen")

	require.NoError(t, db.SQL.Create(&models.Song{
		Title:     "Bohemian Rhapsody",
		ArtistID:  artist.ID,
		YoutubeID: "existing",
	}).Error)

	enricher := &fakeEnricher{
		artist: &services.AudioDBArtist{ID: "adb-1", Name: "Queen"},
		albums: []services.AudioDBAlbum{{ID: "a1", Title: "A Night at the Opera"}},
		tracksByAlbum: map[string][]services.AudioDBTrack{
			"a1": {
				{ID: "t1", Title: "Bohemian Rhapsody (Remastered 2011)", MusicVideoURL: watchLink("dup")},
				{ID: "t2", Title: "Love of My Life", MusicVideoURL: watchLink("new")},
			},
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, enricher, &fakeVideoSearcher{})

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Dedup Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	require.NotNil(t, playlist)

	var titles []string
	require.NoError(t, db.SQL.Model(&models.Song{}).Order("id").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Bohemian Rhapsody", "Love of My Life"}, titles)
}

func TestGeneratePlaylist_SkipsKnownISRC(t *testing.T) {
	db := newTestDB(t)
	other := seedArtist(t, db, "Other Act", "")
	artist := seedArtist(t, db, "Queen", "mbid-queen")

	isrc := "GBUM71029604"
	require.NoError(t, db.SQL.Create(&models.Song{
		Title:     "Same Recording Elsewhere",
		ArtistID:  other.ID,
		YoutubeID: "elsewhere",
		ISRC:      &isrc,
	}).Error)

	catalog := &fakeCatalog{
		recordings: []services.MusicBrainzSongResult{
			{MusicBrainzID: "r1", Title: "Bohemian Rhapsody", ISRC: &isrc},
			{MusicBrainzID: "r2", Title: "Innuendo"},
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), catalog, &fakeEnricher{}, &fakeVideoSearcher{resolve: true})

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "ISRC Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	require.NotNil(t, playlist)

	var titles []string
	require.NoError(t, db.SQL.Model(&models.Song{}).
		Where("artist_id = ?", artist.ID).
		Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Innuendo"}, titles)
}

func TestGeneratePlaylist_StopsSearchingWhenQuotaExhausted(t *testing.T) {
	db := newTestDB(t)
	artist := seedArtist(t, db, "Queen", "mbid-queen")

	enricher := &fakeEnricher{
		artist: &services.AudioDBArtist{ID: "adb-1", Name: "Queen"},
		albums: []services.AudioDBAlbum{{ID: "a1", Title: "Album"}},
		tracksByAlbum: map[string][]services.AudioDBTrack{
			"a1": {
				{ID: "t1", Title: "First Song"},
				{ID: "t2", Title: "Second Song"},
				{ID: "t3", Title: "Third Song"},
			},
		},
	}

	// the first search trips the quota; the remaining tracks must not spend
	// further searches
	searcher := &quotaTrippingSearcher{inner: &fakeVideoSearcher{}}

	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, enricher, searcher)

	playlist, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Quota Mix", ArtistIDs: []int{artist.ID}})

	require.NoError(t, err)
	assert.Nil(t, playlist)
	assert.Equal(t, 1, searcher.calls)
}

type quotaTrippingSearcher struct {
	inner *fakeVideoSearcher
	calls int
}

func (q *quotaTrippingSearcher) SearchOfficialVideo(
	ctx context.Context,
	artistName, songTitle string,
) *services.YouTubeVideo {
	q.calls++
	q.inner.exhausted = true
	return nil
}

func (q *quotaTrippingSearcher) IsQuotaExhausted() bool {
	return q.inner.exhausted
}

func TestGeneratePlaylist_ValidatesRequest(t *testing.T) {
	db := newTestDB(t)
	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, &fakeEnricher{}, &fakeVideoSearcher{})

	_, err := service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "No Artists"})
	assert.Error(t, err)

	_, err = service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{Name: "Too Many", ArtistIDs: []int{1, 2, 3, 4, 5, 6}})
	assert.Error(t, err)

	_, err = service.GeneratePlaylist(context.Background(), "user-1",
		services.GeneratePlaylistRequest{ArtistIDs: []int{1}})
	assert.Error(t, err)
}

func TestImportArtistByName(t *testing.T) {
	db := newTestDB(t)

	catalog := &fakeCatalog{
		searchResults: []services.MusicBrainzArtistResult{
			{MusicBrainzID: "mbid-queen", Name: "Queen", Score: 100},
		},
	}
	enricher := &fakeEnricher{
		artist: &services.AudioDBArtist{
			ID:          "adb-1",
			Name:        "Queen",
			Thumb:       "https://img.example/queen.jpg",
			Genre:       "Rock",
			CountryCode: "GB",
			Biography:   "Formed in London in 1970.",
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), catalog, enricher, &fakeVideoSearcher{})

	artist, err := service.ImportArtistByName(context.Background(), "queen")

	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, "Queen", artist.Name)
	assert.Equal(t, "https://img.example/queen.jpg", artist.Photo)
	require.NotNil(t, artist.Genre)
	assert.Equal(t, "Rock", *artist.Genre)
	require.NotNil(t, artist.CountryCode)
	assert.Equal(t, "GB", *artist.CountryCode)
	assert.True(t, artist.IsActive)

	// a second import of the same name reuses the stored record
	again, err := service.ImportArtistByName(context.Background(), "QUEEN")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, artist.ID, again.ID)
	assert.Equal(t, 1, catalog.searchCalls)
}

func TestImportArtistByName_UnknownName(t *testing.T) {
	db := newTestDB(t)
	service := services.NewGenerationService(
		repositories.New(db), &fakeCatalog{}, &fakeEnricher{}, &fakeVideoSearcher{})

	artist, err := service.ImportArtistByName(context.Background(), "Nobody At All")

	require.NoError(t, err)
	assert.Nil(t, artist)
}

func TestImportArtistByName_DefaultPhotoWithoutEnrichment(t *testing.T) {
	db := newTestDB(t)

	catalog := &fakeCatalog{
		searchResults: []services.MusicBrainzArtistResult{
			{MusicBrainzID: "mbid-obscure", Name: "Obscure Act", Score: 80},
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), catalog, &fakeEnricher{}, &fakeVideoSearcher{})

	artist, err := service.ImportArtistByName(context.Background(), "Obscure Act")

	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, "default.jpg", artist.Photo)
	assert.Nil(t, artist.Genre)
}

func TestImportArtistByMBID(t *testing.T) {
	db := newTestDB(t)

	catalog := &fakeCatalog{
		artistsByID: map[string]*services.MusicBrainzArtistResult{
			"mbid-queen": {MusicBrainzID: "mbid-queen", Name: "Queen", Score: 100},
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), catalog, &fakeEnricher{}, &fakeVideoSearcher{})

	artist, err := service.ImportArtistByMBID(context.Background(), "mbid-queen")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, "Queen", artist.Name)

	again, err := service.ImportArtistByMBID(context.Background(), "mbid-queen")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, artist.ID, again.ID)

	missing, err := service.ImportArtistByMBID(context.Background(), "mbid-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchArtistCandidates(t *testing.T) {
	db := newTestDB(t)
	existing := seedArtist(t, db, "Queen", "mbid-queen")

	catalog := &fakeCatalog{
		searchResults: []services.MusicBrainzArtistResult{
			{MusicBrainzID: "mbid-low", Name: "Queen Tribute Band", Score: 40},
			{MusicBrainzID: "mbid-queen", Name: "Queen", Score: 100},
			{MusicBrainzID: "mbid-other", Name: "Queensryche", Score: 70},
		},
	}
	service := services.NewGenerationService(
		repositories.New(db), catalog, &fakeEnricher{}, &fakeVideoSearcher{})

	candidates, err := service.SearchArtistCandidates(context.Background(), "queen", 10)

	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// low-score rows dropped, best score first
	assert.Equal(t, "mbid-queen", candidates[0].MusicBrainzID)
	require.NotNil(t, candidates[0].ArtistID)
	assert.Equal(t, existing.ID, *candidates[0].ArtistID)

	assert.Equal(t, "mbid-other", candidates[1].MusicBrainzID)
	assert.Nil(t, candidates[1].ArtistID)
}
