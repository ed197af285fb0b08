package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"jukebox/internal/models"
	"jukebox/internal/repositories"
	"jukebox/internal/utils"
	"jukebox/pkg/logger"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	songsPerArtist  = 30
	minArtists      = 1
	maxArtists      = 5
	candidateScore  = 50
	searchLimit     = 10
	defaultCategory = "Mixed"
	defaultPhoto    = "default.jpg"
)

// ArtistCatalog is the primary catalog: authoritative artist identity and
// recording listings.
type ArtistCatalog interface {
	SearchArtists(ctx context.Context, artistName string, limit int) []MusicBrainzArtistResult
	GetArtistByID(ctx context.Context, mbid string) *MusicBrainzArtistResult
	GetArtistRecordings(ctx context.Context, mbid string, yearFrom, yearTo *int, limit int) []MusicBrainzSongResult
}

// CatalogEnricher is the secondary catalog: richer metadata, albums, tracks
// and music-video links.
type CatalogEnricher interface {
	GetArtistByMBID(ctx context.Context, mbid string) *AudioDBArtist
	SearchArtistByName(ctx context.Context, name string) *AudioDBArtist
	GetAlbumsByArtistID(ctx context.Context, artistID string) []AudioDBAlbum
	GetTracksByAlbumID(ctx context.Context, albumID string) []AudioDBTrack
	GetMusicVideosByArtistID(ctx context.Context, artistID string) []AudioDBTrack
}

// VideoSearcher resolves songs to playable video ids.
type VideoSearcher interface {
	SearchOfficialVideo(ctx context.Context, artistName, songTitle string) *YouTubeVideo
	IsQuotaExhausted() bool
}

// GeneratePlaylistRequest names the playlist and selects 1 to 5 stored
// artists to draw songs from.
type GeneratePlaylistRequest struct {
	Name        string  `json:"name"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	ArtistIDs   []int   `json:"artistIds"`
}

// ArtistCandidate is one row of a catalog artist search, marked with the
// local record when the artist was imported before.
type ArtistCandidate struct {
	ArtistID      *int    `json:"artistId"`
	Name          string  `json:"name"`
	Photo         *string `json:"photo"`
	Genre         *string `json:"genre"`
	CountryCode   *string `json:"countryCode"`
	MusicBrainzID string  `json:"musicBrainzId"`
}

// GenerationService assembles playlists by importing songs from the external
// catalogs on demand and drawing random selections from the local store.
type GenerationService struct {
	repo       repositories.Repository
	catalog    ArtistCatalog
	enricher   CatalogEnricher
	videos     VideoSearcher
	titleCaser cases.Caser
	log        logger.Logger
}

func NewGenerationService(
	repo repositories.Repository,
	catalog ArtistCatalog,
	enricher CatalogEnricher,
	videos VideoSearcher,
) *GenerationService {
	return &GenerationService{
		repo:       repo,
		catalog:    catalog,
		enricher:   enricher,
		videos:     videos,
		titleCaser: cases.Title(language.Und),
		log:        logger.New("generationService"),
	}
}

// GeneratePlaylist creates a playlist shell, imports up to 30 new songs per
// selected artist and fills the playlist with a random selection per artist.
// When no artist yields a single playable song the shell is removed again and
// the result is nil.
func (s *GenerationService) GeneratePlaylist(
	ctx context.Context,
	userID string,
	request GeneratePlaylistRequest,
) (*models.Playlist, error) {
	log := s.log.Function("GeneratePlaylist")

	if len(request.ArtistIDs) < minArtists || len(request.ArtistIDs) > maxArtists {
		return nil, log.ErrMsg("playlist generation requires between 1 and 5 artists")
	}
	if request.Name == "" {
		return nil, log.ErrMsg("playlist name cannot be empty")
	}

	artists, err := s.repo.Artist.GetByIDs(ctx, request.ArtistIDs)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{
		Name:        request.Name,
		Category:    request.Category,
		Description: request.Description,
		IsGenerated: true,
		UserID:      userID,
	}
	if playlist.Category == nil {
		category := defaultCategory
		playlist.Category = &category
	}
	if playlist.Description == nil {
		names := make([]string, len(artists))
		for i, artist := range artists {
			names[i] = artist.Name
		}
		description := fmt.Sprintf("Artists: %s", strings.Join(names, ", "))
		playlist.Description = &description
	}

	if _, err := s.repo.Playlist.Create(ctx, playlist); err != nil {
		return nil, err
	}

	var allSongs []models.Song
	for _, artistID := range request.ArtistIDs {
		allSongs = append(allSongs, s.importAndSelectSongs(ctx, artistID)...)
	}

	if len(allSongs) == 0 {
		log.Warn("No playable songs resolved, removing playlist shell",
			"playlist", playlist.Name)
		if err := s.repo.Playlist.HardDelete(ctx, playlist.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	songIDs := make([]int, len(allSongs))
	for i, song := range allSongs {
		songIDs[i] = song.ID
	}
	if err := s.repo.Playlist.AddSongs(ctx, playlist.ID, songIDs); err != nil {
		return nil, err
	}

	if err := s.repo.Playlist.AddArtists(ctx, playlist.ID, distinctArtistIDs(allSongs)); err != nil {
		return nil, err
	}

	playlist.SongsCount = len(allSongs)
	if err := s.repo.Playlist.Update(ctx, playlist); err != nil {
		return nil, err
	}

	log.Info("Playlist generated",
		"name", playlist.Name, "songs", len(allSongs), "artists", len(request.ArtistIDs))

	return s.repo.Playlist.GetByID(ctx, playlist.ID)
}

// importAndSelectSongs tops the artist's local store up with new imports and
// returns a uniform random selection of playable songs. Import failures
// degrade to whatever the store already holds.
func (s *GenerationService) importAndSelectSongs(ctx context.Context, artistID int) []models.Song {
	log := s.log.Function("importAndSelectSongs")

	artist, err := s.repo.Artist.GetByID(ctx, artistID)
	if err != nil || artist == nil {
		return nil
	}

	existingTitles, err := s.repo.Song.GetTitlesByArtistID(ctx, artistID)
	if err != nil {
		existingTitles = nil
	}

	log.Info("Importing songs", "artist", artist.Name, "existing", len(existingTitles))

	imported := 0
	if artist.MusicBrainzID != nil && *artist.MusicBrainzID != "" {
		imported = s.importFromEnricher(ctx, artist, &existingTitles)
		if imported == 0 {
			imported = s.importFromCatalog(ctx, artist, &existingTitles)
		}
	}

	log.Info("Import finished", "artist", artist.Name, "imported", imported)

	songs, err := s.repo.Song.GetRandomPlayableByArtistID(ctx, artistID, songsPerArtist)
	if err != nil {
		return nil
	}

	return songs
}

// importFromEnricher walks the secondary catalog's albums track by track,
// resolving each new track to a video id through the track's own link, the
// artist's music-video listing or a video search. Resolved songs are
// persisted immediately so a later failure keeps everything imported so far.
func (s *GenerationService) importFromEnricher(
	ctx context.Context,
	artist *models.Artist,
	existingTitles *[]string,
) int {
	log := s.log.Function("importFromEnricher")

	enriched := s.enricher.GetArtistByMBID(ctx, *artist.MusicBrainzID)
	if enriched == nil || enriched.ID == "" {
		log.Info("Artist not found in secondary catalog", "artist", artist.Name)
		return 0
	}

	type videoEntry struct {
		title   string
		videoID string
	}

	var videoIndex []videoEntry
	seenVideoTitles := make(map[string]struct{})
	for _, mvid := range s.enricher.GetMusicVideosByArtistID(ctx, enriched.ID) {
		videoID := ExtractVideoID(mvid.MusicVideoURL)
		if videoID == "" || mvid.Title == "" {
			continue
		}
		key := strings.ToLower(mvid.Title)
		if _, dup := seenVideoTitles[key]; dup {
			continue
		}
		seenVideoTitles[key] = struct{}{}
		videoIndex = append(videoIndex, videoEntry{title: mvid.Title, videoID: videoID})
	}

	albums := s.enricher.GetAlbumsByArtistID(ctx, enriched.ID)
	if len(albums) == 0 {
		log.Info("No albums found in secondary catalog", "artist", artist.Name)
		return 0
	}

	log.Info("Secondary catalog data loaded",
		"artist", artist.Name, "albums", len(albums), "videos", len(videoIndex))

	imported := 0
	quotaExhausted := s.videos.IsQuotaExhausted()

	for _, albumData := range albums {
		if imported >= songsPerArtist {
			break
		}
		if albumData.ID == "" || albumData.Title == "" {
			continue
		}

		album, err := s.findOrCreateAlbum(ctx, artist.ID, albumData)
		if err != nil {
			continue
		}

		for _, track := range s.enricher.GetTracksByAlbumID(ctx, albumData.ID) {
			if imported >= songsPerArtist {
				break
			}
			if track.Title == "" {
				continue
			}
			if containsDuplicate(*existingTitles, track.Title) {
				continue
			}

			videoID := ExtractVideoID(track.MusicVideoURL)

			if videoID == "" {
				for _, entry := range videoIndex {
					if utils.FuzzyTitleMatch(entry.title, track.Title) {
						videoID = entry.videoID
						break
					}
				}
			}

			if videoID == "" && !quotaExhausted {
				if result := s.videos.SearchOfficialVideo(ctx, artist.Name, track.Title); result != nil {
					videoID = result.VideoID
				} else if s.videos.IsQuotaExhausted() {
					quotaExhausted = true
					log.Warn("Video search quota exhausted, skipping remaining searches")
				}
			}

			if videoID == "" {
				continue
			}

			song := &models.Song{
				Title:         utils.CleanTitle(track.Title),
				ArtistID:      artist.ID,
				AlbumID:       &album.ID,
				Duration:      ParseDurationSeconds(track.DurationMS),
				Genre:         firstNonEmpty(optional(track.Genre), album.Genre, artist.Genre),
				CountryCode:   artist.CountryCode,
				YoutubeID:     videoID,
				MusicBrainzID: optional(track.MusicBrainzID),
			}

			if _, err := s.repo.Song.Create(ctx, song); err == nil {
				*existingTitles = append(*existingTitles, song.Title)
				imported++
			}
		}
	}

	if _, err := s.repo.Artist.RefreshSongsCount(ctx, artist.ID); err != nil {
		log.Warn("Failed to refresh artist songs count", "artist", artist.Name, "error", err)
	}

	log.Info("Secondary catalog import finished", "artist", artist.Name, "imported", imported)

	return imported
}

// importFromCatalog is the fallback tier: recordings from the primary catalog
// resolved through video search only.
func (s *GenerationService) importFromCatalog(
	ctx context.Context,
	artist *models.Artist,
	existingTitles *[]string,
) int {
	log := s.log.Function("importFromCatalog")

	recordings := s.catalog.GetArtistRecordings(ctx, *artist.MusicBrainzID, nil, nil, 100)
	if len(recordings) == 0 {
		return 0
	}

	log.Info("Primary catalog recordings loaded",
		"artist", artist.Name, "recordings", len(recordings))

	imported := 0
	for _, recording := range recordings {
		if imported >= songsPerArtist {
			break
		}
		if containsDuplicate(*existingTitles, recording.Title) {
			continue
		}

		if recording.ISRC != nil && *recording.ISRC != "" {
			exists, err := s.repo.Song.ExistsByISRC(ctx, *recording.ISRC)
			if err != nil || exists {
				continue
			}
		}

		result := s.videos.SearchOfficialVideo(ctx, artist.Name, recording.Title)
		if result == nil {
			continue
		}

		song := &models.Song{
			Title:         utils.CleanTitle(recording.Title),
			ArtistID:      artist.ID,
			Duration:      recording.Duration,
			Genre:         artist.Genre,
			CountryCode:   artist.CountryCode,
			YoutubeID:     result.VideoID,
			ISRC:          recording.ISRC,
			MusicBrainzID: optional(recording.MusicBrainzID),
		}
		if recording.ReleaseYear != 0 {
			year := recording.ReleaseYear
			song.ReleaseYear = &year
		}

		if _, err := s.repo.Song.Create(ctx, song); err == nil {
			*existingTitles = append(*existingTitles, song.Title)
			imported++
		}
	}

	if _, err := s.repo.Artist.RefreshSongsCount(ctx, artist.ID); err != nil {
		log.Warn("Failed to refresh artist songs count", "artist", artist.Name, "error", err)
	}

	return imported
}

func (s *GenerationService) findOrCreateAlbum(
	ctx context.Context,
	artistID int,
	albumData AudioDBAlbum,
) (*models.Album, error) {
	album := &models.Album{
		Title:         albumData.Title,
		ArtistID:      artistID,
		YearReleased:  ParseYear(albumData.YearReleased),
		Genre:         optional(albumData.Genre),
		Style:         optional(albumData.Style),
		Mood:          optional(albumData.Mood),
		Label:         optional(albumData.Label),
		Thumb:         optional(albumData.Thumb),
		Description:   optional(albumData.Description),
		MusicBrainzID: optional(albumData.MusicBrainzID),
		AudioDBID:     optional(albumData.ID),
	}

	return s.repo.Album.FindOrCreateByAudioDBID(ctx, album)
}

// ImportArtistByName resolves a free-text name to a stored artist, importing
// it from the catalogs on first sight. Unknown names yield nil.
func (s *GenerationService) ImportArtistByName(
	ctx context.Context,
	artistName string,
) (*models.Artist, error) {
	log := s.log.Function("ImportArtistByName")

	existing, err := s.repo.Artist.FindByName(ctx, artistName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	matches := s.catalog.SearchArtists(ctx, artistName, 1)
	if len(matches) == 0 {
		return nil, nil
	}
	match := matches[0]

	var enriched *AudioDBArtist
	if match.MusicBrainzID != "" {
		enriched = s.enricher.GetArtistByMBID(ctx, match.MusicBrainzID)
	} else {
		enriched = s.enricher.SearchArtistByName(ctx, artistName)
	}

	artist, err := s.repo.Artist.Create(ctx, buildArtist(match, enriched))
	if err != nil {
		return nil, err
	}

	log.Info("Artist imported", "name", artist.Name, "mbid", match.MusicBrainzID)

	return artist, nil
}

// ImportArtistByMBID imports the artist behind a catalog id, typically after
// the user picked a row from SearchArtistCandidates. Idempotent per MBID.
func (s *GenerationService) ImportArtistByMBID(
	ctx context.Context,
	mbid string,
) (*models.Artist, error) {
	log := s.log.Function("ImportArtistByMBID")

	existing, err := s.repo.Artist.GetByMusicBrainzID(ctx, mbid)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	match := s.catalog.GetArtistByID(ctx, mbid)
	if match == nil {
		return nil, nil
	}

	enriched := s.enricher.GetArtistByMBID(ctx, mbid)

	artist, err := s.repo.Artist.Create(ctx, buildArtist(*match, enriched))
	if err != nil {
		return nil, err
	}

	log.Info("Artist imported on select", "name", artist.Name, "mbid", mbid)

	return artist, nil
}

// SearchArtistCandidates searches the primary catalog without importing
// anything. Rows for artists already imported carry the local record's id and
// metadata so the caller can skip the import step.
func (s *GenerationService) SearchArtistCandidates(
	ctx context.Context,
	query string,
	limit int,
) ([]ArtistCandidate, error) {
	if limit <= 0 {
		limit = searchLimit
	}

	// the catalog's search scores case-sensitively; title-casing the query
	// keeps exact name matches at the top
	normalizedQuery := s.titleCaser.String(strings.ToLower(query))

	matches := s.catalog.SearchArtists(ctx, normalizedQuery, limit)

	ranked := make([]MusicBrainzArtistResult, 0, len(matches))
	for _, match := range matches {
		if match.Score >= candidateScore && match.MusicBrainzID != "" {
			ranked = append(ranked, match)
		}
	}
	if len(ranked) == 0 {
		return []ArtistCandidate{}, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	mbids := make([]string, len(ranked))
	for i, match := range ranked {
		mbids[i] = match.MusicBrainzID
	}

	existingByMBID, err := s.repo.Artist.GetByMusicBrainzIDs(ctx, mbids)
	if err != nil {
		return nil, err
	}

	candidates := make([]ArtistCandidate, 0, len(ranked))
	for _, match := range ranked {
		if existing, ok := existingByMBID[match.MusicBrainzID]; ok {
			id := existing.ID
			photo := existing.Photo
			candidates = append(candidates, ArtistCandidate{
				ArtistID:      &id,
				Name:          existing.Name,
				Photo:         &photo,
				Genre:         existing.Genre,
				CountryCode:   existing.CountryCode,
				MusicBrainzID: match.MusicBrainzID,
			})
			continue
		}

		candidates = append(candidates, ArtistCandidate{
			Name:          match.Name,
			CountryCode:   match.CountryCode,
			MusicBrainzID: match.MusicBrainzID,
		})
	}

	return candidates, nil
}

func buildArtist(match MusicBrainzArtistResult, enriched *AudioDBArtist) *models.Artist {
	artist := &models.Artist{
		Name:          match.Name,
		MusicBrainzID: optional(match.MusicBrainzID),
		CountryCode:   match.CountryCode,
		CareerStart:   match.CareerStart,
		CareerEnd:     match.CareerEnd,
		IsActive:      match.CareerEnd == nil,
		Photo:         defaultPhoto,
	}

	if enriched != nil {
		if enriched.CountryCode != "" {
			artist.CountryCode = optional(enriched.CountryCode)
		}
		if enriched.Thumb != "" {
			artist.Photo = enriched.Thumb
		}
		artist.Biography = optional(enriched.Biography)
		artist.Genre = optional(enriched.Genre)
	}

	return artist
}

func containsDuplicate(existingTitles []string, title string) bool {
	for _, existing := range existingTitles {
		if utils.IsDuplicateTitle(existing, title) {
			return true
		}
	}
	return false
}

func distinctArtistIDs(songs []models.Song) []int {
	seen := make(map[int]struct{}, len(songs))
	ids := make([]int, 0, len(songs))
	for _, song := range songs {
		if _, ok := seen[song.ArtistID]; ok {
			continue
		}
		seen[song.ArtistID] = struct{}{}
		ids = append(ids, song.ArtistID)
	}
	return ids
}

// optional maps an empty string to nil for nullable columns.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func firstNonEmpty(values ...*string) *string {
	for _, value := range values {
		if value != nil && *value != "" {
			return value
		}
	}
	return nil
}
