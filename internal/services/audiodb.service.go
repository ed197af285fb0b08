package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jukebox/config"
	"jukebox/pkg/logger"
)

// AudioDBArtist is the secondary catalog's artist record. All fields arrive
// as loosely typed strings from the upstream JSON.
type AudioDBArtist struct {
	ID            string `json:"idArtist"`
	Name          string `json:"strArtist"`
	Thumb         string `json:"strArtistThumb"`
	Biography     string `json:"strBiographyEN"`
	Genre         string `json:"strGenre"`
	CountryCode   string `json:"strCountryCode"`
	MusicBrainzID string `json:"strMusicBrainzID"`
}

type AudioDBAlbum struct {
	ID            string `json:"idAlbum"`
	ArtistID      string `json:"idArtist"`
	Title         string `json:"strAlbum"`
	YearReleased  string `json:"intYearReleased"`
	Genre         string `json:"strGenre"`
	Style         string `json:"strStyle"`
	Mood          string `json:"strMood"`
	Label         string `json:"strLabel"`
	Thumb         string `json:"strAlbumThumb"`
	Description   string `json:"strDescriptionEN"`
	MusicBrainzID string `json:"strMusicBrainzID"`
}

// AudioDBTrack is a raw catalog track. It only lives for the duration of an
// import run.
type AudioDBTrack struct {
	ID            string `json:"idTrack"`
	AlbumID       string `json:"idAlbum"`
	Title         string `json:"strTrack"`
	DurationMS    string `json:"intDuration"`
	Genre         string `json:"strGenre"`
	MusicVideoURL string `json:"strMusicVid"`
	MusicBrainzID string `json:"strMusicBrainzID"`
}

type audioDBArtistResponse struct {
	Artists []AudioDBArtist `json:"artists"`
}

type audioDBAlbumResponse struct {
	Albums []AudioDBAlbum `json:"album"`
}

type audioDBTrackResponse struct {
	Tracks []AudioDBTrack `json:"track"`
}

type audioDBMvidResponse struct {
	Mvids []AudioDBTrack `json:"mvids"`
}

type AudioDBService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	log     logger.Logger
}

func NewAudioDBService(config config.Config) *AudioDBService {
	return &AudioDBService{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: config.AudioDBBaseURL,
		apiKey:  config.AudioDBAPIKey,
		log:     logger.New("audioDBService"),
	}
}

// GetArtistByMBID looks the artist up by its primary-catalog cross-reference
// id. Returns nil on not-found or upstream failure.
func (s *AudioDBService) GetArtistByMBID(ctx context.Context, mbid string) *AudioDBArtist {
	log := s.log.Function("GetArtistByMBID")

	endpoint := fmt.Sprintf("%s/%s/artist-mb.php?i=%s", s.baseURL, s.apiKey, url.QueryEscape(mbid))

	var response audioDBArtistResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("artist lookup by MBID failed", err, "mbid", mbid)
		return nil
	}

	if len(response.Artists) == 0 {
		return nil
	}
	return &response.Artists[0]
}

// SearchArtistByName returns the first match for a name search, or nil.
func (s *AudioDBService) SearchArtistByName(ctx context.Context, name string) *AudioDBArtist {
	log := s.log.Function("SearchArtistByName")

	endpoint := fmt.Sprintf("%s/%s/search.php?s=%s", s.baseURL, s.apiKey, url.QueryEscape(name))

	var response audioDBArtistResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("artist search failed", err, "name", name)
		return nil
	}

	if len(response.Artists) == 0 {
		return nil
	}
	return &response.Artists[0]
}

func (s *AudioDBService) GetAlbumsByArtistID(ctx context.Context, artistID string) []AudioDBAlbum {
	log := s.log.Function("GetAlbumsByArtistID")

	endpoint := fmt.Sprintf("%s/%s/album.php?i=%s", s.baseURL, s.apiKey, url.QueryEscape(artistID))

	var response audioDBAlbumResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("album listing failed", err, "artistID", artistID)
		return nil
	}

	return response.Albums
}

func (s *AudioDBService) GetTracksByAlbumID(ctx context.Context, albumID string) []AudioDBTrack {
	log := s.log.Function("GetTracksByAlbumID")

	endpoint := fmt.Sprintf("%s/%s/track.php?m=%s", s.baseURL, s.apiKey, url.QueryEscape(albumID))

	var response audioDBTrackResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("track listing failed", err, "albumID", albumID)
		return nil
	}

	return response.Tracks
}

// GetMusicVideosByArtistID lists the artist's music videos, restricted to
// entries that actually carry a video link.
func (s *AudioDBService) GetMusicVideosByArtistID(ctx context.Context, artistID string) []AudioDBTrack {
	log := s.log.Function("GetMusicVideosByArtistID")

	endpoint := fmt.Sprintf("%s/%s/mvid.php?i=%s", s.baseURL, s.apiKey, url.QueryEscape(artistID))

	var response audioDBMvidResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("music video listing failed", err, "artistID", artistID)
		return nil
	}

	videos := make([]AudioDBTrack, 0, len(response.Mvids))
	for _, mvid := range response.Mvids {
		if mvid.MusicVideoURL != "" {
			videos = append(videos, mvid)
		}
	}

	return videos
}

func (s *AudioDBService) fetch(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audiodb API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// ExtractVideoID pulls a video id out of a watch URL. It recognizes the
// ?v= query parameter and the youtu.be/ short form; anything else yields "".
func ExtractVideoID(videoURL string) string {
	if videoURL == "" {
		return ""
	}

	if _, after, found := strings.Cut(videoURL, "watch?v="); found {
		id, _, _ := strings.Cut(after, "&")
		return id
	}

	if _, after, found := strings.Cut(videoURL, "youtu.be/"); found {
		id, _, _ := strings.Cut(after, "?")
		return id
	}

	return ""
}

// ParseDurationSeconds converts the catalog's millisecond string to whole
// seconds. Non-numeric input yields 0.
func ParseDurationSeconds(milliseconds string) int {
	if milliseconds == "" {
		return 0
	}

	ms, err := strconv.Atoi(milliseconds)
	if err != nil {
		return 0
	}
	return ms / 1000
}

// ParseYear accepts only values strictly between 1800 and 2100.
func ParseYear(yearString string) *int {
	if yearString == "" {
		return nil
	}

	year, err := strconv.Atoi(yearString)
	if err != nil || year <= 1800 || year >= 2100 {
		return nil
	}
	return &year
}
