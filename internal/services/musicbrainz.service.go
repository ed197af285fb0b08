package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"jukebox/config"
	"jukebox/internal/database"
	"jukebox/pkg/logger"

	"github.com/google/uuid"
)

const (
	artistSearchCacheTTL = time.Hour
	recordingsLimit      = 100
)

// MusicBrainzArtistResult is a ranked artist candidate from the primary
// catalog.
type MusicBrainzArtistResult struct {
	MusicBrainzID string     `json:"musicBrainzId"`
	Name          string     `json:"name"`
	CountryCode   *string    `json:"countryCode,omitempty"`
	CareerStart   *time.Time `json:"careerStart,omitempty"`
	CareerEnd     *time.Time `json:"careerEnd,omitempty"`
	Score         int        `json:"score"`
}

// MusicBrainzSongResult is a recording listed for an artist. ReleaseYear is 0
// when the catalog does not know the first release date.
type MusicBrainzSongResult struct {
	MusicBrainzID string  `json:"musicBrainzId"`
	Title         string  `json:"title"`
	Duration      int     `json:"duration"`
	ReleaseYear   int     `json:"releaseYear"`
	ISRC          *string `json:"isrc,omitempty"`
}

type MusicBrainzService struct {
	client    *http.Client
	baseURL   string
	userAgent string
	db        database.DB
	log       logger.Logger
}

type mbArea struct {
	ISOCodes []string `json:"iso-3166-1-codes"`
}

type mbLifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

type mbArtist struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Score    int         `json:"score"`
	Area     *mbArea     `json:"area"`
	LifeSpan *mbLifeSpan `json:"life-span"`
}

type mbArtistSearchResponse struct {
	Artists []mbArtist `json:"artists"`
}

type mbRecording struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Length           *int     `json:"length"`
	FirstReleaseDate string   `json:"first-release-date"`
	ISRCs            []string `json:"isrcs"`
}

type mbRecordingsResponse struct {
	Recordings []mbRecording `json:"recordings"`
}

func NewMusicBrainzService(config config.Config, db database.DB) *MusicBrainzService {
	return &MusicBrainzService{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   config.MusicBrainzBaseURL,
		userAgent: config.MusicBrainzUserAgent,
		db:        db,
		log:       logger.New("musicBrainzService"),
	}
}

// SearchArtists returns ranked artist candidates for a free-text name.
// Upstream failures yield an empty list, never an error.
func (s *MusicBrainzService) SearchArtists(
	ctx context.Context,
	artistName string,
	limit int,
) []MusicBrainzArtistResult {
	log := s.log.Function("SearchArtists")

	cacheKey := fmt.Sprintf("mb:artist-search:%s:%d", strings.ToLower(artistName), limit)
	if cached := s.db.CacheGet(ctx, cacheKey); cached != "" {
		var results []MusicBrainzArtistResult
		if err := json.Unmarshal([]byte(cached), &results); err == nil {
			return results
		}
	}

	endpoint := fmt.Sprintf("%s/artist?query=%s&limit=%d&fmt=json",
		s.baseURL, url.QueryEscape(artistName), limit)

	var response mbArtistSearchResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("artist search failed", err, "name", artistName)
		return nil
	}

	results := make([]MusicBrainzArtistResult, 0, len(response.Artists))
	for _, artist := range response.Artists {
		results = append(results, s.toArtistResult(artist))
	}

	if encoded, err := json.Marshal(results); err == nil {
		s.db.CacheSet(ctx, cacheKey, string(encoded), artistSearchCacheTTL)
	}

	return results
}

// GetArtistByID looks an artist up by its MBID. Returns nil on not-found or
// upstream failure.
func (s *MusicBrainzService) GetArtistByID(ctx context.Context, mbid string) *MusicBrainzArtistResult {
	log := s.log.Function("GetArtistByID")

	if _, err := uuid.Parse(mbid); err != nil {
		log.Warn("Rejecting malformed MBID", "mbid", mbid)
		return nil
	}

	endpoint := fmt.Sprintf("%s/artist/%s?fmt=json", s.baseURL, mbid)

	var artist mbArtist
	if err := s.fetch(ctx, endpoint, &artist); err != nil {
		log.Er("artist lookup failed", err, "mbid", mbid)
		return nil
	}

	if artist.ID == "" {
		return nil
	}

	result := s.toArtistResult(artist)
	return &result
}

// GetArtistRecordings lists recordings for an artist: a direct browse first,
// then a full-text search scoped to the artist id when the browse comes back
// empty. Results are filtered to the optional year range, deduplicated by
// case-insensitive title and sorted by ascending release year.
func (s *MusicBrainzService) GetArtistRecordings(
	ctx context.Context,
	mbid string,
	yearFrom, yearTo *int,
	limit int,
) []MusicBrainzSongResult {
	log := s.log.Function("GetArtistRecordings")

	if _, err := uuid.Parse(mbid); err != nil {
		log.Warn("Rejecting malformed MBID", "mbid", mbid)
		return nil
	}

	if limit <= 0 || limit > recordingsLimit {
		limit = recordingsLimit
	}

	endpoint := fmt.Sprintf("%s/recording?artist=%s&inc=isrcs&limit=%d&fmt=json",
		s.baseURL, mbid, limit)

	var response mbRecordingsResponse
	if err := s.fetch(ctx, endpoint, &response); err != nil {
		log.Er("recording browse failed", err, "mbid", mbid)
		return nil
	}

	if len(response.Recordings) == 0 {
		log.Info("Browse returned no recordings, falling back to search", "mbid", mbid)

		endpoint = fmt.Sprintf("%s/recording?query=%s&limit=%d&fmt=json",
			s.baseURL, url.QueryEscape("arid:"+mbid), limit)

		response = mbRecordingsResponse{}
		if err := s.fetch(ctx, endpoint, &response); err != nil {
			log.Er("recording search failed", err, "mbid", mbid)
			return nil
		}
	}

	results := make([]MusicBrainzSongResult, 0, len(response.Recordings))
	for _, recording := range response.Recordings {
		releaseYear := releaseYearOf(recording.FirstReleaseDate)

		// a recording with an unknown year is never excluded by the range
		if yearFrom != nil && releaseYear != nil && *releaseYear < *yearFrom {
			continue
		}
		if yearTo != nil && releaseYear != nil && *releaseYear > *yearTo {
			continue
		}

		result := MusicBrainzSongResult{
			MusicBrainzID: recording.ID,
			Title:         recording.Title,
			Duration:      durationSecondsOf(recording.Length),
		}
		if releaseYear != nil {
			result.ReleaseYear = *releaseYear
		}
		if len(recording.ISRCs) > 0 {
			isrc := recording.ISRCs[0]
			result.ISRC = &isrc
		}

		results = append(results, result)
	}

	return dedupeAndSortRecordings(results)
}

func (s *MusicBrainzService) toArtistResult(artist mbArtist) MusicBrainzArtistResult {
	result := MusicBrainzArtistResult{
		MusicBrainzID: artist.ID,
		Name:          artist.Name,
		Score:         artist.Score,
	}

	if artist.Area != nil && len(artist.Area.ISOCodes) > 0 {
		code := artist.Area.ISOCodes[0]
		result.CountryCode = &code
	}

	if artist.LifeSpan != nil {
		result.CareerStart = parseLifeSpanDate(artist.LifeSpan.Begin)
		result.CareerEnd = parseLifeSpanDate(artist.LifeSpan.End)
	}

	return result
}

func (s *MusicBrainzService) fetch(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

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
		return fmt.Errorf("musicbrainz API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseLifeSpanDate accepts a full date, a year-month or a bare year between
// 1800 and 2100. Anything else yields nil.
func parseLifeSpanDate(value string) *time.Time {
	if value == "" {
		return nil
	}

	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}

	if year, err := strconv.Atoi(value); err == nil && year > 1800 && year < 2100 {
		parsed := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &parsed
	}

	return nil
}

func releaseYearOf(firstReleaseDate string) *int {
	if len(firstReleaseDate) < 4 {
		return nil
	}

	year, err := strconv.Atoi(firstReleaseDate[:4])
	if err != nil {
		return nil
	}

	return &year
}

func durationSecondsOf(lengthMillis *int) int {
	if lengthMillis == nil {
		return 0
	}
	return *lengthMillis / 1000
}

// dedupeAndSortRecordings keeps the first occurrence per case-insensitive
// title and orders the rest by ascending release year, unknown years first.
func dedupeAndSortRecordings(results []MusicBrainzSongResult) []MusicBrainzSongResult {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]MusicBrainzSongResult, 0, len(results))

	for _, result := range results {
		key := strings.ToLower(result.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, result)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].ReleaseYear < deduped[j].ReleaseYear
	})

	return deduped
}
