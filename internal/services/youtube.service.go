package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jukebox/config"
	"jukebox/pkg/logger"

	"golang.org/x/time/rate"
)

const searchMaxResults = 5

// blacklistTerms disqualify a candidate when found in its title.
var blacklistTerms = []string{
	"cover", "covers", "live", "live performance", "concert", "remix", "remixed",
	"karaoke", "instrumental", "reaction", "reacts to", "lyrics", "lyric video",
	"tutorial", "how to play", "lesson", "parody", "funny", "acoustic version",
	"slowed", "reverb", "nightcore",
}

// whitelistTerms mark a candidate as an official upload.
var whitelistTerms = []string{"official", "official audio", "official video", "vevo"}

// YouTubeVideo is one search result candidate.
type YouTubeVideo struct {
	VideoID      string
	Title        string
	ChannelTitle string
}

type ytSearchID struct {
	VideoID string `json:"videoId"`
}

type ytSearchSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

type ytSearchItem struct {
	ID      ytSearchID      `json:"id"`
	Snippet ytSearchSnippet `json:"snippet"`
}

type ytSearchResponse struct {
	Items []ytSearchItem `json:"items"`
}

// YouTubeService searches for official uploads of songs. It holds a ring of
// API keys and rotates to the next key whenever the current one runs out of
// quota; once every key is exhausted the ring stays dark until ResetQuota.
type YouTubeService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	log     logger.Logger

	mu        sync.Mutex
	keys      []string
	keyIndex  int
	exhausted bool
}

func NewYouTubeService(config config.Config) *YouTubeService {
	return &YouTubeService{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: config.YoutubeBaseURL,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		log:     logger.New("youtubeService"),
		keys:    config.YoutubeKeys(),
	}
}

// IsQuotaExhausted reports whether every key in the ring has hit its quota.
func (s *YouTubeService) IsQuotaExhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

// ResetQuota clears the exhausted flag and starts the rotation over from the
// first key. Upstream quotas refill daily.
func (s *YouTubeService) ResetQuota() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exhausted = false
	s.keyIndex = 0
	s.log.Info("YouTube quota state reset", "keys", len(s.keys))
}

// SearchOfficialVideo finds the best official upload for a song, or nil when
// nothing acceptable exists or all keys are out of quota.
func (s *YouTubeService) SearchOfficialVideo(
	ctx context.Context,
	artistName, songTitle string,
) *YouTubeVideo {
	log := s.log.Function("SearchOfficialVideo")

	if s.IsQuotaExhausted() {
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		log.Er("rate limiter wait interrupted", err)
		return nil
	}

	query := fmt.Sprintf("%q %q official audio", artistName, songTitle)
	items, ok := s.search(ctx, query)
	if !ok {
		return nil
	}

	return pickOfficialVideo(items, artistName, songTitle)
}

// search runs one query against the API, rotating through the key ring on
// quota errors. ok is false when the call failed outright or every key is
// exhausted.
func (s *YouTubeService) search(ctx context.Context, query string) ([]ytSearchItem, bool) {
	log := s.log.Function("search")

	s.mu.Lock()
	remaining := len(s.keys) - s.keyIndex
	s.mu.Unlock()

	for attempt := 0; attempt < remaining; attempt++ {
		s.mu.Lock()
		if s.exhausted || s.keyIndex >= len(s.keys) {
			s.exhausted = true
			s.mu.Unlock()
			return nil, false
		}
		key := s.keys[s.keyIndex]
		s.mu.Unlock()

		items, status, err := s.doSearch(ctx, query, key)
		if err != nil {
			log.Er("search request failed", err, "query", query)
			return nil, false
		}

		if status == http.StatusForbidden {
			s.rotateKey()
			continue
		}

		if status != http.StatusOK {
			log.Warn("Unexpected search status", "status", status, "query", query)
			return nil, false
		}

		return items, true
	}

	s.mu.Lock()
	s.exhausted = true
	s.mu.Unlock()
	log.Warn("All YouTube API keys exhausted")

	return nil, false
}

func (s *YouTubeService) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keyIndex++
	if s.keyIndex >= len(s.keys) {
		s.exhausted = true
		s.log.Warn("All YouTube API keys exhausted")
		return
	}
	s.log.Info("Rotated to next YouTube API key", "index", s.keyIndex)
}

func (s *YouTubeService) doSearch(
	ctx context.Context,
	query, apiKey string,
) ([]ytSearchItem, int, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("videoCategoryId", "10")
	params.Set("maxResults", fmt.Sprintf("%d", searchMaxResults))
	params.Set("order", "relevance")
	params.Set("safeSearch", "none")
	params.Set("key", apiKey)

	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var response ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Items, resp.StatusCode, nil
}

// pickOfficialVideo applies the candidate filter in order and falls back to
// the first raw result when no candidate passes every rule.
func pickOfficialVideo(items []ytSearchItem, artistName, songTitle string) *YouTubeVideo {
	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if item.ID.VideoID == "" {
			continue
		}
		if isAcceptableCandidate(item, artistName, songTitle) {
			return toVideo(item)
		}
	}

	for _, item := range items {
		if item.ID.VideoID != "" {
			return toVideo(item)
		}
	}

	return nil
}

func toVideo(item ytSearchItem) *YouTubeVideo {
	return &YouTubeVideo{
		VideoID:      item.ID.VideoID,
		Title:        item.Snippet.Title,
		ChannelTitle: item.Snippet.ChannelTitle,
	}
}

func isAcceptableCandidate(item ytSearchItem, artistName, songTitle string) bool {
	videoTitle := strings.ToLower(item.Snippet.Title)
	channel := strings.ToLower(item.Snippet.ChannelTitle)
	artist := strings.ToLower(artistName)
	song := strings.ToLower(songTitle)

	if videoTitle == "" || channel == "" {
		return false
	}

	if !strings.Contains(videoTitle, song) {
		return false
	}

	if !strings.Contains(videoTitle, artist) && !strings.Contains(channel, artist) {
		return false
	}

	for _, term := range blacklistTerms {
		if strings.Contains(videoTitle, term) {
			return false
		}
	}

	for _, term := range whitelistTerms {
		if strings.Contains(videoTitle, term) || strings.Contains(channel, term) {
			return true
		}
	}

	return strings.Contains(channel, artist)
}
