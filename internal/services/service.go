package services

import (
	"jukebox/config"
	"jukebox/internal/database"
	"jukebox/internal/repositories"
)

type Service struct {
	MusicBrainz *MusicBrainzService
	AudioDB     *AudioDBService
	YouTube     *YouTubeService
	Generation  *GenerationService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config) (Service, error) {
	repos := repositories.New(db)

	musicBrainzService := NewMusicBrainzService(config, db)
	audioDBService := NewAudioDBService(config)
	youtubeService := NewYouTubeService(config)
	generationService := NewGenerationService(
		repos,
		musicBrainzService,
		audioDBService,
		youtubeService,
	)
	schedulerService := NewSchedulerService()

	return Service{
		MusicBrainz: musicBrainzService,
		AudioDB:     audioDBService,
		YouTube:     youtubeService,
		Generation:  generationService,
		Scheduler:   schedulerService,
	}, nil
}
