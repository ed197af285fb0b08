package app

import (
	"context"

	"jukebox/config"
	"jukebox/internal/database"
	"jukebox/internal/jobs"
	"jukebox/internal/repositories"
	"jukebox/internal/services"
	"jukebox/pkg/logger"
)

type App struct {
	Database database.DB
	Config   config.Config

	Repository repositories.Repository
	Services   services.Service

	log logger.Logger
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.MigrateModels(); err != nil {
		return &App{}, log.Err("failed to migrate models", err)
	}

	repos := repositories.New(db)

	service, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	if config.SchedulerEnabled {
		quotaResetJob := jobs.NewQuotaResetJob(service.YouTube, services.Daily)
		if err := service.Scheduler.AddJob(quotaResetJob); err != nil {
			return &App{}, log.Err("failed to register quota reset job", err)
		}
		log.Info("Registered YouTube quota reset job with scheduler")

		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	return &App{
		Database:   db,
		Config:     config,
		Repository: repos,
		Services:   service,
		log:        logger.New("app"),
	}, nil
}

func (a *App) Close() error {
	log := a.log.Function("Close")

	if a.Services.Scheduler != nil {
		if err := a.Services.Scheduler.Stop(context.Background()); err != nil {
			log.Er("failed to stop scheduler", err)
		}
	}

	if err := a.Database.Close(); err != nil {
		return log.Err("failed to close database", err)
	}

	return nil
}
