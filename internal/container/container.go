package container

import (
	"insights-be/internal/config"
	"insights-be/internal/registry"
	"insights-be/internal/repository"
	"insights-be/internal/service"
	"insights-be/pkg/database"
	"insights-be/pkg/logger"
	"insights-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *registry.Registry
	Services *service.Services
}

// New creates a new dependency injection container. The database and Redis
// connections are constructed by the caller so their lifecycle (and cleanup
// ordering) stays in main.
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB, redisClient *redis.Client) (*Container, error) {
	institutions := registry.New(cfg.InstitutionsFile, log)

	eventRepo := repository.NewEventRepository(db)
	allowListRepo := repository.NewAllowListRepository(redisClient)

	services := &service.Services{
		Analytics: service.NewAnalyticsService(eventRepo, allowListRepo, institutions, cfg, log),
		AllowList: service.NewAllowListService(allowListRepo, log),
	}

	return &Container{
		Config:   cfg,
		Logger:   log,
		Registry: institutions,
		Services: services,
	}, nil
}

// GetAnalyticsService returns the analytics service
func (c *Container) GetAnalyticsService() service.AnalyticsService {
	return c.Services.Analytics
}

// GetAllowListService returns the allow-list service
func (c *Container) GetAllowListService() service.AllowListService {
	return c.Services.AllowList
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}
