package main

import (
	"buslane/internal/search/handler"
	"buslane/internal/search/repository"
	"buslane/internal/search/service"
	"buslane/internal/search/validator"
	"buslane/pkg/app"
	"buslane/pkg/config"
)

const ServiceName = "search"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	searchService := service.NewSearchService(
		repository.NewMongoCatalogRepository(cfg),
		repository.NewMongoLedgerRepository(cfg),
		validator.NewFilterValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Search service initialized")

	application := app.NewApplication()
	application.SetApp(cfg, handler.NewSearchHandler(searchService, cfg.Log))
	application.Run()
}
