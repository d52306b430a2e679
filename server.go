package main

import (
	"flag"
	"fmt"
	"log"

	"creatorhub/api/handlers"
	"creatorhub/api/middleware"
	"creatorhub/api/routes"
	"creatorhub/config"
	"creatorhub/db"
	"creatorhub/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	// Redis и RabbitMQ опциональны: без них остаются только локальные
	// гарантии single-flight и не публикуются события
	if err := services.InitRedis(); err != nil {
		log.Printf("WARN: Redis unavailable, running with local-only refresh guard: %v", err)
	}
	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("WARN: RabbitMQ unavailable, events will not be published: %v", err)
	}

	conf := config.AppConfig
	ingestService := services.NewIngestService(conf.Feed.ConnectorTimeout.Std())
	connectors := services.BuildConnectors(conf.Sources)
	coordinator := services.NewRefreshCoordinator(
		ingestService,
		connectors,
		conf.Feed.StalenessThreshold.Std(),
		conf.Feed.RefreshWaitTimeout.Std(),
	)
	feedService := services.NewFeedService(conf.Feed)
	handlers.InitFeedHandlers(feedService, coordinator)

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("creatorhub"))

	routes.PublicApi(router)

	addr := fmt.Sprintf("%s:%d", conf.Backend.Host, conf.Backend.Port)
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
