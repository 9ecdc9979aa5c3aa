package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AvaliaJa/AvaliaJa/app/controllers"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/cache"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/conversion"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/database"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/env"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/jobqueue"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/leaderboard"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/router"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/tracking"
)

func main() {
	app, queue := NewApplication()

	// Stop the job queue before the process exits so in-flight conversion
	// jobs finish or go back on the queue.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		queue.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitGlobalFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	// Background conversion pipeline: clicks are enqueued after the
	// redirect and estimated asynchronously.
	workers, _ := strconv.Atoi(env.GetEnv("JOB_WORKERS", "3"))
	queue := jobqueue.NewQueue(workers)
	applier := conversion.NewApplier(repos.Click, conversion.NewRandomEstimatorFromEnv())
	queue.RegisterProcessor(jobqueue.JobTypeConversionEstimate, jobqueue.NewConversionProcessor(applier))
	queue.Start()

	controllers.SetTrackingService(tracking.NewService(repos.Waiter, repos.Restaurant, repos.Click, queue))
	controllers.SetLeaderboardService(leaderboard.NewService(repos.Waiter, repos.Click, repos.Champion, time.UTC))

	app := fiber.New(fiber.Config{
		AppName: "AvaliaJa",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app, queue
}
