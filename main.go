package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/avishkarm/clinic-scheduler/audit"
	"github.com/avishkarm/clinic-scheduler/config"
	"github.com/avishkarm/clinic-scheduler/controllers"
	"github.com/avishkarm/clinic-scheduler/cron"
	"github.com/avishkarm/clinic-scheduler/db"
	"github.com/avishkarm/clinic-scheduler/notify"
	"github.com/avishkarm/clinic-scheduler/redis"
	"github.com/avishkarm/clinic-scheduler/routes"
	"github.com/avishkarm/clinic-scheduler/scheduler"
	"github.com/avishkarm/clinic-scheduler/utils"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.GetLogger()
	defer logger.Sync()

	db.Init()
	db.Migrate()
	redis.InitRedis()

	notifier := notify.New(cfg.Notifications, db.DB, logger)

	svc := scheduler.New(db.DB, cfg.Scheduling,
		scheduler.WithCache(redis.Client),
		scheduler.WithEvents(notifier),
		scheduler.WithAudit(audit.NewLogger(logger)),
	)
	controllers.Scheduler = svc

	if c := cron.StartReminderJobs(cfg.Reminders, db.DB, notifier); c != nil {
		defer c.Stop()
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("clinic-scheduler is up")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupAvailabilityRoutes(app)
	routes.SetupBookingRoutes(app)

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
