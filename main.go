package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/bookloop/booking-engine/controllers"
	"github.com/bookloop/booking-engine/cron"
	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/redis"
	"github.com/bookloop/booking-engine/routes"
	"github.com/bookloop/booking-engine/scheduling"
)

func main() {
	app := fiber.New()
	db.Init()
	redis.InitRedis()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	tz := scheduling.NewResolver(os.Getenv("DEFAULT_TIMEZONE"))
	store := scheduling.NewGormStore(db.DB)
	cache := scheduling.NewCache(redis.Client, scheduling.DefaultCacheTTL)
	engine := scheduling.NewEngine(store, tz, cache)
	guard := scheduling.NewGuard(store, store, engine, tz, cache)
	controllers.Init(engine, guard, cache)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	routes.SetupBookingRoutes(app)
	routes.SetupScheduleRoutes(app)
	routes.SetupServiceRoutes(app)

	cron.StartCronJobs()

	app.Listen(":8000")
	fmt.Println("Server started on port 8000")
}
