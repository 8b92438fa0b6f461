package main

import (
	"context"
	"log"

	"tickethub/bot"
	"tickethub/config"
	"tickethub/database"
	"tickethub/middleware"
	guildRoutes "tickethub/routers/guildRoutes"
	ticketRoutes "tickethub/routers/ticketRoutes"
	"tickethub/sync"
	"tickethub/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	defer database.Database.Close()
	database.ConnectArchive()

	b, err := bot.New(config.AppConfig.BotToken, database.Database, database.Archive)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	if err := b.Open(); err != nil {
		log.Fatalf("Failed to open Discord session: %v", err)
	}
	defer b.Close()

	go ws.Updates.Start()

	ctx := context.Background()
	outbound := sync.NewOutbound(sync.NewReconciler(), b.Gateway, database.Database, database.Archive, ws.Updates)
	sync.NewListener(database.Database.Firestore(), config.AppConfig.TicketsCollection, outbound).Start(ctx)
	sync.InitializeOutboxSweep(ctx, outbound, database.Database, config.AppConfig.OutboxSweepSpec)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	ticketRoutes.SetupTicketRoutes(app)
	guildRoutes.SetupGuildRoutes(app)

	// Live ticket feed for the dashboard. Browsers cannot set headers on
	// websocket upgrades, so the JWT rides in a query parameter.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if _, err := middleware.ValidateToken(c.Query("token")); err != nil {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	})
	app.Get("/ws/updates", websocket.New(ws.Handler))

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
