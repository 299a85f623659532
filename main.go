package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"allowance-system/handlers"
	"allowance-system/middleware"
	"allowance-system/models"
	"allowance-system/services"
	"allowance-system/utils"
	"allowance-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatar and receipt images only
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Role",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if !utils.R2Enabled() {
		log.Println("⚠️  R2 not configured — uploads will be stored locally")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Family{},
		&models.Child{},
		&models.Transaction{},
		&models.SavingsGoal{},
		&models.Task{},
		&models.BadgeDefinition{},
		&models.BadgeProgress{},
		&models.BadgeAward{},
		&models.RewardItem{},
		&models.RewardUnlock{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedDefaultBadges(db); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}
	if err := services.SeedDefaultRewards(db); err != nil {
		log.Fatal("failed to seed reward catalog:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	catalog, err := services.LoadBadgeCatalog(db)
	if err != nil {
		log.Fatal("failed to load badge catalog:", err)
	}

	notificationService := services.NewNotificationService(db)
	achievementService := services.NewAchievementService(db, catalog, notificationService)
	rewardService := services.NewRewardService(db, notificationService)
	childService := services.NewChildService(db, achievementService)
	transactionService := services.NewTransactionService(db, achievementService, notificationService)
	goalService := services.NewGoalService(db, achievementService, notificationService)
	taskService := services.NewTaskService(db, achievementService, notificationService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily-ish sweep zeroing streaks that missed a weekly period
	streakClient := workers.NewStreakResetClient(db)
	go workers.PollStreaks(ctx, streakClient, 6*time.Hour)

	transactionService.StartAllowanceScheduler()

	handlers.SetupChildRoutes(app, childService)
	handlers.SetupTransactionRoutes(app, transactionService)
	handlers.SetupGoalRoutes(app, goalService)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupAchievementRoutes(app, achievementService)
	handlers.SetupRewardRoutes(app, rewardService)
	handlers.SetupNotificationRoutes(app, notificationService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Allowance scheduler running (hourly payday sweep, Sunday period close)")
	log.Println("✅ Streak reset worker running (every 6h)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
