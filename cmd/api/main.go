package main

import (
	"log"
	"os"

	_ "github.com/devifai-2026/mechanic-backend-sub000/api/swagger" // swagger docs
	"github.com/devifai-2026/mechanic-backend-sub000/internal/database"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/handler"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/middleware"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/service"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Site Operations API
// @version         1.0
// @description     Approval workflow, billing linkage and stock ledger for site operations.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Strict gating requires every preceding stage to be approved before a
	// document shows up in the next approver's queue. Off by default: a later
	// approver may act while an earlier stage is still pending.
	strictGate := os.Getenv("WORKFLOW_STRICT_GATE") == "true"

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	identityRepo := repository.NewIdentityRepository(db)
	decisionRepo := repository.NewDecisionLogRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	stockRepo := repository.NewStockRepository(db)

	requisitionRepo := repository.NewDocumentRepository[model.DieselRequisition](db, &model.DieselRequisitionItem{}, "requisition_id")
	receiptRepo := repository.NewDocumentRepository[model.DieselReceipt](db, &model.DieselReceiptItem{}, "receipt_id")
	consumptionRepo := repository.NewDocumentRepository[model.ConsumptionSheet](db, &model.ConsumptionSheetItem{}, "sheet_id")
	maintenanceRepo := repository.NewDocumentRepository[model.MaintenanceSheet](db, &model.MaintenanceSheetItem{}, "sheet_id")
	materialRepo := repository.NewDocumentRepository[model.MaterialTransaction](db, &model.MaterialTransactionItem{}, "transaction_id")
	equipmentRepo := repository.NewDocumentRepository[model.EquipmentTransaction](db, &model.EquipmentTransactionItem{}, "transaction_id")

	docCfg := service.DocumentServiceConfig{StrictGate: strictGate}
	// New requisitions are pushed to approvers over the websocket feed.
	requisitionCfg := service.DocumentServiceConfig{StrictGate: strictGate, NotifyOnCreate: true}

	requisitionService := service.NewDocumentService(requisitionRepo, identityRepo, decisionRepo, txManager, wsHub, requisitionCfg)
	receiptService := service.NewDocumentService(receiptRepo, identityRepo, decisionRepo, txManager, wsHub, docCfg)
	consumptionService := service.NewDocumentService(consumptionRepo, identityRepo, decisionRepo, txManager, wsHub, docCfg)
	maintenanceService := service.NewDocumentService(maintenanceRepo, identityRepo, decisionRepo, txManager, wsHub, docCfg)
	materialService := service.NewDocumentService(materialRepo, identityRepo, decisionRepo, txManager, wsHub, docCfg)
	equipmentService := service.NewDocumentService(equipmentRepo, identityRepo, decisionRepo, txManager, wsHub, docCfg)

	billingService := service.NewBillingService(billingRepo, materialRepo, receiptRepo, identityRepo, txManager)
	stockService := service.NewStockService(stockRepo, identityRepo, txManager)

	// Initialize Handlers
	requisitionHandler := handler.NewDocumentHandler("diesel-requisitions", requisitionService)
	receiptHandler := handler.NewDocumentHandler("diesel-receipts", receiptService)
	consumptionHandler := handler.NewDocumentHandler("consumption-sheets", consumptionService)
	maintenanceHandler := handler.NewDocumentHandler("maintenance-sheets", maintenanceService)
	materialHandler := handler.NewDocumentHandler("material-transactions", materialService)
	equipmentHandler := handler.NewDocumentHandler("equipment-transactions", equipmentService)
	billingHandler := handler.NewBillingHandler(billingService)
	stockHandler := handler.NewStockHandler(stockService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	requisitionHandler.RegisterRoutes(router.Group(""))
	receiptHandler.RegisterRoutes(router.Group(""))
	consumptionHandler.RegisterRoutes(router.Group(""))
	maintenanceHandler.RegisterRoutes(router.Group(""))
	materialHandler.RegisterRoutes(router.Group(""))
	equipmentHandler.RegisterRoutes(router.Group(""))
	billingHandler.RegisterRoutes(router.Group(""))
	stockHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
