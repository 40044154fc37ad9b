// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medichain/healthcare-backend/config"
	"github.com/medichain/healthcare-backend/endpoint"
	"github.com/medichain/healthcare-backend/fabric"
	"github.com/medichain/healthcare-backend/middleware"
	"github.com/medichain/healthcare-backend/model"
	"github.com/medichain/healthcare-backend/util"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()
	util.SetJWTSecret(os.Getenv("JWTSECRET"))

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(&model.Patient{}, &model.Doctor{}, &model.SecurityLog{}); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	// Redis is optional; rate limiting degrades to allow-all without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, login rate limiting disabled: %v", err)
	}

	sessions := fabric.NewSessionManager(fabric.Options{
		CCPPath:    cfg.CCPPath,
		WalletPath: cfg.WalletPath,
		Channel:    cfg.Channel,
		Chaincode:  cfg.Chaincode,
	})
	defer sessions.ReleaseAll()

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.LedgerMiddleware(sessions))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.AppName,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	loginLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})
	auth := router.Group("/api/auth")
	{
		auth.POST("/login/patient", loginLimiter, endpoint.LoginPatient)
		auth.POST("/login/doctor", loginLimiter, endpoint.LoginDoctor)
	}

	patient := router.Group("/api/patient")
	{
		patient.POST("/register", endpoint.RegisterPatient)
		patient.GET("/:patientID", middleware.AuthMiddleware(), endpoint.GetPatient)
	}

	doctor := router.Group("/api/doctor")
	{
		doctor.POST("/register", endpoint.RegisterDoctor)
		doctor.GET("/:doctorID", middleware.AuthMiddleware(), endpoint.GetDoctor)
	}

	access := router.Group("/api/access", middleware.AuthMiddleware())
	{
		access.POST("/verify/:doctorID", endpoint.VerifyDoctor)
		access.POST("/grant", endpoint.GrantAccess)
		access.POST("/revoke", endpoint.RevokeAccess)
		access.GET("/check/:accessKey", endpoint.CheckAccess)
		access.GET("/patient/:patientID", endpoint.ListPatientAccess)
		access.GET("/audit/:patientID", endpoint.AuditTrail)
	}

	// Tear ledger sessions down on SIGINT/SIGTERM before exiting.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		sessions.ReleaseAll()
		os.Exit(0)
	}()

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
