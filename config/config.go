package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`

	DBHost string `json:"dbhost"`
	DBPort uint16 `json:"dbport"`
	DBName string `json:"dbname"`
	DBUser string `json:"dbuser"`
	DBPass string `json:"dbpass"`

	// Fabric network settings.
	CCPPath       string `json:"ccppath"`
	WalletPath    string `json:"walletpath"`
	Channel       string `json:"channel"`
	Chaincode     string `json:"chaincode"`
	AdminIdentity string `json:"adminidentity"`
	AuditIdentity string `json:"auditidentity"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env file is fine when the process environment is already populated.
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		// Initialize the Config struct with values from environment variables.
		config = &Config{
			AppName:       os.Getenv("APPNAME"),
			AppEnv:        os.Getenv("APPENV"),
			AppPort:       uint16(appPort),
			GinMode:       os.Getenv("GINMODE"),
			DBHost:        os.Getenv("DBHOST"),
			DBPort:        uint16(dbPort),
			DBName:        os.Getenv("DBNAME"),
			DBUser:        os.Getenv("DBUSER"),
			DBPass:        os.Getenv("DBPASS"),
			CCPPath:       getEnvDefault("CCPPATH", "connection-profile.json"),
			WalletPath:    getEnvDefault("WALLETPATH", "wallet"),
			Channel:       getEnvDefault("CHANNEL", "healthcarechannel"),
			Chaincode:     getEnvDefault("CHAINCODE", "healthcare"),
			AdminIdentity: getEnvDefault("ADMINIDENTITY", "admin"),
			AuditIdentity: getEnvDefault("AUDITIDENTITY", "auditOrgAdmin"),
		}
	})
	return config
}

func getEnvDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// In the test environment an in-memory sqlite database is used instead so test
// suites do not require a running MySQL server.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	if cfg.AppEnv == "test" || os.Getenv("APPENV") == "test" {
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	}

	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	// Open a database connection.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
