package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	BotToken string // Discord bot token, shared by the gateway session and the REST helpers

	FirebaseCredentialsJSON string // inline service-account JSON
	FirebaseCredentialsFile string // or a path to one

	TicketsCollection string
	ServersCollection string

	ArchiveDBName string // sqlite file for closed-ticket transcripts

	// OutboxSweepSpec is a cron spec for re-scanning staff replies that were
	// never marked delivered (crash between render and flag write).
	OutboxSweepSpec string

	EmailSender string
	Password    string // SMTP Password
	StaffEmail  string // optional: notified when a new ticket opens
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		BotToken: getEnv("DISCORD_BOT_TOKEN", ""),

		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		TicketsCollection: getEnv("FIRESTORE_TICKETS_COLLECTION", "tickets"),
		ServersCollection: getEnv("FIRESTORE_SERVERS_COLLECTION", "servers"),

		ArchiveDBName: getEnv("ARCHIVE_DB_NAME", "tickethub-archive.db"),

		OutboxSweepSpec: getEnv("OUTBOX_SWEEP_SPEC", "*/5 * * * *"),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),
		StaffEmail:  getEnv("STAFF_EMAIL", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.BotToken == "" {
		log.Println("Warning: DISCORD_BOT_TOKEN is not set. The bot cannot connect without it.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
