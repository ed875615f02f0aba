package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// MaxUploadFiles caps how many files one multipart submission may carry.
const MaxUploadFiles = 10

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	Storage       string // "mongo" (default) or "memory"
	CloudinaryURL string
}

// Load reads .env (if present) and the environment. JWT_SECRET is the
// only hard requirement; mongo settings are checked where they are used.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		MongoURI:      os.Getenv("MONGO_URI"),
		DBName:        getenv("DB_NAME", "compilex"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Storage:       getenv("STORAGE", "mongo"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
