package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	AppName     = "amazon-link-bot"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// requiredEnvVars must be non-empty for the bot to start. AMAZON_TAG is
// deliberately not listed: a missing affiliate tag degrades links but does
// not prevent the bot from working.
var requiredEnvVars = []string{"BOT_TOKEN", "GEMINI_API_KEY"}

// CheckRequired returns the names of any required environment variables that
// are not set.
func CheckRequired() []string {
	var missing []string
	for _, v := range requiredEnvVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}
