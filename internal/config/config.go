package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env           string
	TelegramToken string

	// DatabaseURL selects the postgres backend when set; otherwise
	// DatabasePath is used for sqlite.
	DatabaseURL  string
	DatabasePath string

	AdminIDs      []int64
	AdminChatID   int64
	SupportChatID int64

	SchedulePath string
	HTTPAddr     string
	SelfPingURL  string

	LogDir string
	Debug  bool
}

// Load loads configuration from environment variables. In the dev
// environment a .env file is read first if present.
func Load() (*Config, error) {
	env := getenv("ENV", "dev")
	if env == "dev" {
		_ = godotenv.Load()
		env = getenv("ENV", "dev")
	}

	adminIDs, err := parseIDList(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}

	adminChat, err := parseChatID("ADMIN_CHAT_ID")
	if err != nil {
		return nil, err
	}
	supportChat, err := parseChatID("SUPPORT_CHAT_ID")
	if err != nil {
		return nil, err
	}

	debug := false
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG: %w", err)
		}
	}

	return &Config{
		Env:           env,
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabasePath:  getenv("DATABASE_PATH", "./retro_bot.db"),
		AdminIDs:      adminIDs,
		AdminChatID:   adminChat,
		SupportChatID: supportChat,
		SchedulePath:  os.Getenv("SCHEDULE_PATH"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8000"),
		SelfPingURL:   strings.TrimSpace(os.Getenv("SELF_PING_URL")),
		LogDir:        getenv("LOG_DIR", "./logs"),
		Debug:         debug,
	}, nil
}

// Validate checks the settings the bot cannot run without
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseChatID(key string) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return id, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
