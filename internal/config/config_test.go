package config

import (
	"reflect"
	"testing"
)

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	keys := []string{
		"ENV", "TELEGRAM_BOT_TOKEN", "DATABASE_URL", "DATABASE_PATH", "ADMIN_IDS",
		"ADMIN_CHAT_ID", "SUPPORT_CHAT_ID", "SCHEDULE_PATH", "HTTP_ADDR",
		"SELF_PING_URL", "LOG_DIR", "DEBUG",
	}
	for _, k := range keys {
		t.Setenv(k, vars[k])
	}
	// Keep a stray .env in the working directory out of the test.
	if _, ok := vars["ENV"]; !ok {
		t.Setenv("ENV", "test")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Env != "test" {
		t.Errorf("Env = %q, want %q", cfg.Env, "test")
	}
	if cfg.DatabasePath != "./retro_bot.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogDir != "./logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if len(cfg.AdminIDs) != 0 || cfg.AdminChatID != 0 || cfg.SupportChatID != 0 {
		t.Errorf("unexpected admin settings: %+v", cfg)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() returned nil error without token")
	}
}

func TestLoadValues(t *testing.T) {
	setEnv(t, map[string]string{
		"ENV":                "prod",
		"TELEGRAM_BOT_TOKEN": "token",
		"DATABASE_URL":       "postgres://retro@localhost/retro",
		"ADMIN_IDS":          " 11, 22 ,,33",
		"ADMIN_CHAT_ID":      "-1001",
		"SUPPORT_CHAT_ID":    "-1002",
		"SCHEDULE_PATH":      "/etc/retro/schedule.toml",
		"SELF_PING_URL":      " https://retro.example.com/health ",
		"DEBUG":              "true",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if want := []int64{11, 22, 33}; !reflect.DeepEqual(cfg.AdminIDs, want) {
		t.Errorf("AdminIDs = %v, want %v", cfg.AdminIDs, want)
	}
	if cfg.AdminChatID != -1001 || cfg.SupportChatID != -1002 {
		t.Errorf("chat ids = %d, %d", cfg.AdminChatID, cfg.SupportChatID)
	}
	if cfg.SelfPingURL != "https://retro.example.com/health" {
		t.Errorf("SelfPingURL = %q", cfg.SelfPingURL)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned error: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"admin ids", map[string]string{"ADMIN_IDS": "11,abc"}},
		{"admin chat", map[string]string{"ADMIN_CHAT_ID": "chat"}},
		{"support chat", map[string]string{"SUPPORT_CHAT_ID": "1.5"}},
		{"debug", map[string]string{"DEBUG": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.vars)
			if _, err := Load(); err == nil {
				t.Error("Load() returned nil error")
			}
		})
	}
}
