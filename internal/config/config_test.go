package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Port:               "3000",
			BaseURL:            "http://localhost:3000",
			ClientURL:          "http://localhost:5173",
			Environment:        "development",
			LogFilePath:        "app.log.csv",
			CorsAllowedOrigins: "http://localhost:5173",
			EventTopic:         "WORKFLOW_EVENTS",
		},
		Database: DatabaseConfig{Connection: "postgres://localhost:5432/grants"},
		Ai:       AIConfig{LLMProvider: "ollama", LLMModel: "llama3"},
		Session:  SessionConfig{Backend: "memory", TTLMinutes: 60},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing db connection", func(c *Config) { c.Database.Connection = "" }},
		{"unknown llm provider", func(c *Config) { c.Ai.LLMProvider = "gpt4all" }},
		{"unknown session backend", func(c *Config) { c.Session.Backend = "dynamo" }},
		{"non-numeric port", func(c *Config) { c.App.Port = "http" }},
		{"zero session ttl", func(c *Config) { c.Session.TTLMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
