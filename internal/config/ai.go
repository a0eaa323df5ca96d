package config

import (
	"fmt"
	"github.com/spf13/viper"
)

// AIConfig содержит настройки Gemini для голосовых интервью и анализа резюме
type AIConfig struct {
	APIKey        string `mapstructure:"GOOGLE_API_KEY"`
	LiveModel     string `mapstructure:"LIVE_MODEL"`
	FeedbackModel string `mapstructure:"FEEDBACK_MODEL"`
	VoiceName     string `mapstructure:"VOICE_NAME"`
}

func NewAIConfig(path string) (*AIConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.BindEnv("GOOGLE_API_KEY", "GOOGLE_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg AIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = v.GetString("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	// Установка значений по умолчанию
	if cfg.LiveModel == "" {
		cfg.LiveModel = "gemini-2.0-flash-live-001"
	}
	if cfg.FeedbackModel == "" {
		cfg.FeedbackModel = "gemini-2.5-pro"
	}
	if cfg.VoiceName == "" {
		cfg.VoiceName = "Puck"
	}

	return &cfg, nil
}
