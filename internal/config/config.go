package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"Server"`
	Database   DatabaseConfig   `mapstructure:"Database"`
	Repository RepositoryConfig `mapstructure:"Repository"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

// RepositoryConfig выбирает путь доступа к метаданным: direct идет
// напрямую в Postgres через sqlx, gateway ходит через GraphQL-шлюз
type RepositoryConfig struct {
	Mode          string `mapstructure:"Mode"`
	GatewayURL    string `mapstructure:"GatewayURL"`
	GatewaySecret string `mapstructure:"GatewaySecret"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	// Устанавливаем файл конфигурации
	v.SetConfigFile(path)

	// Привязываем переменные окружения
	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Repository.Mode", "REPOSITORY_MODE")
	v.BindEnv("Repository.GatewayURL", "GATEWAY_URL")
	v.BindEnv("Repository.GatewaySecret", "GATEWAY_SECRET")

	// Читаем конфигурацию из файла
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Проверяем переменные окружения напрямую если конфигурация неполная
	if cfg.Database.Host == "" {
		cfg.Database.Host = v.GetString("DATABASE_HOST")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = v.GetString("DATABASE_PORT")
	}
	if cfg.Database.User == "" {
		cfg.Database.User = v.GetString("DATABASE_USER")
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = v.GetString("DATABASE_NAME")
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = v.GetString("HTTP_PORT")
	}

	// Установка значений по умолчанию
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "2525"
	}
	if cfg.Repository.Mode == "" {
		cfg.Repository.Mode = "direct"
	}

	if cfg.Repository.Mode != "direct" && cfg.Repository.Mode != "gateway" {
		return nil, fmt.Errorf("unknown repository mode: %s", cfg.Repository.Mode)
	}
	if cfg.Repository.Mode == "gateway" && cfg.Repository.GatewayURL == "" {
		return nil, fmt.Errorf("GatewayURL is required in gateway mode")
	}

	// Прямому режиму нужна полная конфигурация базы
	if cfg.Repository.Mode == "direct" {
		if cfg.Database.Host == "" ||
			cfg.Database.Port == "" ||
			cfg.Database.User == "" ||
			cfg.Database.Password == "" ||
			cfg.Database.Name == "" {
			return nil, fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
		}
	}

	return &cfg, nil
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}
