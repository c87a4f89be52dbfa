package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string `mapstructure:"ENV"`
	Port              string `mapstructure:"PORT"`
	DBPath            string `mapstructure:"DB_PATH"`
	CORSOrigins       string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	PokemonAPIKey     string `mapstructure:"POKEMON_TCG_API_KEY"`
	PokemonAPIBaseURL string `mapstructure:"POKEMON_TCG_BASE_URL"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_PATH", "./cardvault.db")
	viper.SetDefault("POKEMON_TCG_BASE_URL", "https://api.pokemontcg.io/v2")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
	return &cfg
}

// AllowedOrigins splits the configured CORS origin list, falling back to
// the local dev frontends.
func (c *Config) AllowedOrigins() []string {
	if c.CORSOrigins == "" {
		return []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return strings.Split(c.CORSOrigins, ",")
}
