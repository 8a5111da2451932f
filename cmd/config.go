package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string
	HTTPAddr string

	QuotesURL string

	TelegramApiToken string
	TelegramChatID   string

	LokiAddress string

	DB    *DB
	Mongo *Mongo
}

type DB struct {
	Host     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Mongo struct {
	Host     string
	User     string
	Password string
	DBName   string
}

var ErrEnvNotFound = errors.New("err env not found")

func (a *App) loadConfig(confFileName string) error {
	var cfg Config
	var db DB
	var mng Mongo

	err := godotenv.Load(confFileName)
	if err != nil {
		return err
	}

	if cfg.QuotesURL, err = cfg.set("QUOTES_URL"); err != nil {
		return err
	}

	if db.Host, err = cfg.set("PG_HOST"); err != nil {
		return err
	}

	if db.User, err = cfg.set("PG_USER"); err != nil {
		return err
	}

	if db.Password, err = cfg.set("PG_PASSWORD"); err != nil {
		return err
	}

	if db.DBName, err = cfg.set("PG_DBNAME"); err != nil {
		return err
	}

	if db.SSLMode, err = cfg.set("PG_SSL_MODE"); err != nil {
		return err
	}

	if mng.Host, err = cfg.set("MONGO_HOST"); err != nil {
		return err
	}

	if mng.User, err = cfg.set("MONGO_USER"); err != nil {
		return err
	}

	if mng.Password, err = cfg.set("MONGO_PASSWORD"); err != nil {
		return err
	}

	if mng.DBName, err = cfg.set("MONGO_DBNAME"); err != nil {
		return err
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	// telegram and loki are optional sinks
	cfg.TelegramApiToken = os.Getenv("TELEGRAM_API_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.LokiAddress = os.Getenv("LOKI_ADDRESS")

	cfg.DB = &db
	cfg.Mongo = &mng

	a.Config = &cfg

	return nil
}

func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode)
}

func (m *Mongo) DSN() string {
	return fmt.Sprintf("mongodb://%s", m.Host)
}

func (c *Config) set(key string) (string, error) {
	if os.Getenv(key) == "" {
		return "", ErrEnvNotFound
	}

	return os.Getenv(key), nil
}
