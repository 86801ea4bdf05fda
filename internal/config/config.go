package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Database struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"database"`
}

type Rabbit struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
}

type Server struct {
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type App struct {
	Database Database `yaml:"database"`
	Rabbit   Rabbit   `yaml:"rabbitmq"`
	Server   Server   `yaml:"server"`
	Auth     Auth     `yaml:"auth"`
}

// Load reads a two-level yaml config (section: then key: value lines) and
// applies environment overrides on top. A .env file next to the binary is
// honored when present.
func Load(path string) (App, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, err
	}
	var a App
	var cur string
	for _, ln := range strings.Split(string(b), "\n") {
		line := strings.TrimSpace(ln)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") {
			cur = strings.TrimSuffix(line, ":")
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		assign(&a, cur, k, v)
	}

	applyEnv(&a)

	if a.Database.Host == "" || a.Rabbit.Host == "" {
		return App{}, errors.New("invalid config: missing database/rabbitmq host")
	}
	if a.Server.Port == 0 {
		a.Server.Port = 3000
	}
	return a, nil
}

func assign(a *App, section, k, v string) {
	switch section {
	case "database":
		switch k {
		case "host":
			a.Database.Host = v
		case "port":
			a.Database.Port = atoi(v)
		case "user":
			a.Database.User = v
		case "password":
			a.Database.Pass = v
		case "database":
			a.Database.Name = v
		}
	case "rabbitmq":
		switch k {
		case "host":
			a.Rabbit.Host = v
		case "port":
			a.Rabbit.Port = atoi(v)
		case "user":
			a.Rabbit.User = v
		case "password":
			a.Rabbit.Pass = v
		}
	case "server":
		switch k {
		case "port":
			a.Server.Port = atoi(v)
		case "allowed_origin":
			a.Server.AllowedOrigin = v
		}
	case "auth":
		if k == "jwt_secret" {
			a.Auth.JWTSecret = v
		}
	}
}

func applyEnv(a *App) {
	a.Database.Host = getEnv("DATABASE_HOST", a.Database.Host)
	a.Database.User = getEnv("DATABASE_USER", a.Database.User)
	a.Database.Pass = getEnv("DATABASE_PASSWORD", a.Database.Pass)
	a.Database.Name = getEnv("DATABASE_NAME", a.Database.Name)
	a.Rabbit.Host = getEnv("RABBITMQ_HOST", a.Rabbit.Host)
	a.Rabbit.User = getEnv("RABBITMQ_USER", a.Rabbit.User)
	a.Rabbit.Pass = getEnv("RABBITMQ_PASSWORD", a.Rabbit.Pass)
	a.Auth.JWTSecret = getEnv("JWT_SECRET", a.Auth.JWTSecret)
	if p, ok := os.LookupEnv("DATABASE_PORT"); ok {
		a.Database.Port = atoi(p)
	}
	if p, ok := os.LookupEnv("RABBITMQ_PORT"); ok {
		a.Rabbit.Port = atoi(p)
	}
	if p, ok := os.LookupEnv("SERVER_PORT"); ok {
		a.Server.Port = atoi(p)
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// FindConfig probes the default config locations.
func FindConfig() (string, error) {
	for _, p := range []string{"config.yaml", "deploy/config.example.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
