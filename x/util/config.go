package util

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
)

// Config is Forge relay base configuration
type Config struct {
	Server Server `yaml:"server"`
	Forge  Forge  `yaml:"forge"`
}

type Server struct {
	Port          int    `yaml:"port"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Forge struct {
	// EventChannel is the redis pub/sub channel record change events travel on.
	EventChannel string `yaml:"eventChannel"`
	// AllowedOrigins restricts the HTTP surface. Empty means any origin.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Load loads relay config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Forge.EventChannel == "" {
		c.Forge.EventChannel = "candymachines"
	}

	return nil
}
