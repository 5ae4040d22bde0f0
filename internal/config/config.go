package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/rideready/rideready/internal/domain"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
}

type NodeInfo struct {
	FQDN string `yaml:"fqdn"`
	// TokenSecret signs session tokens and media URLs.
	TokenSecret string `yaml:"tokenSecret"`
	// APIKeyHash is the bcrypt hash of the public read-access key.
	APIKeyHash string `yaml:"apiKeyHash"`
	// MediaURLTTLSeconds bounds issued retrieval URL lifetimes. 900 if unset.
	MediaURLTTLSeconds int `yaml:"mediaURLTTLSeconds"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	MediaDir      string `yaml:"mediaDir"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.NodeInfo.MediaURLTTLSeconds == 0 {
		config.NodeInfo.MediaURLTTLSeconds = 900
	}
	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	return config, nil
}

// Domain projects the request-path configuration.
func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:               c.NodeInfo.FQDN,
		TokenSecret:        c.NodeInfo.TokenSecret,
		APIKeyHash:         c.NodeInfo.APIKeyHash,
		MediaURLTTLSeconds: c.NodeInfo.MediaURLTTLSeconds,
	}
}
