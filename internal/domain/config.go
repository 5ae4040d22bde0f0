package domain

// Config is the subset of server configuration the request path needs.
type Config struct {
	FQDN string `yaml:"fqdn"`
	// TokenSecret signs session tokens and media URLs.
	TokenSecret string `yaml:"tokenSecret"`
	// APIKeyHash is the bcrypt hash of the public read-access key.
	APIKeyHash string `yaml:"apiKeyHash"`
	// MediaURLTTLSeconds bounds the lifetime of issued retrieval URLs.
	MediaURLTTLSeconds int `yaml:"mediaURLTTLSeconds"`
}
