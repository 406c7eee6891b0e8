package redis

import "fmt"

// KeyBuilder constructs environment-prefixed Redis keys so development and
// production can share one Redis instance without colliding.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder for the given environment
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development":
		prefix = "dev"
	case "test":
		prefix = "test"
	case "staging":
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey prepends the environment prefix to a key
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}
