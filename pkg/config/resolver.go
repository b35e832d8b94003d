package config

import (
	"github.com/tauraamui/framegrab/internal/config"
	"github.com/tauraamui/framegrab/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}

// FileResolver loads the config file at path. An empty path falls back
// to the default location.
func FileResolver(path string) Resolver {
	if len(path) == 0 {
		return DefaultResolver()
	}
	return config.PathResolver(path)
}
