package config

import (
	"github.com/tauraamui/framegrab/pkg/configdef"
)

func DefaultResolver() configdef.Resolver {
	return pathResolver{}
}

// PathResolver loads from path instead of the resolved default location.
func PathResolver(path string) configdef.Resolver {
	return pathResolver{path: path}
}

type pathResolver struct {
	path string
}

func (p pathResolver) Resolve() (configdef.Values, error) {
	return load(p.path)
}
