package config

import (
	"github.com/tauraamui/framegrab/internal/config"
	"github.com/tauraamui/framegrab/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
