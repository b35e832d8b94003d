package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/configdef"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
	"gopkg.in/yaml.v3"
)

const (
	vendorName     = "tacusci"
	appName        = "framegrab"
	configFileName = "config.json"
	configPathEnv  = "FRAMEGRAB_CONFIG"
)

var fs afero.Fs = afero.NewOsFs()

// load reads the config file at path over the defaults. A file which
// does not exist leaves the defaults in place.
func load(path string) (configdef.Values, error) {
	values := configdef.Default()

	if len(path) == 0 {
		resolved, err := resolveConfigPath()
		if err != nil {
			return configdef.Values{}, err
		}
		path = resolved
	}

	log.Info("Resolved config file location: %s", path)
	file, err := readConfigFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return configdef.Values{}, xerror.Errorf("unable to read config file %s: %w", path, err)
		}
		log.Info("No config file at %s, using defaults", path)
		file = nil
	}

	if len(file) > 0 {
		if err := unmarshal(path, file, &values); err != nil {
			return configdef.Values{}, err
		}
	}

	if err := values.RunValidate(); err != nil {
		return configdef.Values{}, err
	}

	return values, nil
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(path string, content []byte, values *configdef.Values) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, values); err != nil {
			return pkgerrors.Errorf("parsing configuration error: %v", err)
		}
	default:
		if err := json.Unmarshal(content, values); err != nil {
			return pkgerrors.Errorf("parsing configuration error: %v", err)
		}
	}
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath, ok := lookupEnv(configPathEnv); ok && len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var lookupEnv = os.LookupEnv

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}
