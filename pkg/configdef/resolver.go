package configdef

import (
	"errors"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
)

const InputPathEnv = "FRAMEGRAB_INPUT_IMAGE_PATH"

var ErrConfigAlreadyExists = errors.New("config file already exists")

type Resolver interface {
	Resolve() (Values, error)
}

type Creator interface {
	Create() (string, error)
}

// ResolveInputPath picks the directory to read a disk sequence from. An
// explicit value always wins over the environment default, which lookup
// is asked for exactly once.
func ResolveInputPath(explicit string, lookup func(string) (string, bool)) (string, error) {
	env, hasEnv := "", false
	if lookup != nil {
		env, hasEnv = lookup(InputPathEnv)
		hasEnv = hasEnv && len(env) > 0
	}

	if len(explicit) > 0 {
		if hasEnv && env != explicit {
			log.Warn("Input directory [%s] overrides %s [%s]", explicit, InputPathEnv, env)
		}
		return explicit, nil
	}
	if hasEnv {
		return env, nil
	}

	return "", frame.NewError(
		frame.OpConfigure, "input",
		xerror.Errorf("%w: no input directory given and %s is not set", frame.ErrConfiguration, InputPathEnv),
	)
}
