package profile

import (
	"os"

	"github.com/davialcantara/selah/internal/config"
)

const DefaultName = "default"

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. SELAH_PROFILE environment variable
// 3. config.toml default_profile
// 4. "default"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if env := os.Getenv("SELAH_PROFILE"); env != "" {
		return env
	}
	cfg, err := config.Load(ConfigPath())
	if err == nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultName
}
