package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks whether a config file written for configVersion
// can be used by a binary at binaryVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - The binary's minor version must be at least the config's
//   - Patch versions can differ
//
// Examples:
//   - Binary 1.2.0, Config 1.2.0 -> OK
//   - Binary 1.3.0, Config 1.2.0 -> OK (newer binary reads older config)
//   - Binary 1.2.0, Config 1.3.0 -> ERROR (config needs a newer binary)
//   - Binary 2.0.0, Config 1.2.0 -> ERROR (major differs)
func CheckVersionCompatibility(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	binarySemver, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return fmt.Errorf("invalid binary version '%s': %w", binaryVersion, err)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	if binarySemver.Major() != configSemver.Major() {
		return fmt.Errorf("major version mismatch: binary is %d.x.x but config requires %d.x.x",
			binarySemver.Major(), configSemver.Major())
	}

	if binarySemver.Minor() < configSemver.Minor() {
		return fmt.Errorf("config requires %d.%d.x or newer but binary is %s",
			configSemver.Major(), configSemver.Minor(), binarySemver.String())
	}

	return nil
}
