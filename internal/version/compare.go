package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// CheckConfigCompatibility reports whether a config file written for configVersion can be
// read by a binary supporting supportedVersion.
//
// Major and minor must match; the patch may differ. "main" on either side skips the check.
//
//   - supported 1.0, config 1.0.3 -> OK
//   - supported 1.1, config 1.0   -> ERROR (minor differs)
//   - supported 2.0, config 1.0   -> ERROR (major differs)
func CheckConfigCompatibility(supportedVersion, configVersion string) error {
	supportedVersion = strings.TrimPrefix(supportedVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if supportedVersion == "main" || configVersion == "main" {
		return nil
	}

	supported, err := semver.NewVersion(supportedVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid supported config version '%s'", supportedVersion)
	}

	configured, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if supported.Major() != configured.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: binary reads config %d.x but the file is %d.x",
			supported.Major(), configured.Major())
	}

	if supported.Minor() != configured.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: binary reads config %d.%d but the file is %d.%d",
			supported.Major(), supported.Minor(), configured.Major(), configured.Minor())
	}

	return nil
}
