package version

// Version is the release of the autotrader binary, set at build time:
// -ldflags "-X github.com/rxtech-lab/argo-autotrader/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "v1.0.0"

// ConfigVersion is the config file schema this binary reads.
const ConfigVersion = "1.0"

// GetVersion returns the binary version.
func GetVersion() string {
	return Version
}
