package version

// Version is the current version of argo-gate.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-gate/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// ProtocolVersion is the version of the remote decision provider protocol this build speaks.
const ProtocolVersion = "1.1.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
