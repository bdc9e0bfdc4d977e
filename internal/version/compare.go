package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckProtocolCompatibility checks that a decision provider speaking providerVersion
// can serve a client speaking clientVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - The provider's minor version must be at least the client's
//   - Patch versions can differ
//
// Examples:
//   - Client 1.1.0, Provider 1.1.3 -> OK
//   - Client 1.1.0, Provider 1.4.0 -> OK (provider is newer)
//   - Client 1.2.0, Provider 1.1.0 -> ERROR (provider lacks fields the client sends)
//   - Client 1.1.0, Provider 2.0.0 -> ERROR (major differs)
func CheckProtocolCompatibility(clientVersion, providerVersion string) error {
	clientVersion = strings.TrimPrefix(clientVersion, "v")
	providerVersion = strings.TrimPrefix(providerVersion, "v")

	if clientVersion == "main" || providerVersion == "main" {
		return nil
	}

	client, err := semver.NewVersion(clientVersion)
	if err != nil {
		return fmt.Errorf("invalid client protocol version '%s': %w", clientVersion, err)
	}

	provider, err := semver.NewVersion(providerVersion)
	if err != nil {
		return fmt.Errorf("invalid provider protocol version '%s': %w", providerVersion, err)
	}

	if client.Major() != provider.Major() {
		return fmt.Errorf("major version mismatch: client speaks %d.x.x but provider speaks %d.x.x",
			client.Major(), provider.Major())
	}

	if provider.Minor() < client.Minor() {
		return fmt.Errorf("provider protocol %d.%d.x is older than client protocol %d.%d.x",
			provider.Major(), provider.Minor(), client.Major(), client.Minor())
	}

	return nil
}
