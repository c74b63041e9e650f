package pinevoice

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is the current SDK version.
//
// This version follows semantic versioning (https://semver.org/).
const Version = "0.1.0"

// APIVersion is the gateway API version this SDK targets (the /api/v2
// surface).
const APIVersion = "2.0.0"

// APIVersionRange is the range of gateway API versions this SDK is expected
// to work with.
const APIVersionRange = ">= 2.0.0, < 3.0.0"

// IsCompatible reports whether a gateway version falls inside
// [APIVersionRange]. Unparseable versions are reported incompatible.
func IsCompatible(version string) bool {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false
	}
	constraint, err := semver.NewConstraint(APIVersionRange)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
