package version

import (
	"fmt"
	"strings"
	"sync"
)

// validCharacters is a list of characters valid in the appBuild string
const validCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

const (
	appMajor uint = 0
	appMinor uint = 3
	appPatch uint = 0
)

// appBuild is defined as a variable so it can be overridden during the build
// process with '-ldflags "-X github.com/kaspanet/stacklab/version.appBuild=foo"' if needed.
// It MUST only contain characters from validCharacters.
var appBuild string

var (
	version     string
	versionOnce sync.Once
)

// Version returns the application version as a properly formed string
func Version() string {
	versionOnce.Do(func() {
		version = formatVersion(appBuild)
	})
	return version
}

// formatVersion returns the semantic version followed by build, unless build
// is empty or contains invalid characters.
func formatVersion(build string) string {
	semver := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if !isValidBuild(build) {
		return semver
	}
	return fmt.Sprintf("%s-%s", semver, build)
}

// isValidBuild returns whether build is non-empty and only holds characters
// from validCharacters.
func isValidBuild(build string) bool {
	if build == "" {
		return false
	}
	for _, r := range build {
		if !strings.ContainsRune(validCharacters, r) {
			return false
		}
	}
	return true
}
