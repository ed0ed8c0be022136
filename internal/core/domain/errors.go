package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidConstraint is returned when a requirement expression cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrInvalidManifest is returned when a manifest file cannot be read or decoded.
	ErrInvalidManifest = zerr.New("invalid package manifest")

	// ErrValidation is returned when a manifest fails validation.
	// The concrete error is a *ValidationError carrying every problem found.
	ErrValidation = zerr.New("manifest validation failed")

	// ErrUnresolved is returned when no known version satisfies a constraint.
	ErrUnresolved = zerr.New("no version satisfies constraint")

	// ErrNotFound is returned when the registry has no record of a package or version.
	ErrNotFound = zerr.New("package not found")

	// ErrVerification is returned when a downloaded archive does not match the requested package.
	ErrVerification = zerr.New("package verification failed")

	// ErrCorruptArchive is returned when an archive is not a well-formed package archive.
	ErrCorruptArchive = zerr.New("corrupt package archive")

	// ErrPermission is returned when the filesystem or the registry denies access.
	ErrPermission = zerr.New("permission denied")

	// ErrNetwork is returned for transient transport failures after retries are exhausted.
	ErrNetwork = zerr.New("network error")

	// ErrCyclicDependency is returned when the dependency graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrNotLoggedIn is returned when a registry operation requires a session and none is available.
	ErrNotLoggedIn = zerr.New("not logged in")

	// ErrLoginFailed is returned when the registry rejects the supplied credentials.
	ErrLoginFailed = zerr.New("login failed")

	// ErrEmptyResult is returned when a listing has nothing to report.
	ErrEmptyResult = zerr.New("no packages found")

	// ErrUnpackConflict is returned when a different package already occupies an unpack target.
	ErrUnpackConflict = zerr.New("unpack target already holds a different package")

	// ErrProjectNotFound is returned when no project manifest exists in the directory tree.
	ErrProjectNotFound = zerr.New("could not find parcel.yaml")

	// ErrNoPackagesSpecified is returned when a command needs package names and got none.
	ErrNoPackagesSpecified = zerr.New("no packages specified")

	// ErrCacheCreateFailed is returned when the cache root cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create package cache")

	// ErrCacheReadFailed is returned when a cache entry cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read from package cache")

	// ErrCacheWriteFailed is returned when a cache entry cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write to package cache")

	// ErrRegistryRequestFailed is returned when a registry request fails permanently.
	ErrRegistryRequestFailed = zerr.New("registry request failed")

	// ErrRegistryParseFailed is returned when a registry response cannot be decoded.
	ErrRegistryParseFailed = zerr.New("failed to parse registry response")

	// ErrConfigLoadFailed is returned when settings cannot be loaded.
	ErrConfigLoadFailed = zerr.New("failed to load settings")

	// ErrBatchFailed is returned when one or more packages of a batch failed.
	// Individual failures are reported separately.
	ErrBatchFailed = zerr.New("one or more packages failed")
)

// Fail wraps kind with a message and metadata key/value pairs.
// The kind stays in the unwrap chain, so errors.Is(err, kind) holds for the result.
func Fail(kind error, msg string, keyvals ...any) error {
	err := zerr.Wrap(kind, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		err = zerr.With(err, key, keyvals[i+1])
	}
	return err
}
