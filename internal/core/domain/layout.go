package domain

import "path/filepath"

const (
	// ParcelDirName is the name of the per-project workspace directory.
	ParcelDirName = ".parcel"

	// DepsDirName is the directory under ParcelDirName holding unpacked dependencies.
	DepsDirName = "deps"

	// ManifestFileName is the name of the project and package manifest.
	ManifestFileName = "parcel.yaml"

	// ArchiveExt is the extension of package archives.
	ArchiveExt = ".pkg"

	// ArchiveManifestName is the manifest entry inside a package archive.
	ArchiveManifestName = "manifest.yaml"

	// ArchiveFilesDir is the prefix of payload entries inside a package archive.
	ArchiveFilesDir = "files"

	// CacheArchiveName is the archive file inside a cache entry.
	CacheArchiveName = "package" + ArchiveExt

	// CacheContentsDir is the extracted payload inside a cache entry.
	CacheContentsDir = "contents"

	// CacheMetaName is the metadata record inside a cache entry.
	CacheMetaName = "meta.json"

	// StagingDirName is the directory under the cache root where entries are assembled.
	StagingDirName = ".staging"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DepsPath returns the directory dependencies of the project rooted at root are unpacked into.
func DepsPath(root string) string {
	return filepath.Join(root, ParcelDirName, DepsDirName)
}

// DebugLogPath returns the debug log location under the cache root.
func DebugLogPath(cacheDir string) string {
	return filepath.Join(cacheDir, DebugLogFile)
}

// ArchiveName returns the file name of the archive built for id.
// The platform suffix is omitted for platform independent packages.
func ArchiveName(id PackageID) string {
	base := id.Name + "-" + id.Version.String()
	if p := id.platform(); p != PlatformAny {
		base += "-" + p
	}
	return base + ArchiveExt
}

// UnpackDirName returns the directory name a package is extracted into.
func UnpackDirName(id PackageID) string {
	return id.Name + "-" + id.Version.String()
}
