package domain

import "errors"

// Fatal errors abort the whole run.
var (
	// ErrConfig reports an unusable dataset declaration or a missing original directory.
	ErrConfig = errors.New("config error")
	// ErrManifest reports a checksum manifest that could not be fetched or parsed.
	ErrManifest = errors.New("manifest error")
	// ErrTransfer reports a failed download.
	ErrTransfer = errors.New("transfer error")
	// ErrArchive reports a corrupt or unreadable archive.
	ErrArchive = errors.New("archive error")
	// ErrSizeMismatch reports a clean image whose size differs from its auxiliary artifact.
	ErrSizeMismatch = errors.New("image size mismatch")
)

// Non-fatal conditions are logged and counted.
var (
	// ErrChecksumMismatch reports an archive whose digest differs from the manifest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrCorrespondence reports an auxiliary artifact without a matching original file.
	ErrCorrespondence = errors.New("missing corresponding file")
)
