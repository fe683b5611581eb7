package assets

import "errors"

var (
	// ErrAssetNotFound means no source has the requested asset.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAssetName means the name is empty or has path characters.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath means an override directory cannot be opened.
	ErrInvalidBasePath = errors.New("invalid asset directory")

	// ErrAssetRead covers any other read failure, including attempts to
	// leave the override directory.
	ErrAssetRead = errors.New("failed to read asset")
)
