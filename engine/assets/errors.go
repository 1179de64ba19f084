package assets

import "errors"

var (
	ErrInvalidPath        = errors.New("invalid asset path")
	ErrNoLoader           = errors.New("no loader registered for asset extension")
	ErrLoaderExists       = errors.New("a loader is already registered for extension")
	ErrUnknownAssetType   = errors.New("asset type not initialized")
	ErrUnknownHandle      = errors.New("handle does not belong to this server")
	ErrAssetNotLoaded     = errors.New("asset is not loaded")
	ErrWatchWithoutRoot   = errors.New("watching requires a root directory")
	ErrServerShuttingDown = errors.New("asset server is shutting down")
)
