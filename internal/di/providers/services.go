package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelflineapp/shelfline-server/internal/auth"
	"github.com/shelflineapp/shelfline-server/internal/config"
	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
	"github.com/shelflineapp/shelfline-server/internal/media/covers"
	"github.com/shelflineapp/shelfline-server/internal/media/images"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// ProvideInstanceService provides the server instance service.
func ProvideInstanceService(i do.Injector) (*service.InstanceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInstanceService(storeHandle.Store, log.Logger), nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	instanceService := do.MustInvoke[*service.InstanceService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, instanceService, log.Logger), nil
}

// ProvideMetadataService provides the BGG metadata service with caching.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bggClient := do.MustInvoke[*bgg.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetadataService(bggClient, storeHandle.Store, cfg.BGG.CacheTTL, log.Logger), nil
}

// ProvideCoverService provides the cover download and processing service.
func ProvideCoverService(i do.Injector) (*service.CoverService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	downloader := do.MustInvoke[*covers.Downloader](i)
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCoverService(storeHandle.Store, downloader, storage, log.Logger), nil
}

// ProvideResolverService provides the scan-to-shelf resolver pipeline.
func ProvideResolverService(i do.Injector) (*service.ResolverService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cascade := do.MustInvoke[*lookup.Cascade](i)
	metadataService := do.MustInvoke[*service.MetadataService](i)
	gameUPC := do.MustInvoke[*GameUPCHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil contributor disables contribute-back; a nil cover fetcher
	// disables cover downloads.
	var contributor service.Contributor
	if gameUPC.Client != nil {
		contributor = gameUPC.Client
	}
	var coverFetcher service.CoverFetcher
	if cfg.Covers.Enabled {
		coverFetcher = do.MustInvoke[*service.CoverService](i)
	}

	return service.NewResolverService(
		storeHandle.Store,
		cascade,
		metadataService,
		contributor,
		coverFetcher,
		log.Logger,
	), nil
}

// ProvideLibraryService provides the per-user library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, log.Logger), nil
}

// ProvideCatalogService provides the shared catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// ProvideStatsService provides the play statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}
