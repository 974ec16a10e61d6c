// Package di provides dependency injection configuration for the Shelfline server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelflineapp/shelfline-server/internal/auth"
	"github.com/shelflineapp/shelfline-server/internal/config"
	"github.com/shelflineapp/shelfline-server/internal/di/providers"
	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
	"github.com/shelflineapp/shelfline-server/internal/media/covers"
	"github.com/shelflineapp/shelfline-server/internal/media/images"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverDownloader)

	// External clients
	do.Provide(injector, providers.ProvideGameUPCClient)
	do.Provide(injector, providers.ProvideLookupCascade)
	do.Provide(injector, providers.ProvideBGGClient)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideInstanceService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideMetadataService)
	do.Provide(injector, providers.ProvideCoverService)
	do.Provide(injector, providers.ProvideResolverService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideStatsService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideCachePruneJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*covers.Downloader](injector)
	_ = do.MustInvoke[*providers.GameUPCHandle](injector)
	_ = do.MustInvoke[*lookup.Cascade](injector)
	_ = do.MustInvoke[*bgg.Client](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.InstanceService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.MetadataService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.CoverService](injector)
	_ = do.MustInvoke[*service.ResolverService](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.CachePruneJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	// Rebuild the search index when it is empty but the catalog is not.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
