package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelflineapp/shelfline-server/internal/config"
	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/lookup"
	"github.com/shelflineapp/shelfline-server/internal/lookup/barcodelookup"
	"github.com/shelflineapp/shelfline-server/internal/lookup/gameupc"
	"github.com/shelflineapp/shelfline-server/internal/lookup/upcitemdb"
	"github.com/shelflineapp/shelfline-server/internal/metadata/bgg"
)

// GameUPCHandle carries the gameupc client when one is configured. The
// client doubles as the contribute-back target, so it is provided
// separately from the cascade.
type GameUPCHandle struct {
	Client *gameupc.Client
}

// ProvideGameUPCClient provides the gameupc client, nil without an API key.
func ProvideGameUPCClient(i do.Injector) (*GameUPCHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Lookup.GameUPCKey == "" {
		log.Info("gameupc lookup disabled, no API key configured")
		return &GameUPCHandle{}, nil
	}

	return &GameUPCHandle{
		Client: gameupc.New(cfg.Lookup.GameUPCKey, cfg.Lookup.Timeout, log.Logger),
	}, nil
}

// ProvideLookupCascade provides the vendor lookup cascade in priority
// order: gameupc, barcodelookup, upcitemdb. Vendors without a required
// API key are left out.
func ProvideLookupCascade(i do.Injector) (*lookup.Cascade, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	gameUPC := do.MustInvoke[*GameUPCHandle](i)

	var clients []lookup.Client
	if gameUPC.Client != nil {
		clients = append(clients, gameUPC.Client)
	}
	if cfg.Lookup.BarcodeLookupKey != "" {
		clients = append(clients, barcodelookup.New(cfg.Lookup.BarcodeLookupKey, cfg.Lookup.Timeout, log.Logger))
	} else {
		log.Info("barcodelookup disabled, no API key configured")
	}
	clients = append(clients, upcitemdb.New(cfg.Lookup.UPCItemDBKey, cfg.Lookup.Timeout, log.Logger))

	log.Info("Lookup cascade configured", "vendors", len(clients))

	return lookup.NewCascade(log.Logger, clients...), nil
}

// ProvideBGGClient provides the BoardGameGeek XMLAPI2 client.
func ProvideBGGClient(i do.Injector) (*bgg.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return bgg.New(cfg.BGG.Token, log.Logger), nil
}
