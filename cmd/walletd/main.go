package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/api"
	"github.com/voxwallet/walletd/internal/authgate"
	"github.com/voxwallet/walletd/internal/client"
	"github.com/voxwallet/walletd/internal/config"
	"github.com/voxwallet/walletd/internal/netreg"
	"github.com/voxwallet/walletd/internal/secret"
	"github.com/voxwallet/walletd/internal/store"
	"github.com/voxwallet/walletd/wallet"
)

// @title VoxWallet Daemon API
// @version 1.0
// @description Local EVM wallet daemon: key custody, balances and transfers over HTTP.
// @host localhost:8080
// @BasePath /
func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("config init failed")
	}

	if err := config.PromptForPassphrase(); err != nil {
		log.Fatal().Err(err).Msg("passphrase prompt failed")
	}

	metaStore := store.New(config.GetDataFilePath())
	secretStore := secret.NewStore(config.GetWalletFilePath(), secret.DefaultScryptParams, config.PassphraseBytes, log)

	gate := authgate.New(&authgate.PassphraseChallenger{
		Passphrase: config.PassphraseBytes,
		Verify:     secretStore.VerifyPassphrase,
	}, time.Duration(config.GetAuthGraceSeconds())*time.Second, log)
	secretStore.UseGate(gate)

	resolver := netreg.NewResolver(metaStore, log)
	active := resolver.LoadActive()
	log.Info().Str("network", active.Name).Uint64("chainId", active.ChainID).Msg("active network loaded")

	session := wallet.New(secretStore, metaStore, resolver, wallet.Options{
		Dial: func(ctx context.Context, network netreg.Network, timeout time.Duration) (wallet.Backend, error) {
			return client.Dial(ctx, network, timeout, log)
		},
		Rates:       client.NewCoinGeckoClient(),
		DialTimeout: time.Duration(config.GetDialTimeoutSeconds()) * time.Second,
		ConfirmWait: time.Duration(config.GetConfirmWaitSeconds()) * time.Second,
		Logger:      log,
	})
	if err := session.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("wallet load failed")
	}

	router := api.SetupRouter(session, resolver)

	addr := fmt.Sprintf(":%s", config.GetPort())
	log.Info().Str("addr", addr).Msg("walletd listening")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
