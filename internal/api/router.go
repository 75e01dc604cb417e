package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/voxwallet/walletd/internal/handler"
	"github.com/voxwallet/walletd/internal/netreg"
	"github.com/voxwallet/walletd/wallet"
)

// SetupRouter sets up router with handlers
func SetupRouter(session *wallet.Session, resolver *netreg.Resolver) http.Handler {
	walletHandler := handler.NewWalletHandler(session)
	networkHandler := handler.NewNetworkHandler(resolver)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("/wallet", walletHandler.Status)
	mux.HandleFunc("/wallet/create", walletHandler.Create)
	mux.HandleFunc("/wallet/import", walletHandler.Import)
	mux.HandleFunc("/wallet/restore", walletHandler.Restore)
	mux.HandleFunc("/wallet/balance", walletHandler.Balance)
	mux.HandleFunc("/wallet/transfer", walletHandler.Transfer)
	mux.HandleFunc("/wallet/receive", walletHandler.Receive)
	mux.HandleFunc("/wallet/mnemonic", walletHandler.Mnemonic)
	mux.HandleFunc("/wallet/reset", walletHandler.Reset)

	// Network endpoints
	mux.HandleFunc("/networks", networkHandler.List)
	mux.HandleFunc("/networks/active", networkHandler.Active)

	return mux
}
