package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voxwallet/walletd/internal/model"
	"github.com/voxwallet/walletd/internal/netreg"
)

// NetworkHandler exposes the network registry and the active selection.
type NetworkHandler struct {
	resolver *netreg.Resolver
}

// NewNetworkHandler creates a new NetworkHandler
func NewNetworkHandler(resolver *netreg.Resolver) *NetworkHandler {
	return &NetworkHandler{resolver: resolver}
}

// List handles GET /networks
// @Summary      List networks
// @Description  Returns the static network registry with the active selection marked
// @Tags         networks
// @Produce      json
// @Success      200  {array}  model.NetworkResponse
// @Router       /networks [get]
func (h *NetworkHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	active := h.resolver.Active()
	networks := netreg.Networks()
	out := make([]model.NetworkResponse, 0, len(networks))
	for _, n := range networks {
		out = append(out, networkResponse(n, n.ChainID == active.ChainID))
	}
	writeJSON(w, http.StatusOK, out)
}

// Active handles GET and PUT /networks/active
// @Summary      Get or set the active network
// @Description  GET returns the active network; PUT selects one by chain id
// @Tags         networks
// @Accept       json
// @Produce      json
// @Param        request  body      model.SetActiveNetworkRequest  false  "Chain id (PUT only)"
// @Success      200      {object}  model.NetworkResponse
// @Router       /networks/active [get]
func (h *NetworkHandler) Active(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, networkResponse(h.resolver.Active(), true))

	case http.MethodPut:
		var req model.SetActiveNetworkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		if err := h.resolver.SetActive(req.ChainID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, networkResponse(h.resolver.Active(), true))

	default:
		http.Error(w, "Method not allowed. Should be GET or PUT", http.StatusMethodNotAllowed)
	}
}

func networkResponse(n netreg.Network, active bool) model.NetworkResponse {
	return model.NetworkResponse{
		Name:           n.Name,
		Symbol:         n.Symbol,
		ChainID:        n.ChainID,
		RPCURL:         n.RPCURL,
		ExplorerAPIURL: n.ExplorerAPIURL,
		Icon:           n.Icon,
		Active:         active,
	}
}
