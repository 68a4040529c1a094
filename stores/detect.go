package stores

import (
	"net/url"
	"strings"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

// Detect classifies a URL into a retailer identifier by inspecting its
// host and, for ambiguous hosts, its path. Unrecognized input yields
// StoreGeneric; Detect never fails.
func Detect(rawURL string) types.StoreID {
	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return types.StoreGeneric
	}
	host := parsed.Host
	switch {
	case strings.Contains(host, "amazon"):
		return types.StoreAmazon
	case strings.Contains(host, "mercadolivre"), strings.Contains(parsed.Path, "mlb"):
		return types.StoreMercadoLivre
	case strings.Contains(host, "awin"):
		return types.StoreAwin
	}
	return types.StoreGeneric
}

// ForStore returns the adapter responsible for a given store.
func ForStore(store types.StoreID) StoreAdapter {
	switch store {
	case types.StoreAmazon:
		return &AmazonAdapter{}
	case types.StoreMercadoLivre:
		return &MercadoLivreAdapter{}
	case types.StoreAwin:
		return &AwinAdapter{}
	}
	return &GenericAdapter{}
}

// ForURL detects the store for a URL and returns its adapter.
func ForURL(rawURL string) StoreAdapter {
	return ForStore(Detect(rawURL))
}
