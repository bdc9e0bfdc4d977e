package marketdata

import (
	"fmt"
	"slices"

	"github.com/rxtech-lab/argo-gate/pkg/marketdata/provider"
)

// SupplierInfo contains metadata about a candle supplier.
type SupplierInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

var supplierRegistry = map[provider.SupplierType]SupplierInfo{
	provider.SupplierPolygon: {
		Name:         string(provider.SupplierPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock and crypto aggregates",
		RequiresAuth: true,
	},
	provider.SupplierBinance: {
		Name:         string(provider.SupplierBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency spot klines from the public API",
		RequiresAuth: false,
	},
	provider.SupplierFile: {
		Name:         string(provider.SupplierFile),
		DisplayName:  "File",
		Description:  "Local parquet or csv candles, e.g. written by the download command",
		RequiresAuth: false,
	},
}

// GetSupportedSuppliers returns the supplier names in sorted order.
func GetSupportedSuppliers() []string {
	names := make([]string, 0, len(supplierRegistry))
	for t := range supplierRegistry {
		names = append(names, string(t))
	}

	slices.Sort(names)

	return names
}

func GetSupplierInfo(name string) (SupplierInfo, error) {
	info, exists := supplierRegistry[provider.SupplierType(name)]
	if !exists {
		return SupplierInfo{}, fmt.Errorf("unsupported supplier: %s", name)
	}

	return info, nil
}
