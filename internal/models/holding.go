package models

// Holding is the derived position of one portfolio in one asset. It is
// recomputed from executed trades on every read and never stored.
type Holding struct {
	AssetID      string  `json:"assetId"`
	Quantity     float64 `json:"quantity"`
	TotalCost    float64 `json:"totalCost"`
	AveragePrice float64 `json:"averagePrice"`
}
