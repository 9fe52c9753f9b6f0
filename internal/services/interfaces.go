package services

import (
	"tradebook/internal/models"
	"tradebook/internal/pagination"
)

// Identity is the authenticated caller as established by the HTTP boundary.
type Identity struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the caller has the admin role.
func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }

// CanManageAssets reports whether the caller may write to the asset ledger.
func (id Identity) CanManageAssets() bool {
	return id.Role == models.RoleAdmin || id.Role == models.RoleAnalyst
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(input CreateUserInput) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.PublicUser], error)
	UpdateUser(id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(id string) error
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// CreateUserInput carries the fields needed to register a user.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// AssetFilter holds optional filter parameters for listing assets.
type AssetFilter struct {
	Type     *models.AssetType
	IsActive *bool
}

// CreateAssetInput carries the fields of a new asset. Zero values take defaults.
type CreateAssetInput struct {
	Symbol       string
	Name         string
	Type         models.AssetType
	Currency     string
	CurrentPrice float64
	MarketCap    *float64
	Sector       *string
	IsActive     *bool
}

// PriceUpdate is one entry of a bulk price update.
type PriceUpdate struct {
	AssetID string  `json:"assetId" yaml:"assetId"`
	Symbol  string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Price   float64 `json:"price" yaml:"price"`
}

// PriceUpdateResult reports the outcome of one bulk price update entry.
type PriceUpdateResult struct {
	AssetID string        `json:"assetId"`
	Success bool          `json:"success"`
	Asset   *models.Asset `json:"asset,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// AssetServicer defines the contract for the asset ledger.
type AssetServicer interface {
	CreateAsset(input CreateAssetInput) (*models.Asset, error)
	GetAsset(id string) (*models.Asset, error)
	GetAssetBySymbol(symbol string) (*models.Asset, error)
	ListAssets(filter AssetFilter) ([]models.Asset, error)
	UpdateAsset(id string, patch models.AssetPatch) (*models.Asset, error)
	UpdateAssetPrice(id string, price float64, addToHistory bool) (*models.Asset, error)
	BulkUpdatePrices(entries []PriceUpdate) []PriceUpdateResult
	DeleteAsset(id string) error
}

// CreatePortfolioInput carries the fields of a new portfolio. Zero values take defaults.
type CreatePortfolioInput struct {
	UserID            string
	Name              string
	Description       string
	Currency          string
	RiskProfile       models.RiskProfile
	InitialInvestment float64
}

// PortfolioWithHoldings is a portfolio together with its derived holdings.
type PortfolioWithHoldings struct {
	models.Portfolio
	Holdings      []models.Holding `json:"holdings"`
	TotalHoldings int              `json:"totalHoldings"`
}

// RevalueReport summarizes a revaluation sweep over many portfolios.
type RevalueReport struct {
	Revalued int      `json:"revalued"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// PortfolioServicer defines the contract for portfolios and the valuation engine.
type PortfolioServicer interface {
	CreatePortfolio(input CreatePortfolioInput) (*models.Portfolio, error)
	GetPortfolio(id string) (*models.Portfolio, error)
	GetPortfolioWithHoldings(id string) (*PortfolioWithHoldings, error)
	ListPortfolios(ownerID string) ([]models.Portfolio, error)
	UpdatePortfolio(id string, patch models.PortfolioPatch) (*models.Portfolio, error)
	DeletePortfolio(id string) error
	ComputeHoldings(portfolioID string) ([]models.Holding, error)
	RecalculateValue(portfolioID string, priceOverrides map[string]float64) (float64, error)
	RevalueAtMarket(portfolioID string) (float64, error)
	RevalueAll() (*RevalueReport, error)
}

// TradeFilter holds optional filter parameters for listing trades.
// An empty PortfolioIDs slice set to non-nil matches nothing.
type TradeFilter struct {
	PortfolioIDs []string
	AssetID      *string
	Status       *models.TradeStatus
	Type         *models.TradeType
}

// CreateTradeInput carries the fields of a new trade. A nil Price defaults to
// the asset's current price.
type CreateTradeInput struct {
	PortfolioID string
	AssetID     string
	Type        models.TradeType
	Quantity    float64
	Price       *float64
	Notes       string
}

// TypeCounts counts trades by direction.
type TypeCounts struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
}

// TradeStatistics summarizes a set of trades.
type TradeStatistics struct {
	Total       int                        `json:"total"`
	ByStatus    map[models.TradeStatus]int `json:"byStatus"`
	ByType      TypeCounts                 `json:"byType"`
	TotalVolume float64                    `json:"totalVolume"`
	Executed    int                        `json:"executed"`
}

// TradeServicer defines the contract for the trade ledger and its state machine.
type TradeServicer interface {
	CreateTrade(input CreateTradeInput) (*models.Trade, error)
	GetTrade(id string) (*models.Trade, error)
	ListTrades(filter TradeFilter) ([]models.Trade, error)
	ListPortfolioTrades(portfolioID string) ([]models.Trade, error)
	UpdateTrade(id string, patch models.TradePatch) (*models.Trade, error)
	ExecuteTrade(id string) (*models.Trade, error)
	CancelTrade(id string) (*models.Trade, error)
	DeleteTrade(id string) error
	Statistics(portfolioID string) (*TradeStatistics, error)
}
