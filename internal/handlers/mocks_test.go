package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tradebook/internal/logger"
	"tradebook/internal/middleware"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
	"tradebook/internal/services"
	"tradebook/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn     func(input services.CreateUserInput) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	listUsersFn      func(page pagination.PageRequest) (*pagination.PageResponse[models.PublicUser], error)
	updateUserFn     func(id string, patch models.UserPatch) (*models.User, error)
	deleteUserFn     func(id string) error
	attemptLoginFn   func(email, password string) (*models.User, error)
}

var _ services.UserServicer = (*mockUserService)(nil)

func (m *mockUserService) CreateUser(input services.CreateUserInput) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(input)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.PublicUser], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.Paginate([]models.PublicUser{}, page)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(id string, patch models.UserPatch) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(id, patch)
	}
	return &models.User{}, nil
}

func (m *mockUserService) DeleteUser(id string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(id)
	}
	return nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type mockAssetService struct {
	createAssetFn      func(input services.CreateAssetInput) (*models.Asset, error)
	getAssetFn         func(id string) (*models.Asset, error)
	getAssetBySymbolFn func(symbol string) (*models.Asset, error)
	listAssetsFn       func(filter services.AssetFilter) ([]models.Asset, error)
	updateAssetFn      func(id string, patch models.AssetPatch) (*models.Asset, error)
	updatePriceFn      func(id string, price float64, addToHistory bool) (*models.Asset, error)
	bulkUpdateFn       func(entries []services.PriceUpdate) []services.PriceUpdateResult
	deleteAssetFn      func(id string) error
}

var _ services.AssetServicer = (*mockAssetService)(nil)

func (m *mockAssetService) CreateAsset(input services.CreateAssetInput) (*models.Asset, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(input)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) GetAsset(id string) (*models.Asset, error) {
	if m.getAssetFn != nil {
		return m.getAssetFn(id)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) GetAssetBySymbol(symbol string) (*models.Asset, error) {
	if m.getAssetBySymbolFn != nil {
		return m.getAssetBySymbolFn(symbol)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) ListAssets(filter services.AssetFilter) ([]models.Asset, error) {
	if m.listAssetsFn != nil {
		return m.listAssetsFn(filter)
	}
	return []models.Asset{}, nil
}

func (m *mockAssetService) UpdateAsset(id string, patch models.AssetPatch) (*models.Asset, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(id, patch)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) UpdateAssetPrice(id string, price float64, addToHistory bool) (*models.Asset, error) {
	if m.updatePriceFn != nil {
		return m.updatePriceFn(id, price, addToHistory)
	}
	return &models.Asset{}, nil
}

func (m *mockAssetService) BulkUpdatePrices(entries []services.PriceUpdate) []services.PriceUpdateResult {
	if m.bulkUpdateFn != nil {
		return m.bulkUpdateFn(entries)
	}
	return nil
}

func (m *mockAssetService) DeleteAsset(id string) error {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(id)
	}
	return nil
}

type mockPortfolioService struct {
	createPortfolioFn  func(input services.CreatePortfolioInput) (*models.Portfolio, error)
	getPortfolioFn     func(id string) (*models.Portfolio, error)
	withHoldingsFn     func(id string) (*services.PortfolioWithHoldings, error)
	listPortfoliosFn   func(ownerID string) ([]models.Portfolio, error)
	updatePortfolioFn  func(id string, patch models.PortfolioPatch) (*models.Portfolio, error)
	deletePortfolioFn  func(id string) error
	computeHoldingsFn  func(id string) ([]models.Holding, error)
	recalculateValueFn func(id string, overrides map[string]float64) (float64, error)
	revalueAtMarketFn  func(id string) (float64, error)
	revalueAllFn       func() (*services.RevalueReport, error)
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

func (m *mockPortfolioService) CreatePortfolio(input services.CreatePortfolioInput) (*models.Portfolio, error) {
	if m.createPortfolioFn != nil {
		return m.createPortfolioFn(input)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) GetPortfolio(id string) (*models.Portfolio, error) {
	if m.getPortfolioFn != nil {
		return m.getPortfolioFn(id)
	}
	return &models.Portfolio{Base: models.Base{ID: id}, UserID: "u1"}, nil
}

func (m *mockPortfolioService) GetPortfolioWithHoldings(id string) (*services.PortfolioWithHoldings, error) {
	if m.withHoldingsFn != nil {
		return m.withHoldingsFn(id)
	}
	return &services.PortfolioWithHoldings{}, nil
}

func (m *mockPortfolioService) ListPortfolios(ownerID string) ([]models.Portfolio, error) {
	if m.listPortfoliosFn != nil {
		return m.listPortfoliosFn(ownerID)
	}
	return []models.Portfolio{}, nil
}

func (m *mockPortfolioService) UpdatePortfolio(id string, patch models.PortfolioPatch) (*models.Portfolio, error) {
	if m.updatePortfolioFn != nil {
		return m.updatePortfolioFn(id, patch)
	}
	return &models.Portfolio{}, nil
}

func (m *mockPortfolioService) DeletePortfolio(id string) error {
	if m.deletePortfolioFn != nil {
		return m.deletePortfolioFn(id)
	}
	return nil
}

func (m *mockPortfolioService) ComputeHoldings(id string) ([]models.Holding, error) {
	if m.computeHoldingsFn != nil {
		return m.computeHoldingsFn(id)
	}
	return []models.Holding{}, nil
}

func (m *mockPortfolioService) RecalculateValue(id string, overrides map[string]float64) (float64, error) {
	if m.recalculateValueFn != nil {
		return m.recalculateValueFn(id, overrides)
	}
	return 0, nil
}

func (m *mockPortfolioService) RevalueAtMarket(id string) (float64, error) {
	if m.revalueAtMarketFn != nil {
		return m.revalueAtMarketFn(id)
	}
	return 0, nil
}

func (m *mockPortfolioService) RevalueAll() (*services.RevalueReport, error) {
	if m.revalueAllFn != nil {
		return m.revalueAllFn()
	}
	return &services.RevalueReport{}, nil
}

type mockTradeService struct {
	createTradeFn  func(input services.CreateTradeInput) (*models.Trade, error)
	getTradeFn     func(id string) (*models.Trade, error)
	listTradesFn   func(filter services.TradeFilter) ([]models.Trade, error)
	listByPortFn   func(portfolioID string) ([]models.Trade, error)
	updateTradeFn  func(id string, patch models.TradePatch) (*models.Trade, error)
	executeTradeFn func(id string) (*models.Trade, error)
	cancelTradeFn  func(id string) (*models.Trade, error)
	deleteTradeFn  func(id string) error
	statisticsFn   func(portfolioID string) (*services.TradeStatistics, error)
}

var _ services.TradeServicer = (*mockTradeService)(nil)

func (m *mockTradeService) CreateTrade(input services.CreateTradeInput) (*models.Trade, error) {
	if m.createTradeFn != nil {
		return m.createTradeFn(input)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) GetTrade(id string) (*models.Trade, error) {
	if m.getTradeFn != nil {
		return m.getTradeFn(id)
	}
	return &models.Trade{Base: models.Base{ID: id}, PortfolioID: "p1"}, nil
}

func (m *mockTradeService) ListTrades(filter services.TradeFilter) ([]models.Trade, error) {
	if m.listTradesFn != nil {
		return m.listTradesFn(filter)
	}
	return []models.Trade{}, nil
}

func (m *mockTradeService) ListPortfolioTrades(portfolioID string) ([]models.Trade, error) {
	if m.listByPortFn != nil {
		return m.listByPortFn(portfolioID)
	}
	return []models.Trade{}, nil
}

func (m *mockTradeService) UpdateTrade(id string, patch models.TradePatch) (*models.Trade, error) {
	if m.updateTradeFn != nil {
		return m.updateTradeFn(id, patch)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) ExecuteTrade(id string) (*models.Trade, error) {
	if m.executeTradeFn != nil {
		return m.executeTradeFn(id)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) CancelTrade(id string) (*models.Trade, error) {
	if m.cancelTradeFn != nil {
		return m.cancelTradeFn(id)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) DeleteTrade(id string) error {
	if m.deleteTradeFn != nil {
		return m.deleteTradeFn(id)
	}
	return nil
}

func (m *mockTradeService) Statistics(portfolioID string) (*services.TradeStatistics, error) {
	if m.statisticsFn != nil {
		return m.statisticsFn(portfolioID)
	}
	return services.Summarize(nil), nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// newRouter returns an engine that renders handler errors the way the server does.
func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()))
	return r
}

func injectIdentity(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetIdentity(c, services.Identity{UserID: userID, Role: role})
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
