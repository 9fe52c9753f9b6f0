package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradebook/internal/models"
	"tradebook/internal/store"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestUser creates an investor with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *store.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithRole(t, db, email, models.RoleInvestor)
}

// CreateTestUserWithRole creates a user with the given email and role.
func CreateTestUserWithRole(t *testing.T, db *store.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user, err := store.NewCollection[models.User](db, "users").Create(&models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAsset creates an active USD stock with a unique symbol and the given price.
func CreateTestAsset(t *testing.T, db *store.DB, price float64) *models.Asset {
	t.Helper()
	return CreateTestAssetWithSymbol(t, db, fmt.Sprintf("TST%d", nextID()), price)
}

// CreateTestAssetWithSymbol creates an active USD stock with the given symbol and price.
func CreateTestAssetWithSymbol(t *testing.T, db *store.DB, symbol string, price float64) *models.Asset {
	t.Helper()

	asset, err := store.NewCollection[models.Asset](db, "assets").Create(&models.Asset{
		Symbol:       symbol,
		Name:         "Test Asset " + symbol,
		Type:         models.AssetTypeStock,
		Currency:     "USD",
		CurrentPrice: price,
		PriceHistory: []models.PricePoint{},
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestPortfolio creates an active moderate USD portfolio owned by userID.
func CreateTestPortfolio(t *testing.T, db *store.DB, userID string) *models.Portfolio {
	t.Helper()

	portfolio, err := store.NewCollection[models.Portfolio](db, "portfolios").Create(&models.Portfolio{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Portfolio %d", nextID()),
		Currency:    "USD",
		RiskProfile: models.RiskModerate,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestTrade writes a trade directly to the ledger, bypassing the state
// machine. Executed trades get an execution time.
func CreateTestTrade(t *testing.T, db *store.DB, portfolioID, assetID string, tradeType models.TradeType, quantity, price float64, status models.TradeStatus) *models.Trade {
	t.Helper()

	trade := &models.Trade{
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Type:        tradeType,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: quantity * price,
		Status:      status,
	}
	if status == models.TradeExecuted {
		now := time.Now().UTC()
		trade.ExecutedAt = &now
	}

	created, err := store.NewCollection[models.Trade](db, "trades").Create(trade)
	if err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return created
}
