package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/testutil"
)

func TestSetupTestStore(t *testing.T) {
	db := testutil.SetupTestStore(t)

	info, err := os.Stat(db.Dir())
	if err != nil {
		t.Fatalf("store directory should exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", db.Dir())
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestStore(t)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if user.Role != models.RoleInvestor {
		t.Errorf("expected investor role, got %s", user.Role)
	}

	asset := testutil.CreateTestAsset(t, db, 42)
	if asset.CurrentPrice != 42 {
		t.Errorf("expected price 42, got %f", asset.CurrentPrice)
	}

	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	if portfolio.UserID != user.ID {
		t.Errorf("expected owner %s, got %s", user.ID, portfolio.UserID)
	}

	trade := testutil.CreateTestTrade(t, db, portfolio.ID, asset.ID, models.TradeBuy, 3, 42, models.TradeExecuted)
	if trade.TotalAmount != 126 {
		t.Errorf("expected total 126, got %f", trade.TotalAmount)
	}
	if trade.ExecutedAt == nil {
		t.Error("expected executed trade to carry an execution time")
	}

	for _, name := range []string{"users", "assets", "portfolios", "trades"} {
		if _, err := os.Stat(filepath.Join(db.Dir(), name+".json")); err != nil {
			t.Errorf("collection file %s.json should exist: %v", name, err)
		}
	}
}

func TestAssertions(t *testing.T) {
	testutil.AssertNoError(t, nil)
	testutil.AssertAppError(t, errors.ErrTradeNotFound, "TRADE_NOT_FOUND")
	testutil.AssertKind(t, errors.ErrInsufficientHoldings, errors.KindDomain)
	testutil.AssertKind(t, errors.Wrap(errors.ErrInternalServer, os.ErrClosed), errors.KindInternal)
}
