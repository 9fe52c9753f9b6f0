package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"tradebook/internal/logger"
	"tradebook/internal/store"
	"tradebook/internal/testutil"
	"tradebook/internal/validator"
)

type testEnv struct {
	db         *store.DB
	users      UserServicer
	assets     AssetServicer
	portfolios PortfolioServicer
	trades     TradeServicer
}

func setup(t *testing.T, opts ...AssetOption) *testEnv {
	t.Helper()

	db := testutil.SetupTestStore(t)
	v := validator.New()
	log := logger.Nop()

	assets := NewAssetService(db, v, log, opts...)
	portfolios := NewPortfolioService(db, v, log)
	return &testEnv{
		db:         db,
		users:      NewUserService(db, v, log, bcrypt.MinCost),
		assets:     assets,
		portfolios: portfolios,
		trades:     NewTradeService(db, assets, portfolios, v, log),
	}
}

func ptr[T any](v T) *T { return &v }
