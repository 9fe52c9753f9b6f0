package services

import (
	"testing"

	"tradebook/internal/models"
	"tradebook/internal/testutil"
)

func TestStatistics(t *testing.T) {
	env := setup(t)
	user := testutil.CreateTestUser(t, env.db)
	p1 := testutil.CreateTestPortfolio(t, env.db, user.ID)
	p2 := testutil.CreateTestPortfolio(t, env.db, user.ID)
	a := testutil.CreateTestAsset(t, env.db, 1)

	testutil.CreateTestTrade(t, env.db, p1.ID, a.ID, models.TradeBuy, 2, 10, models.TradeExecuted)
	testutil.CreateTestTrade(t, env.db, p1.ID, a.ID, models.TradeSell, 1, 15, models.TradeExecuted)
	testutil.CreateTestTrade(t, env.db, p1.ID, a.ID, models.TradeBuy, 4, 10, models.TradePending)
	testutil.CreateTestTrade(t, env.db, p2.ID, a.ID, models.TradeBuy, 1, 7, models.TradeCancelled)
	testutil.CreateTestTrade(t, env.db, p2.ID, a.ID, models.TradeSell, 1, 3, models.TradeExecuted)

	t.Run("one_portfolio", func(t *testing.T) {
		stats, err := env.trades.Statistics(p1.ID)
		testutil.AssertNoError(t, err)

		if stats.Total != 3 {
			t.Errorf("expected 3 trades, got %d", stats.Total)
		}
		if stats.ByStatus[models.TradeExecuted] != 2 || stats.ByStatus[models.TradePending] != 1 {
			t.Errorf("unexpected status counts: %v", stats.ByStatus)
		}
		if stats.ByType.Buy != 2 || stats.ByType.Sell != 1 {
			t.Errorf("unexpected type counts: %+v", stats.ByType)
		}
		if stats.Executed != 2 || stats.TotalVolume != 35 {
			t.Errorf("expected 2 executed with volume 35, got %d/%v", stats.Executed, stats.TotalVolume)
		}
	})

	t.Run("all_trades", func(t *testing.T) {
		stats, err := env.trades.Statistics("")
		testutil.AssertNoError(t, err)
		if stats.Total != 5 || stats.Executed != 3 || stats.TotalVolume != 38 {
			t.Errorf("unexpected totals: %+v", stats)
		}
	})

	t.Run("merge_matches_all", func(t *testing.T) {
		s1, err := env.trades.Statistics(p1.ID)
		testutil.AssertNoError(t, err)
		s2, err := env.trades.Statistics(p2.ID)
		testutil.AssertNoError(t, err)
		all, err := env.trades.Statistics("")
		testutil.AssertNoError(t, err)

		merged := MergeStatistics(s1, s2)
		if merged.Total != all.Total || merged.Executed != all.Executed || merged.TotalVolume != all.TotalVolume {
			t.Errorf("merged %+v does not match %+v", merged, all)
		}
		if merged.ByType != all.ByType {
			t.Errorf("expected type counts %+v, got %+v", all.ByType, merged.ByType)
		}
		for status, n := range all.ByStatus {
			if merged.ByStatus[status] != n {
				t.Errorf("status %s: expected %d, got %d", status, n, merged.ByStatus[status])
			}
		}
	})

	t.Run("empty_portfolio", func(t *testing.T) {
		empty := testutil.CreateTestPortfolio(t, env.db, user.ID)
		stats, err := env.trades.Statistics(empty.ID)
		testutil.AssertNoError(t, err)
		if stats.Total != 0 || stats.ByStatus == nil {
			t.Errorf("expected zeroed statistics, got %+v", stats)
		}
	})
}

func TestMergeStatisticsSkipsNil(t *testing.T) {
	merged := MergeStatistics(nil, Summarize(nil))
	if merged.Total != 0 || merged.ByStatus == nil {
		t.Errorf("expected empty statistics, got %+v", merged)
	}
}
