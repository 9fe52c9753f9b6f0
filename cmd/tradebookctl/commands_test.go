package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tradebook/internal/models"
	"tradebook/internal/store"
	"tradebook/internal/testutil"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T) (dir string, db *store.DB) {
	t.Helper()
	dir = t.TempDir()
	db, err := store.Open(store.Options{Dir: dir})
	testutil.AssertNoError(t, err)
	return dir, db
}

func TestAssetsList(t *testing.T) {
	dir, db := seed(t)
	testutil.CreateTestAssetWithSymbol(t, db, "ABC", 10)

	out, err := run(t, dir, "assets", "list")
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "SYMBOL") || !strings.Contains(out, "ABC") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, dir, "assets", "list", "--type", "bond")
	testutil.AssertNoError(t, err)
	if strings.Contains(out, "ABC") {
		t.Errorf("expected the bond filter to hide ABC:\n%s", out)
	}
}

func TestPricesImport(t *testing.T) {
	dir, db := seed(t)
	asset := testutil.CreateTestAssetWithSymbol(t, db, "ABC", 10)

	file := filepath.Join(t.TempDir(), "prices.yaml")
	content := "prices:\n  - symbol: ABC\n    price: 12.5\n  - assetId: " + asset.ID + "\n    price: 13\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "prices", "import", file)
	testutil.AssertNoError(t, err)
	if strings.Count(out, "OK") != 2 {
		t.Errorf("expected two successful updates:\n%s", out)
	}

	got, err := store.NewCollection[models.Asset](db, "assets").FindByID(asset.ID)
	testutil.AssertNoError(t, err)
	if got.CurrentPrice != 13 || len(got.PriceHistory) != 2 {
		t.Errorf("unexpected asset after import %+v", got)
	}
}

func TestPricesImportReportsFailures(t *testing.T) {
	dir, _ := seed(t)
	file := filepath.Join(t.TempDir(), "prices.yaml")
	if err := os.WriteFile(file, []byte("prices:\n  - symbol: NOPE\n    price: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "prices", "import", file)
	if err == nil {
		t.Fatal("expected an error for an unknown symbol")
	}
	if !strings.Contains(out, "FAIL NOPE") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLoadPriceFile(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("prices: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPriceFile(empty); err == nil {
		t.Error("expected an error for an empty file")
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("prices: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPriceFile(broken); err == nil {
		t.Error("expected a parse error")
	}
}

func TestPortfoliosRevalueAndTradeStats(t *testing.T) {
	dir, db := seed(t)
	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	asset := testutil.CreateTestAssetWithSymbol(t, db, "ABC", 20)
	testutil.CreateTestTrade(t, db, portfolio.ID, asset.ID, models.TradeBuy, 4, 10, models.TradeExecuted)
	testutil.CreateTestTrade(t, db, portfolio.ID, asset.ID, models.TradeSell, 1, 10, models.TradePending)

	out, err := run(t, dir, "portfolios", "revalue", portfolio.ID)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "\t40") {
		t.Errorf("expected average-cost value 40:\n%s", out)
	}

	out, err = run(t, dir, "portfolios", "revalue", "--market", portfolio.ID)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "\t80") {
		t.Errorf("expected market value 80:\n%s", out)
	}

	out, err = run(t, dir, "portfolios", "revalue")
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "revalued 1 portfolios, 0 failed") {
		t.Errorf("unexpected sweep output:\n%s", out)
	}

	out, err = run(t, dir, "trades", "stats", "--portfolio", portfolio.ID)
	testutil.AssertNoError(t, err)
	for _, want := range []string{"total", "executed", "volume", "pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := run(t, dir, "trades", "stats", "--portfolio", "missing"); err == nil {
		t.Error("expected an error for an unknown portfolio")
	}
}
