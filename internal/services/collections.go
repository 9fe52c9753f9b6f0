package services

import (
	"errors"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/store"
)

// Collection names as they appear in the data directory.
const (
	UsersCollection      = "users"
	AssetsCollection     = "assets"
	PortfoliosCollection = "portfolios"
	TradesCollection     = "trades"
)

func usersOf(db *store.DB) *store.Collection[models.User, *models.User] {
	return store.NewCollection[models.User](db, UsersCollection)
}

func assetsOf(db *store.DB) *store.Collection[models.Asset, *models.Asset] {
	return store.NewCollection[models.Asset](db, AssetsCollection)
}

func portfoliosOf(db *store.DB) *store.Collection[models.Portfolio, *models.Portfolio] {
	return store.NewCollection[models.Portfolio](db, PortfoliosCollection)
}

func tradesOf(db *store.DB) *store.Collection[models.Trade, *models.Trade] {
	return store.NewCollection[models.Trade](db, TradesCollection)
}

// storeErr converts a store failure into an internal AppError. AppErrors raised
// inside guards and mutations pass through unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
