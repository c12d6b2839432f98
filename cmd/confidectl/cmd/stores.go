package cmd

import (
	"context"
	"fmt"

	"github.com/confide-dev/confide/domain"
	"github.com/confide-dev/confide/mongodb"
)

// connectStores opens the MongoDB connection and builds the repositories the
// data commands operate on. The connection stays open for the remainder of
// the process; confidectl invocations are short-lived.
func connectStores(ctx context.Context) (domain.UserRepository, domain.SessionRepository, error) {
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := mongodb.GetDB()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	sessionRepo, err := mongodb.NewSessionRepository(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return userRepo, sessionRepo, nil
}
