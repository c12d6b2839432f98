package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/confide-dev/confide/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SessionRepository implements domain.SessionRepository on MongoDB.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository and ensures its
// indexes, including the TTL index that reaps expired sessions.
func NewSessionRepository(ctx context.Context, db *mongo.Database) (domain.SessionRepository, error) {
	repo := &SessionRepository{
		collection: db.Collection(SessionsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index(), // not unique, a user can have several sessions
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL cleanup
		},
	}

	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("Issue creating indexes for sessions collection (might already exist)")
	} else {
		log.Info().Msgf("Indexes for %s collection ensured.", SessionsCollection)
	}

	return repo, nil
}

// StoreSession persists a new session.
func (r *SessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = NewObjectID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		log.Error().Err(err).Msg("Error storing session in MongoDB")
		return err
	}
	return nil
}

// GetSessionByID retrieves a session by its ID.
func (r *SessionRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting session by ID from MongoDB")
		return nil, err
	}
	return &session, nil
}

// RevokeSession marks a session as logged out. A revoked session never
// resolves again, regardless of any stale cookie the client still holds.
func (r *SessionRepository) RevokeSession(ctx context.Context, id string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_revoked": true}},
	)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Error revoking session in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry. The TTL index
// does this in the background; the explicit form exists for the ops CLI.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		log.Error().Err(err).Msg("Error deleting expired sessions from MongoDB")
	}
	return err
}

// CountActiveSessions counts sessions that are neither revoked nor expired.
func (r *SessionRepository) CountActiveSessions(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"is_revoked": bson.M{"$ne": true},
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error counting active sessions in MongoDB")
		return 0, err
	}
	return count, nil
}

// Ensure interface compliance
var _ domain.SessionRepository = (*SessionRepository)(nil)
