package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confide-dev/confide/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserRepository implements domain.UserRepository on MongoDB.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new UserRepository and ensures its indexes.
func NewUserRepository(ctx context.Context, db *mongo.Database) (domain.UserRepository, error) {
	repo := &UserRepository{
		users: db.Collection(UsersCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		// Index creation commonly fails when indexes already exist with
		// different options; log and continue.
		log.Warn().Err(err).Msg("Failed to create user indexes (may already exist)")
	}
	return repo, nil
}

// createIndexes ensures the uniqueness constraints the repository relies on.
// The sparse unique indexes on the provider subject ids are what make
// FindOrCreateByProvider race-free: a lost concurrent upsert surfaces as a
// duplicate key error instead of a second record.
func (r *UserRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "facebook_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.users.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes for %s collection: %w", UsersCollection, err)
	}
	log.Info().Msgf("Indexes for %s collection ensured.", UsersCollection)
	return nil
}

// providerField maps a provider name to its document field.
func providerField(provider string) (string, error) {
	switch provider {
	case domain.ProviderGoogle:
		return "google_id", nil
	case domain.ProviderFacebook:
		return "facebook_id", nil
	}
	return "", domain.ErrUnknownProvider
}

// CreateUser inserts a new identity record.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = time.Now().UTC()

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUsernameTaken
		}
		log.Error().Err(err).Str("username", user.Username).Msg("Error creating user in MongoDB")
		return err
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting user by ID from MongoDB")
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a locally registered user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		log.Error().Err(err).Str("username", username).Msg("Error getting user by username from MongoDB")
		return nil, err
	}
	return &user, nil
}

// FindOrCreateByProvider resolves or creates the identity owning the given
// provider subject id in a single atomic upsert. Repeated and concurrent
// calls for the same (provider, subjectID) pair always converge on one
// record: the upsert either matches the existing document or inserts a new
// one, and a lost race trips the unique index and is resolved by re-reading.
func (r *UserRepository) FindOrCreateByProvider(ctx context.Context, provider, subjectID string) (*domain.User, error) {
	field, err := providerField(provider)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	filter := bson.M{field: subjectID}
	update := bson.M{
		"$setOnInsert": bson.M{"_id": NewObjectID(), "created_at": now},
		"$set":         bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user domain.User
	err = r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent first-time call won the insert; its record
			// is now visible.
			if lookupErr := r.users.FindOne(ctx, filter).Decode(&user); lookupErr == nil {
				return &user, nil
			}
		}
		log.Error().Err(err).Str("provider", provider).Msg("Error resolving federated identity")
		return nil, err
	}
	return &user, nil
}

// SaveSecret overwrites the secret on a single identity record.
func (r *UserRepository) SaveSecret(ctx context.Context, userID, secret string) error {
	result, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"secret": secret, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error saving secret in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListSecrets returns the secret values of every identity that has one,
// newest first. The identities themselves stay private.
func (r *UserRepository) ListSecrets(ctx context.Context) ([]string, error) {
	filter := bson.M{"secret": bson.M{"$exists": true, "$ne": ""}}
	findOptions := options.Find().
		SetProjection(bson.M{"secret": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.users.Find(ctx, filter, findOptions)
	if err != nil {
		log.Error().Err(err).Msg("Error listing secrets from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Secret string `bson:"secret"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		log.Error().Err(err).Msg("Error decoding listed secrets from MongoDB")
		return nil, err
	}

	secrets := make([]string, 0, len(docs))
	for _, doc := range docs {
		secrets = append(secrets, doc.Secret)
	}
	return secrets, nil
}

// TouchLastLogin records a successful login on the identity record.
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_login_at": now, "updated_at": now}},
	)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Error touching last login in MongoDB")
	}
	return err
}

// Ensure interface compliance
var _ domain.UserRepository = (*UserRepository)(nil)
