package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

type userDocument struct {
	ID       bson.ObjectID   `bson:"_id,omitempty"`
	Email    string          `bson:"email"`
	Password string          `bson:"password"`
	Tokens   []tokenDocument `bson:"tokens"`
}

type tokenDocument struct {
	Access string `bson:"access"`
	Token  string `bson:"token"`
}

// UserRepository implements ports.UserRepository. Token changes use $push and
// $pull so concurrent logins on one user never overwrite each other.
type UserRepository struct {
	db *mongo.Database
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	doc := userDocument{
		Email:    user.Email,
		Password: user.PasswordHash,
		Tokens:   toTokenDocuments(user.Tokens),
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.User{}, auth.ErrDuplicateEmail
		}
		return auth.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return auth.User{}, errors.New("failed to convert inserted ID to ObjectID")
	}
	doc.ID = objectID
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (auth.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return auth.User{}, auth.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) PushToken(ctx context.Context, userID string, token auth.Token) error {
	return r.updateTokens(ctx, userID, bson.M{
		"$push": bson.M{"tokens": tokenDocument{Access: token.Access, Token: token.Value}},
	})
}

func (r *UserRepository) PullToken(ctx context.Context, userID, value string) error {
	return r.updateTokens(ctx, userID, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": value}},
	})
}

func (r *UserRepository) updateTokens(ctx context.Context, userID string, update bson.M) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return auth.ErrUserNotFound
	}

	result, err := r.db.Collection(userCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}
	if result.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (auth.User, error) {
	var doc userDocument
	err := r.db.Collection(userCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (d userDocument) toDomain() auth.User {
	tokens := make([]auth.Token, 0, len(d.Tokens))
	for _, t := range d.Tokens {
		tokens = append(tokens, auth.Token{Access: t.Access, Value: t.Token})
	}
	return auth.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		Tokens:       tokens,
	}
}

// toTokenDocuments never returns nil: $push fails on a null field.
func toTokenDocuments(tokens []auth.Token) []tokenDocument {
	docs := make([]tokenDocument, 0, len(tokens))
	for _, t := range tokens {
		docs = append(docs, tokenDocument{Access: t.Access, Token: t.Value})
	}
	return docs
}
