package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-todo-api/internal/core/domain/todo"
	"go-todo-api/internal/core/ports"
)

type todoDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Text        string        `bson:"text"`
	Completed   bool          `bson:"completed"`
	CompletedAt *int64        `bson:"completedAt"`
	Creator     bson.ObjectID `bson:"_creator"`
}

// TodoRepository implements ports.TodoRepository.
type TodoRepository struct {
	db *mongo.Database
}

var _ ports.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(db *mongo.Database) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	creator, err := bson.ObjectIDFromHex(t.CreatorID)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("%w: invalid creator id", todo.ErrValidation)
	}

	doc := todoDocument{
		Text:        t.Text,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Creator:     creator,
	}

	result, err := r.db.Collection(todoCollection).InsertOne(ctx, doc)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return todo.Todo{}, errors.New("failed to convert inserted ID to ObjectID")
	}
	doc.ID = objectID
	return doc.toDomain(), nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	filter, err := ownedFilter(id, creatorID)
	if err != nil {
		return todo.Todo{}, err
	}

	var doc todoDocument
	if err := r.db.Collection(todoCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return todo.Todo{}, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *TodoRepository) FindByCreator(ctx context.Context, creatorID string) (iter.Seq2[todo.Todo, error], error) {
	creator, err := bson.ObjectIDFromHex(creatorID)
	if err != nil {
		return func(func(todo.Todo, error) bool) {}, nil
	}

	cursor, err := r.db.Collection(todoCollection).Find(ctx,
		bson.M{"_creator": creator},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}

	return func(yield func(todo.Todo, error) bool) {
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc todoDocument
			if err := cursor.Decode(&doc); err != nil {
				yield(todo.Todo{}, fmt.Errorf("failed to decode todo: %w", err))
				return
			}
			if !yield(doc.toDomain(), nil) {
				return
			}
		}

		if err := cursor.Err(); err != nil {
			yield(todo.Todo{}, fmt.Errorf("cursor iteration error: %w", err))
		}
	}, nil
}

func (r *TodoRepository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	filter, err := ownedFilter(t.ID, t.CreatorID)
	if err != nil {
		return todo.Todo{}, err
	}

	update := bson.M{"$set": bson.M{
		"text":        t.Text,
		"completed":   t.Completed,
		"completedAt": t.CompletedAt,
	}}

	var doc todoDocument
	err = r.db.Collection(todoCollection).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return todo.Todo{}, notFound(err)
	}
	return doc.toDomain(), nil
}

func (r *TodoRepository) Delete(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	filter, err := ownedFilter(id, creatorID)
	if err != nil {
		return todo.Todo{}, err
	}

	var doc todoDocument
	if err := r.db.Collection(todoCollection).FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return todo.Todo{}, notFound(err)
	}
	return doc.toDomain(), nil
}

// ownedFilter fails fast on malformed ids instead of querying.
func ownedFilter(id, creatorID string) (bson.M, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, todo.ErrNotFound
	}
	creator, err := bson.ObjectIDFromHex(creatorID)
	if err != nil {
		return nil, todo.ErrNotFound
	}
	return bson.M{"_id": objectID, "_creator": creator}, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return todo.ErrNotFound
	}
	return fmt.Errorf("todo query failed: %w", err)
}

func (d todoDocument) toDomain() todo.Todo {
	return todo.Todo{
		ID:          d.ID.Hex(),
		Text:        d.Text,
		Completed:   d.Completed,
		CompletedAt: d.CompletedAt,
		CreatorID:   d.Creator.Hex(),
	}
}
