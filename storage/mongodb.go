package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const habitsCollection = "habits"

// MongoStorage is a struct representing a MongoDB storage.
// It provides an interface to perform CRUD operations on the habits
// collection and the conditional write that backs the check-in engine.
type MongoStorage struct {
	client *mongo.Client
	dbName string
}

// NewMongoStorage creates a new instance of MongoStorage.
// This function doesn't establish a connection to the MongoDB server.
// To connect to the server, use the Connect method of the returned instance.
func NewMongoStorage() *MongoStorage {
	return &MongoStorage{}
}

// Connect establishes a connection to the MongoDB server at the given URI
// and database name. Returns an error if any issues are encountered.
func (m *MongoStorage) Connect(dbName, uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %v", err)
	}

	m.client = client
	m.dbName = dbName

	// Index on last_done so the conditional check-in filter stays cheap
	// as the collection grows.
	habits := m.collection()
	lastDoneIndexModel := mongo.IndexModel{
		Keys: bson.M{
			"last_done": 1, // 1 for ascending order
		},
		Options: options.Index(),
	}
	_, err = habits.Indexes().CreateOne(ctx, lastDoneIndexModel)
	if err != nil {
		return fmt.Errorf("error creating last_done index: %v", err)
	}

	return nil
}

// Disconnect closes the connection to the MongoDB server.
// It should be called when the MongoStorage instance is no longer needed.
func (m *MongoStorage) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("error disconnecting from MongoDB: %v", err)
	}

	return nil
}

func (m *MongoStorage) collection() *mongo.Collection {
	return m.client.Database(m.dbName).Collection(habitsCollection)
}

// habitID parses a wire id into an ObjectID. Ids that never were valid
// object ids are reported as not found rather than as a decoding error,
// since the caller cannot tell the difference anyway.
func habitID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrHabitNotFound
	}
	return oid, nil
}

// ListHabits returns all habit documents sorted by _id, which for ObjectIDs
// matches insertion order.
func (m *MongoStorage) ListHabits(ctx context.Context) ([]models.Habit, error) {
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cursor, err := m.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	habits := []models.Habit{}
	for cursor.Next(ctx) {
		var habit models.Habit
		if err := cursor.Decode(&habit); err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}

	return habits, cursor.Err()
}

// FindHabit finds a single habit document by id.
func (m *MongoStorage) FindHabit(ctx context.Context, id string) (*models.Habit, error) {
	oid, err := habitID(id)
	if err != nil {
		return nil, err
	}

	habit := &models.Habit{}
	err = m.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(habit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrHabitNotFound
	} else if err != nil {
		return nil, err
	}
	return habit, nil
}

// AddHabit adds a new habit document to the habits collection.
// Returns the added habit with its assigned id.
func (m *MongoStorage) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	if habit.Name == "" {
		return nil, ErrInvalidHabit
	}

	// Progress counters always start from zero.
	habit.ID = primitive.NilObjectID
	habit.Points = 0
	habit.Streak = 0
	habit.LastDone = ""

	result, err := m.collection().InsertOne(ctx, habit)
	if err != nil {
		return nil, err
	}

	habit.ID = result.InsertedID.(primitive.ObjectID)
	return habit, nil
}

// UpdateHabit applies a partial update to a habit document. Only fields
// present in the patch are written; everything else is left untouched.
// Returns the updated habit.
func (m *MongoStorage) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (*models.Habit, error) {
	oid, err := habitID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrInvalidHabit
	}

	if patch.Empty() {
		return m.FindHabit(ctx, id)
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Reward != nil {
		set["reward"] = *patch.Reward
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	habit := &models.Habit{}
	err = m.collection().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(habit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrHabitNotFound
	} else if err != nil {
		return nil, err
	}
	return habit, nil
}

// DeleteHabit deletes a habit document by id. Deleting an id that does not
// exist (or was already deleted) reports ErrHabitNotFound, matching the
// behavior the client observes from the rest of the API.
func (m *MongoStorage) DeleteHabit(ctx context.Context, id string) error {
	oid, err := habitID(id)
	if err != nil {
		return err
	}

	result, err := m.collection().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// SwapCheckIn commits the progress produced by a check-in, but only if the
// habit's last_done still has the value the engine read. The conditional
// filter makes the write atomic per habit: of two racing check-ins for the
// same day, exactly one matches and the other returns ErrCheckInConflict.
func (m *MongoStorage) SwapCheckIn(ctx context.Context, id string, prev string, next CheckInUpdate) (*models.Habit, error) {
	oid, err := habitID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "last_done": prev}
	update := bson.M{"$set": bson.M{
		"points":    next.Points,
		"streak":    next.Streak,
		"last_done": next.LastDone,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	habit := &models.Habit{}
	err = m.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(habit)
	if err == mongo.ErrNoDocuments {
		// Either the habit is gone or someone else won the race. Re-read
		// without the last_done condition to tell the two apart.
		if _, findErr := m.FindHabit(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrCheckInConflict
	} else if err != nil {
		return nil, err
	}
	return habit, nil
}
