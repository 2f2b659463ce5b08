package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buslane/internal/migrations/mongo/validators"
	"buslane/pkg/model"
)

var (
	CitiesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	RoutesIndexes = []mongo.IndexModel{
		// One document per directional pair; concurrent get-or-create
		// upserts converge on it.
		{
			Keys: bson.D{
				{Key: "origin_id", Value: 1},
				{Key: "destination_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	VehiclesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "carrier_id", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "carrier_id", Value: 1}}},
	}

	AssignmentsIndexes = []mongo.IndexModel{
		// One price band per (vehicle, route).
		{
			Keys: bson.D{
				{Key: "vehicle_id", Value: 1},
				{Key: "route_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "route_id", Value: 1}}},
	}

	IntervalsIndexes = []mongo.IndexModel{
		// Rejects literal duplicates; also serves the overlap query.
		{
			Keys: bson.D{
				{Key: "vehicle_id", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		// TTL garbage-collects locks left behind by crashed commits.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

// seedCities is the immutable reference data the route endpoints resolve
// against. Inserted only when the collection is empty.
var seedCities = []model.City{
	{Name: "Tel Aviv", Region: "Center"},
	{Name: "Jerusalem", Region: "Jerusalem"},
	{Name: "Haifa", Region: "North"},
	{Name: "Beer Sheva", Region: "South"},
	{Name: "Eilat", Region: "South"},
	{Name: "Tiberias", Region: "North"},
	{Name: "Netanya", Region: "Center"},
	{Name: "Ashdod", Region: "South"},
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Cities": {
			Indexes:   CitiesIndexes,
			Validator: validators.CityValidator,
		},
		"Routes": {
			Indexes:   RoutesIndexes,
			Validator: validators.RouteValidator,
		},
		"Vehicles": {
			Indexes:   VehiclesIndexes,
			Validator: validators.VehicleValidator,
		},
		"Assignments": {
			Indexes:   AssignmentsIndexes,
			Validator: validators.AssignmentValidator,
		},
		"Commitment_intervals": {
			Indexes:   IntervalsIndexes,
			Validator: validators.IntervalValidator,
		},
		"Slot_locks": {
			Indexes:   SlotLocksIndexes,
			Validator: validators.SlotLockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	if err := seedCityData(ctx, db); err != nil {
		return fmt.Errorf("failed to seed cities: %w", err)
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("Collection %s already exists, updating validator\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}

func seedCityData(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("Cities")

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("Cities already seeded (%d documents)\n", count)
		return nil
	}

	docs := make([]any, 0, len(seedCities))
	for _, city := range seedCities {
		docs = append(docs, city)
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return err
	}
	fmt.Printf("Seeded %d cities\n", len(seedCities))
	return nil
}
