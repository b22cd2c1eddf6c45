// migrations/001_initial_indexes.go
package migrations

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetInitialIndexesMigration returns the initial indexes migration
func GetInitialIndexesMigration() Migration {
	return Migration{
		ID:          "001_initial_indexes",
		Description: "Create initial database indexes for all collections",
		Up:          createInitialIndexes,
		Down:        dropInitialIndexes,
	}
}

func createInitialIndexes(ctx context.Context, db *mongo.Database) error {
	log.Println("Creating initial database indexes...")

	if err := createUsersIndexes(ctx, db); err != nil {
		return err
	}
	if err := createLibraryEntriesIndexes(ctx, db); err != nil {
		return err
	}
	if err := createEngagementEventsIndexes(ctx, db); err != nil {
		return err
	}
	if err := createTimePreferencesIndexes(ctx, db); err != nil {
		return err
	}
	if err := createRankingEventsIndexes(ctx, db); err != nil {
		return err
	}

	log.Println("All initial indexes created successfully")
	return nil
}

func createUsersIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("users")

	if err := EnsureUniqueIndex(ctx, collection, bson.D{{"email", 1}}); err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{"created_at", -1}}},
	}

	if err := CreateIndexesSafely(ctx, collection, indexes); err != nil {
		return err
	}

	log.Println("Users indexes created")
	return nil
}

// createLibraryEntriesIndexes covers the feed's candidate-set lookups: active
// entries for a user, per-category tabs, duplicate-url detection, and the
// library list's recency ordering.
func createLibraryEntriesIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("library_entries")

	// url is omitted entirely for text/image entries, so the uniqueness
	// constraint only applies to documents where it is actually present.
	if err := EnsurePartialUniqueIndex(ctx, collection, bson.D{{"user_id", 1}, {"url", 1}}, bson.M{"url": bson.M{"$exists": true}}); err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{"user_id", 1}, {"status", 1}}},
		{Keys: bson.D{{"user_id", 1}, {"added_at", -1}}},
		{Keys: bson.D{{"user_id", 1}, {"categories", 1}, {"status", 1}}},
	}

	if err := CreateIndexesSafely(ctx, collection, indexes); err != nil {
		return err
	}

	log.Println("Library entries indexes created")
	return nil
}

// createEngagementEventsIndexes supports the engagement timeline queries the
// running-mean updater and session-signal builder depend on.
func createEngagementEventsIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("engagement_events")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{"user_id", 1}, {"link_id", 1}, {"created_at", -1}}},
		{Keys: bson.D{{"user_id", 1}, {"event_type", 1}, {"created_at", -1}}},
		{Keys: bson.D{{"user_id", 1}, {"session_id", 1}, {"created_at", -1}}},
		{Keys: bson.D{{"user_id", 1}, {"feed_request_id", 1}, {"created_at", -1}}},
	}

	if err := CreateIndexesSafely(ctx, collection, indexes); err != nil {
		return err
	}

	log.Println("Engagement events indexes created")
	return nil
}

// createTimePreferencesIndexes backs the per-(hour-slot, day-type) lookup the
// feed does on every request, one document per category per slot per user.
func createTimePreferencesIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("time_preferences")

	if err := EnsureUniqueIndex(ctx, collection, bson.D{
		{"user_id", 1}, {"hour_slot", 1}, {"day_type", 1}, {"category", 1},
	}); err != nil {
		return err
	}

	log.Println("Time preferences indexes created")
	return nil
}

// createRankingEventsIndexes supports the training-dataset export's join
// against engagement outcomes and the per-request candidate ordering lookup.
func createRankingEventsIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("ranking_events")

	if err := EnsureUniqueIndex(ctx, collection, bson.D{{"feed_request_id", 1}, {"link_id", 1}}); err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{"user_id", 1}, {"created_at", -1}}},
		{Keys: bson.D{{"user_id", 1}, {"feed_request_id", 1}, {"candidate_rank", 1}}},
		{Keys: bson.D{{"user_id", 1}, {"link_id", 1}, {"created_at", -1}}},
	}

	if err := CreateIndexesSafely(ctx, collection, indexes); err != nil {
		return err
	}

	log.Println("Ranking events indexes created")
	return nil
}

func dropInitialIndexes(ctx context.Context, db *mongo.Database) error {
	log.Println("Dropping initial database indexes...")

	collections := []string{
		"users", "library_entries", "engagement_events", "time_preferences", "ranking_events",
	}

	for _, name := range collections {
		collection := db.Collection(name)
		if _, err := collection.Indexes().DropAll(ctx); err != nil {
			log.Printf("Warning: failed to drop indexes on %s: %v", name, err)
		}
	}

	log.Println("Initial indexes dropped")
	return nil
}
