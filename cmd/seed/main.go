package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/embeddings"
	"swipevault/internal/models"
	"swipevault/internal/utils"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
)

// DataGenerator builds a synchronized set of fake users, library entries,
// engagement events, and time preferences for local development and demos.
type DataGenerator struct {
	users   []models.User
	entries []models.LibraryEntry
}

type GenerationConfig struct {
	UserCount         int
	EntriesPerUser    int
	EngagementPercent float64
	CleanExisting     bool
	Verbose           bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	genConfig := parseArgs()

	config.MustLoad()
	config.InitDB()
	defer config.Disconnect()

	generator := &DataGenerator{
		users:   make([]models.User, 0, genConfig.UserCount),
		entries: make([]models.LibraryEntry, 0, genConfig.UserCount*genConfig.EntriesPerUser),
	}

	gofakeit.Seed(time.Now().UnixNano())
	ctx := context.Background()

	printBanner()

	if genConfig.CleanExisting {
		log.Println("Cleaning existing data...")
		if err := generator.cleanExistingData(ctx); err != nil {
			log.Fatalf("Failed to clean existing data: %v", err)
		}
	}

	start := time.Now()

	log.Printf("Generating %d users...", genConfig.UserCount)
	if err := generator.generateUsers(ctx, genConfig); err != nil {
		log.Fatalf("Failed to generate users: %v", err)
	}
	log.Printf("Generated and synced %d users", len(generator.users))

	log.Printf("Generating ~%d library entries...", genConfig.UserCount*genConfig.EntriesPerUser)
	if err := generator.generateLibraryEntries(ctx, genConfig); err != nil {
		log.Fatalf("Failed to generate library entries: %v", err)
	}
	log.Printf("Generated and synced %d library entries", len(generator.entries))

	log.Println("Generating engagement events and time preferences...")
	if err := generator.generateEngagement(ctx, genConfig); err != nil {
		log.Fatalf("Failed to generate engagement data: %v", err)
	}

	duration := time.Since(start)
	printSummary(generator, genConfig, duration)
}

func parseArgs() GenerationConfig {
	genConfig := GenerationConfig{
		UserCount:         20,
		EntriesPerUser:    30,
		EngagementPercent: 0.6,
		CleanExisting:     false,
		Verbose:           false,
	}

	args := os.Args[1:]
	for i, arg := range args {
		switch arg {
		case "--users", "-u":
			if i+1 < len(args) {
				if count, err := strconv.Atoi(args[i+1]); err == nil {
					genConfig.UserCount = count
				}
			}
		case "--entries", "-e":
			if i+1 < len(args) {
				if count, err := strconv.Atoi(args[i+1]); err == nil {
					genConfig.EntriesPerUser = count
				}
			}
		case "--clean", "-c":
			genConfig.CleanExisting = true
		case "--verbose", "-v":
			genConfig.Verbose = true
		case "--help", "-h":
			printHelp()
			os.Exit(0)
		}
	}

	return genConfig
}

func printHelp() {
	fmt.Println(`
swipevault seed data generator

Usage: go run cmd/seed/main.go [options]

Options:
  -u, --users <count>    Number of users to generate (default: 20)
  -e, --entries <count>  Max library entries per user, random 1..count (default: 30)
  -c, --clean            Clean existing data before generation
  -v, --verbose          Verbose output
  -h, --help             Show this help message
`)
}

func printBanner() {
	fmt.Println(`
================================================================
  swipevault seed data generator
  users -> library entries -> engagement events -> time prefs
================================================================
`)
}

func printSummary(g *DataGenerator, genConfig GenerationConfig, duration time.Duration) {
	fmt.Println(`
================================================================
  Seed complete`)
	fmt.Printf("  Users:           %d\n", len(g.users))
	fmt.Printf("  Library entries: %d\n", len(g.entries))
	fmt.Printf("  Duration:        %v\n", duration)
	fmt.Println("================================================================")
}

func (g *DataGenerator) cleanExistingData(ctx context.Context) error {
	collections := []string{"users", "library_entries", "engagement_events", "time_preferences", "ranking_events"}
	for _, collection := range collections {
		if _, err := config.DB.Collection(collection).DeleteMany(ctx, bson.M{}); err != nil {
			log.Printf("Warning: failed to clean collection %s: %v", collection, err)
		}
	}
	return nil
}

func (g *DataGenerator) generateUsers(ctx context.Context, genConfig GenerationConfig) error {
	collection := config.DB.Collection("users")
	docs := make([]interface{}, 0, genConfig.UserCount)

	for i := 0; i < genConfig.UserCount; i++ {
		user := g.createRandomUser(i + 1)
		docs = append(docs, user)
		g.users = append(g.users, user)

		if genConfig.Verbose && (i+1)%10 == 0 {
			log.Printf("Generated %d/%d users", i+1, genConfig.UserCount)
		}
	}

	_, err := collection.InsertMany(ctx, docs)
	return err
}

func (g *DataGenerator) createRandomUser(index int) models.User {
	hashedPassword, _ := utils.HashPassword("password123")

	user := models.User{
		ID:           utils.NewID(),
		Email:        fmt.Sprintf("user%d@example.com", index),
		PasswordHash: hashedPassword,
	}
	user.BeforeCreate()
	return user
}

func (g *DataGenerator) generateLibraryEntries(ctx context.Context, genConfig GenerationConfig) error {
	collection := config.DB.Collection("library_entries")
	docs := make([]interface{}, 0, genConfig.UserCount*genConfig.EntriesPerUser)

	for _, user := range g.users {
		count := rand.Intn(genConfig.EntriesPerUser) + 1
		for i := 0; i < count; i++ {
			entry := g.createRandomEntry(user)
			docs = append(docs, entry)
			g.entries = append(g.entries, entry)
		}
	}

	batchSize := 200
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if _, err := collection.InsertMany(ctx, docs[i:end]); err != nil {
			return fmt.Errorf("failed to insert library entries batch: %w", err)
		}
	}

	return nil
}

func (g *DataGenerator) createRandomEntry(user models.User) models.LibraryEntry {
	contentTypes := []models.ContentType{
		models.ContentTypeArticle, models.ContentTypeYouTube, models.ContentTypeTweet,
		models.ContentTypeText, models.ContentTypeImage, models.ContentTypeGeneric,
	}
	contentType := contentTypes[rand.Intn(len(contentTypes))]

	categories := []string{embeddings.Vocabulary[rand.Intn(len(embeddings.Vocabulary))]}
	if rand.Float64() < 0.3 {
		second := embeddings.Vocabulary[rand.Intn(len(embeddings.Vocabulary))]
		if second != categories[0] {
			categories = append(categories, second)
		}
	}

	entry := models.LibraryEntry{
		ID:              utils.NewID(),
		UserID:          user.ID,
		Title:           gofakeit.Sentence(rand.Intn(6) + 3),
		Description:     gofakeit.Sentence(rand.Intn(12) + 5),
		SiteName:        gofakeit.DomainName(),
		ContentType:     contentType,
		Categories:      categories,
		Status:          models.StatusActive,
		ShownCount:      rand.Intn(20),
		EngagementScore: models.ClampEngagementScore(rand.Float64()),
		AvgDwellMs:      float64(rand.Intn(8000) + 500),
		OpenCount:       rand.Intn(5),
	}

	if contentType != models.ContentTypeText && contentType != models.ContentTypeImage {
		url := gofakeit.URL()
		entry.URL = &url
		entry.Thumbnail = gofakeit.ImageURL(600, 400)
	} else if contentType == models.ContentTypeText {
		entry.TextContent = gofakeit.Paragraph(2, 4, 10, " ")
	}

	if rand.Float64() < 0.1 {
		entry.Status = models.StatusArchived
		archived := gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now())
		entry.ArchivedAt = &archived
	}

	entry.BeforeCreate()
	entry.AddedAt = gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
	if entry.ShownCount > 0 {
		shown := entry.AddedAt.Add(time.Hour)
		entry.LastShownAt = &shown
	}

	return entry
}

func (g *DataGenerator) generateEngagement(ctx context.Context, genConfig GenerationConfig) error {
	events := config.DB.Collection("engagement_events")
	timePrefs := config.DB.Collection("time_preferences")

	eventDocs := make([]interface{}, 0)
	timePrefByKey := make(map[string]*models.TimePreference)

	for _, entry := range g.entries {
		if entry.ShownCount == 0 || rand.Float64() > genConfig.EngagementPercent {
			continue
		}

		sessionID := gofakeit.UUID()
		createdAt := gofakeit.DateRange(entry.AddedAt, time.Now())
		dayType := models.DayTypeFor(createdAt)
		hour := createdAt.Hour()

		impressionEvent := models.EngagementEvent{
			ID:        utils.NewID(),
			UserID:    entry.UserID,
			LinkID:    entry.ID,
			EventType: models.EventImpression,
			HourOfDay: hour,
			DayType:   dayType,
			SessionID: &sessionID,
			CreatedAt: createdAt,
		}
		eventDocs = append(eventDocs, impressionEvent)

		if rand.Float64() < 0.5 {
			dwellMs := int64(rand.Intn(6000) + 300)
			dwellEvent := models.EngagementEvent{
				ID:          utils.NewID(),
				UserID:      entry.UserID,
				LinkID:      entry.ID,
				EventType:   models.EventDwell,
				DwellTimeMs: &dwellMs,
				HourOfDay:   hour,
				DayType:     dayType,
				SessionID:   &sessionID,
				CreatedAt:   createdAt.Add(time.Second),
			}
			eventDocs = append(eventDocs, dwellEvent)
		}

		for _, category := range entry.Categories {
			key := fmt.Sprintf("%s|%d|%s|%s", entry.UserID, hour, dayType, category)
			pref, ok := timePrefByKey[key]
			if !ok {
				pref = &models.TimePreference{
					UserID:   entry.UserID,
					HourSlot: hour,
					DayType:  dayType,
					Category: category,
				}
				timePrefByKey[key] = pref
			}
			pref.SampleCount++
			pref.AvgEngagement += (entry.EngagementScore - pref.AvgEngagement) / float64(pref.SampleCount)
			pref.UpdatedAt = createdAt
		}
	}

	if len(eventDocs) > 0 {
		batchSize := 200
		for i := 0; i < len(eventDocs); i += batchSize {
			end := i + batchSize
			if end > len(eventDocs) {
				end = len(eventDocs)
			}
			if _, err := events.InsertMany(ctx, eventDocs[i:end]); err != nil {
				return fmt.Errorf("failed to insert engagement events batch: %w", err)
			}
		}
	}

	prefDocs := make([]interface{}, 0, len(timePrefByKey))
	for _, pref := range timePrefByKey {
		prefDocs = append(prefDocs, *pref)
	}
	if len(prefDocs) > 0 {
		if _, err := timePrefs.InsertMany(ctx, prefDocs); err != nil {
			return fmt.Errorf("failed to insert time preferences: %w", err)
		}
	}

	return nil
}
