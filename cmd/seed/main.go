// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"cookfeed/internal/config"
	"cookfeed/internal/database"
	"cookfeed/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 8, "Number of users to create")
	numPosts := flag.Int("posts", 30, "Number of posts to create")
	numItems := flag.Int("items", 10, "Number of shopping items to create")
	shouldClean := flag.Bool("clean", false, "Delete existing rows before seeding")
	password := flag.String("password", seed.DefaultPassword, "Password for every seeded user")
	fakerSeed := flag.Int64("seed", 0, "Fake data seed (0 = random)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, %d items, clean=%v\n", *numUsers, *numPosts, *numItems, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		NumItems:    *numItems,
		ShouldClean: *shouldClean,
		Password:    *password,
		Seed:        *fakerSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d users, %d posts, %d items.\n", res.Users, res.Posts, res.Items)
	log.Printf("📧 All seeded users have the password: %s\n", *password)
}
