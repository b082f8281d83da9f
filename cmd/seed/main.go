// Command main runs the database seeder for picstream.
package main

import (
	"flag"
	"log"

	"picstream/internal/config"
	"picstream/internal/database"
	"picstream/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.BoolVar(&opts.Clean, "clean", opts.Clean, "Clean database before seeding")
	flag.StringVar(&opts.Password, "password", opts.Password, "Password shared by all seeded users")
	flag.Parse()

	log.Printf("Seeding: %d users, %d posts, clean=%v", opts.Users, opts.Posts, opts.Clean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := seed.NewSeeder(db).Run(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done. All seeded users share the password %q", opts.Password)
}
