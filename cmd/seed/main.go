// Command seed populates the profile directory and relationship tables with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"amizades/internal/bootstrap"
	"amizades/internal/config"
	"amizades/internal/seed"
)

func main() {
	// Parse command line flags
	numProfiles := flag.Int("profiles", 50, "Number of profiles to generate")
	friends := flag.Int("friends", 4, "Average friendships per generated profile")
	requests := flag.Int("requests", 2, "Average pending requests per generated profile")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("file", "", "Load a YAML fixture instead of generating data")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	s := seed.NewSeeder(rt.DB, seed.Options{
		NumProfiles:        *numProfiles,
		FriendsPerProfile:  *friends,
		RequestsPerProfile: *requests,
		ShouldClean:        *shouldClean,
		RandSeed:           *randSeed,
	})

	var res seed.Result
	if *fixture != "" {
		f, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		res, err = s.ApplyFixture(ctx, f)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		res, err = s.SeedSocialMesh(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %d profiles, %d friendships, %d pending requests", res.Profiles, res.Friendships, res.Requests)
}
