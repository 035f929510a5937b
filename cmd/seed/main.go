// Command main fills the configured post store with demo posts.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"reelsocial/internal/bootstrap"
	"reelsocial/internal/config"
	"reelsocial/internal/featureflags"
	"reelsocial/internal/seed"
	"reelsocial/internal/service"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of distinct authors")
	flag.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "Number of standard posts to create")
	flag.IntVar(&opts.NumMoviePosts, "movie-posts", opts.NumMoviePosts, "Number of movie posts to create")
	flag.IntVar(&opts.MaxViews, "max-views", opts.MaxViews, "Upper bound of views recorded per post")
	flag.IntVar(&opts.MaxLikes, "max-likes", opts.MaxLikes, "Upper bound of likes per post")
	flag.Int64Var(&opts.Seed, "seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.Parse()

	log.Println("Post Seeder")
	log.Printf("Target: %d users, %d posts, %d movie posts\n", opts.NumUsers, opts.NumPosts, opts.NumMoviePosts)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to open post store: %v", err)
	}
	defer func() {
		if err := rt.Close(ctx); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	svc := service.NewPostService(rt.PostRepo, featureflags.NewManager(cfg.FeatureFlags))
	res, err := seed.Seed(ctx, svc, opts)
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		return
	}

	log.Printf("Seeded %d posts by %d users (%d views, %d likes) into %s store",
		len(res.Posts), len(res.Users), res.Views, res.Likes, cfg.StoreDriver)
}
