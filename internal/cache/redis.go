package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects the package-level client. The whale cache is optional,
// so a failed ping only logs and leaves Client nil.
func InitRedis(ctx context.Context, addr string) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: failed to connect to Redis at %s, whale cache disabled: %v", addr, err)
		Client = nil
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
