package probe

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisRunner probes destinations whose probe command is a Redis address
// ("host:port"). A successful PING maps to exit code 0, a failed one to 1.
type RedisRunner struct {
	Password string
	DB       int
	PoolSize int
}

// NewRedisRunner creates a Redis PING probe runner
func NewRedisRunner() *RedisRunner {
	return &RedisRunner{PoolSize: 1}
}

// Execute pings the Redis server at the address in command
func (r *RedisRunner) Execute(ctx context.Context, command string) (int, error) {
	poolSize := r.PoolSize
	if poolSize == 0 {
		poolSize = 1
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     command,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: poolSize,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return 1, nil
	}
	return 0, nil
}
