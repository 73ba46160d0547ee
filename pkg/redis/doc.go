// Package redis connects to Redis with retries and exposes a readiness probe.
// The returned client backs the shared rate-limit counters and the
// browser-scoped session tier.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := ratelimiter.NewRedisStore(client)
package redis
