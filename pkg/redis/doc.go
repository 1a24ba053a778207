// Package redis connects to Redis and exposes a small namespaced key-value
// Storage on top of github.com/redis/go-redis/v9.
//
// Connect retries the initial ping according to Config, which is meant to be
// loaded with pkg/config:
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	kv := redis.NewStorage(client, cfg.KeyPrefix)
//	if err := kv.Set(ctx, "tenant:slug:acme", payload, time.Minute); err != nil {
//		return err
//	}
//
// Healthcheck returns a probe suitable for readiness endpoints.
//
// # Errors
//
// Sentinel errors such as ErrRedisNotReady wrap the driver error with
// errors.Join, so both can be matched with errors.Is.
package redis
