package main

import (
	"github.com/redis/go-redis/v9"

	"github.com/sweeney/alarmd/internal/config"
	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/marker"
)

// Key prefixes of the three marker kinds inside the Redis prefix.
const (
	redisCommandPrefix = "cmd:"
	redisDisablePrefix = "disable:"
	redisSensorPrefix  = "sensor:"
)

// openMarkers returns the command, override and fault stores plus a func
// that releases them.
func openMarkers(cfg config.Markers) (logic.Markers, func() error) {
	if cfg.Store == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return logic.Markers{
			Commands:  marker.NewRedis(client, cfg.RedisPrefix+redisCommandPrefix),
			Overrides: marker.NewRedis(client, cfg.RedisPrefix+redisDisablePrefix),
			Faults:    marker.NewRedis(client, cfg.RedisPrefix+redisSensorPrefix),
		}, client.Close
	}
	return logic.Markers{
		Commands:  marker.NewDir(cfg.CommandDir),
		Overrides: marker.NewDir(cfg.DisableDir),
		Faults:    marker.NewDir(cfg.SensorDir),
	}, func() error { return nil }
}
