package main

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestReadinessChecks_RedisOnlyWhenAuditDisabled(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()

	checks := readinessChecks(client, nil)
	if len(checks) != 1 {
		t.Fatalf("expected only the redis check, got %d", len(checks))
	}
	if _, ok := checks["postgres"]; ok {
		t.Fatalf("postgres check registered without a pool")
	}

	if err := checks["redis"](context.Background()); err != nil {
		t.Fatalf("expected redis to be ready: %v", err)
	}

	s.Close()
	if err := checks["redis"](context.Background()); err == nil {
		t.Fatalf("expected redis check to fail after shutdown")
	}
}
