//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"wishlist/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.Require().NoError(s.redis.Client.Health(context.Background()))
	s.store = NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) TearDownSuite() {
	s.redis.Terminate(context.Background())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestFixedWindow() {
	ctx := context.Background()
	s.store.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC) }

	for i := range 3 {
		result, err := s.store.Allow(ctx, "ip:203.0.113.7", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-(i+1), result.Remaining)
	}

	result, err := s.store.Allow(ctx, "ip:203.0.113.7", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC), result.ResetAt)

	s.Require().NoError(s.store.Reset(ctx, "ip:203.0.113.7"))
	result, err = s.store.Allow(ctx, "ip:203.0.113.7", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
