package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/cityhunt/cityhunt/internal/model"
)

// StoreSuite exercises the Store contract against an implementation
type StoreSuite struct {
	suite.Suite
	store Store
	ctx   context.Context
}

func (s *StoreSuite) TestSaveAndGet() {
	sess := &Session{
		Token:   "tok_abc",
		Role:    model.RolePlayer,
		Contact: "alice@example.com",
	}

	err := s.store.Save(s.ctx, "sid-1", sess)
	s.Require().NoError(err)

	got, err := s.store.Get(s.ctx, "sid-1")
	s.Require().NoError(err)
	s.Equal("tok_abc", got.Token)
	s.Equal(model.RolePlayer, got.Role)
	s.Equal("alice@example.com", got.Contact)
}

func (s *StoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestDelete() {
	sess := &Session{Token: "tok_x", Role: model.RoleAdmin, Username: "admin"}
	s.Require().NoError(s.store.Save(s.ctx, "sid-2", sess))

	s.Require().NoError(s.store.Delete(s.ctx, "sid-2"))

	_, err := s.store.Get(s.ctx, "sid-2")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestDeleteMissingIsNoop() {
	s.NoError(s.store.Delete(s.ctx, "never-existed"))
}

func (s *StoreSuite) TestOverwrite() {
	s.Require().NoError(s.store.Save(s.ctx, "sid-3", &Session{Token: "tok_old", Role: model.RolePlayer}))
	s.Require().NoError(s.store.Save(s.ctx, "sid-3", &Session{Token: "tok_new", Role: model.RoleAdmin}))

	got, err := s.store.Get(s.ctx, "sid-3")
	s.Require().NoError(err)
	s.Equal("tok_new", got.Token)
	s.Equal(model.RoleAdmin, got.Role)
}

func (s *StoreSuite) TestSavedSessionIsDetached() {
	sess := &Session{Token: "tok_y", Role: model.RolePlayer}
	s.Require().NoError(s.store.Save(s.ctx, "sid-4", sess))

	sess.Token = "mutated"

	got, err := s.store.Get(s.ctx, "sid-4")
	s.Require().NoError(err)
	s.Equal("tok_y", got.Token)
}

type MemoryStoreSuite struct {
	StoreSuite
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

type RedisStoreSuite struct {
	StoreSuite
	mini *miniredis.Miniredis
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultRedisConfig()
	cfg.SessionTTL = time.Hour

	s.store = NewRedisStoreWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *RedisStoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *RedisStoreSuite) TestSessionExpires() {
	sess := &Session{Token: "tok_ttl", Role: model.RolePlayer}
	s.Require().NoError(s.store.Save(s.ctx, "sid-ttl", sess))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.store.Get(s.ctx, "sid-ttl")
	s.ErrorIs(err, ErrNotFound)
}
