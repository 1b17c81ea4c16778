package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

func sampleResult() *entity.ExtractionResult {
	return entity.NewSuccessResult(
		[]entity.Contact{{Name: "John Doe", Role: "PHOTOGRAPHER", Phone: "+19175551234", Confidence: 0.74, Source: constants.SourcePattern}},
		entity.Metadata{Strategy: constants.StrategyPattern, TextLength: 37},
	)
}

func TestKey(t *testing.T) {
	a := Key("text", entity.Options{MaxContacts: 5})
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("text", entity.Options{MaxContacts: 5}))
	assert.NotEqual(t, a, Key("text", entity.Options{MaxContacts: 6}))
	assert.NotEqual(t, a, Key("text2", entity.Options{MaxContacts: 5}))
}

func TestMemory(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", sampleResult(), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Contacts[0].Name)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute)
	require.NoError(t, m.Set(context.Background(), "k", sampleResult(), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", sampleResult(), time.Minute))
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestNew(t *testing.T) {
	c, err := New(common.CacheConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New(common.CacheConfig{Backend: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, c)

	_, err = New(common.CacheConfig{Backend: "memcached"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

type RedisCacheSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *Redis
}

func (s *RedisCacheSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedis(db, nil, WithPrefix("test:"), WithDefaultTTL(time.Minute))
}

func (s *RedisCacheSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *RedisCacheSuite) TestGet_Hit() {
	data, _ := json.Marshal(sampleResult())
	s.mock.ExpectGet("test:result:k1").SetVal(string(data))

	got, err := s.cache.Get(context.Background(), "k1")
	s.Require().NoError(err)
	s.True(got.Success)
	s.Equal("+19175551234", got.Contacts[0].Phone)
	s.Equal(constants.StrategyPattern, got.Metadata.Strategy)
}

func (s *RedisCacheSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:result:k1").RedisNil()

	_, err := s.cache.Get(context.Background(), "k1")
	s.ErrorIs(err, common.ErrCacheMiss)
}

func (s *RedisCacheSuite) TestGet_CorruptPayloadIsMiss() {
	s.mock.ExpectGet("test:result:k1").SetVal("{not json")

	_, err := s.cache.Get(context.Background(), "k1")
	s.ErrorIs(err, common.ErrCacheMiss)
}

func (s *RedisCacheSuite) TestGet_Error() {
	s.mock.ExpectGet("test:result:k1").SetErr(errors.New("conn refused"))

	_, err := s.cache.Get(context.Background(), "k1")
	s.Error(err)
	s.NotErrorIs(err, common.ErrCacheMiss)
}

func (s *RedisCacheSuite) TestSet_DefaultTTL() {
	res := sampleResult()
	data, _ := json.Marshal(res)
	s.mock.ExpectSet("test:result:k1", data, time.Minute).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k1", res, 0))
}

func (s *RedisCacheSuite) TestSet_Error() {
	res := sampleResult()
	data, _ := json.Marshal(res)
	s.mock.ExpectSet("test:result:k1", data, 5*time.Second).SetErr(errors.New("readonly"))

	s.Error(s.cache.Set(context.Background(), "k1", res, 5*time.Second))
}

func (s *RedisCacheSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	s.NoError(s.cache.Ping(context.Background()))
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}
