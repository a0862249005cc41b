package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"moduscap-be/internal/metrics"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOptionFinder struct {
	mock.Mock
}

func (m *MockOptionFinder) FindOptionByCode(ctx context.Context, code string) (*ProductOption, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProductOption), args.Error(1)
}

func sampleOption() *ProductOption {
	return &ProductOption{
		ID:       10,
		Code:     "bardage-bois",
		Price:    "50.00",
		IsActive: true,
		Group:    &ProductOptionGroup{ID: 5, Code: "facade", InputType: InputSingleSelect},
		Translations: Translations{
			{Locale: "fr", Name: "Bardage bois"},
		},
	}
}

func TestCachedOptionFinder_FindOptionByCode(t *testing.T) {
	ctx := context.Background()
	ttl := 10 * time.Minute
	key := "product_option:bardage-bois"

	opt := sampleOption()
	data, err := json.Marshal(opt)
	require.NoError(t, err)

	t.Run("MissPopulatesCache", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		reg := metrics.NewRegistry()
		cache := NewCachedOptionFinder(finder, client, ttl, reg)

		rmock.ExpectGet(key).RedisNil()
		finder.On("FindOptionByCode", ctx, "bardage-bois").Return(opt, nil).Once()
		rmock.ExpectSet(key, data, ttl).SetVal("OK")

		got, err := cache.FindOptionByCode(ctx, "bardage-bois")
		require.NoError(t, err)
		assert.Equal(t, opt, got)
		assert.Equal(t, uint64(1), reg.Counter(metrics.OptionCacheMisses).Load())
		assert.NoError(t, rmock.ExpectationsWereMet())
		finder.AssertExpectations(t)
	})

	t.Run("Hit", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		reg := metrics.NewRegistry()
		cache := NewCachedOptionFinder(finder, client, ttl, reg)

		rmock.ExpectGet(key).SetVal(string(data))

		got, err := cache.FindOptionByCode(ctx, "bardage-bois")
		require.NoError(t, err)
		assert.Equal(t, "50.00", got.Price)
		assert.Equal(t, "Bardage bois", got.Name("fr"))
		assert.Equal(t, uint64(1), reg.Counter(metrics.OptionCacheHits).Load())
		finder.AssertNotCalled(t, "FindOptionByCode", mock.Anything, mock.Anything)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("RedisErrorFallsThrough", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		cache := NewCachedOptionFinder(finder, client, ttl, metrics.NewRegistry())

		rmock.ExpectGet(key).SetErr(errors.New("connection refused"))
		finder.On("FindOptionByCode", ctx, "bardage-bois").Return(opt, nil).Once()
		rmock.ExpectSet(key, data, ttl).SetErr(errors.New("connection refused"))

		got, err := cache.FindOptionByCode(ctx, "bardage-bois")
		require.NoError(t, err)
		assert.Equal(t, opt, got)
		finder.AssertExpectations(t)
	})

	t.Run("NotFoundIsNotCached", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		cache := NewCachedOptionFinder(finder, client, ttl, metrics.NewRegistry())

		rmock.ExpectGet("product_option:missing").RedisNil()
		finder.On("FindOptionByCode", ctx, "missing").Return(nil, nil).Once()

		got, err := cache.FindOptionByCode(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("FinderError", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		cache := NewCachedOptionFinder(finder, client, ttl, metrics.NewRegistry())

		rmock.ExpectGet(key).RedisNil()
		finder.On("FindOptionByCode", ctx, "bardage-bois").Return(nil, errors.New("db down")).Once()

		got, err := cache.FindOptionByCode(ctx, "bardage-bois")
		assert.EqualError(t, err, "db down")
		assert.Nil(t, got)
	})

	t.Run("CodeMismatchEvicts", func(t *testing.T) {
		client, rmock := redismock.NewClientMock()
		finder := new(MockOptionFinder)
		cache := NewCachedOptionFinder(finder, client, ttl, metrics.NewRegistry())

		other := sampleOption()
		other.Code = "fenetres-pvc"
		otherData, err := json.Marshal(other)
		require.NoError(t, err)

		rmock.ExpectGet(key).SetVal(string(otherData))
		rmock.ExpectDel(key).SetVal(1)
		finder.On("FindOptionByCode", ctx, "bardage-bois").Return(opt, nil).Once()
		rmock.ExpectSet(key, data, ttl).SetVal("OK")

		got, err := cache.FindOptionByCode(ctx, "bardage-bois")
		require.NoError(t, err)
		assert.Equal(t, "bardage-bois", got.Code)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestCachedOptionFinder_Invalidate(t *testing.T) {
	client, rmock := redismock.NewClientMock()
	cache := NewCachedOptionFinder(new(MockOptionFinder), client, time.Minute, metrics.NewRegistry())

	rmock.ExpectDel("product_option:bardage-bois").SetVal(1)

	assert.NoError(t, cache.Invalidate(context.Background(), "bardage-bois"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}
