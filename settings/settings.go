// Package settings fronts the settings table with a short redis cache.
package settings

import (
	"context"
	"errors"
	"time"

	"ong_equipment_tool/db"
	"ong_equipment_tool/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

type Store struct {
	repo *db.Repo
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger

	loaded func() // 测试用：数据库读完、写缓存前调用
}

func NewStore(repo *db.Repo, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{repo: repo, rdb: rdb, ttl: ttl, log: log}
}

func cacheKey(key string) string { return "settings:" + key }

// genKey is bumped on every Put; a cache fill only lands when it has not
// moved since the database read.
func genKey(key string) string { return "settings:" + key + ":gen" }

func (s *Store) Get(ctx context.Context, key string) (*models.Setting, error) {
	return s.repo.GetSetting(ctx, key)
}

// Put writes through to the database and drops the cached copy.
func (s *Store) Put(ctx context.Context, key, value string) (*models.Setting, error) {
	st, err := s.repo.PutSetting(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		pipe := s.rdb.TxPipeline()
		pipe.Incr(ctx, genKey(st.Key))
		pipe.Del(ctx, cacheKey(st.Key))
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Warn("settings cache invalidation failed", zap.String("key", st.Key), zap.Error(err))
		}
	}
	s.log.Info("setting updated", zap.String("key", st.Key))
	return st, nil
}

// FinePerDay never fails: cache, then database, then zero.
func (s *Store) FinePerDay(ctx context.Context) decimal.Decimal {
	key := models.SettingFinePerDay

	if s.rdb != nil {
		v, err := s.rdb.Get(ctx, cacheKey(key)).Result()
		switch {
		case err == nil:
			if d, perr := db.ParseRate(v); perr == nil {
				return d
			}
			s.log.Warn("bad cached fine_per_day", zap.String("value", v))
		case errors.Is(err, redis.Nil):
		default:
			s.log.Warn("settings cache read failed", zap.Error(err))
		}
	}

	var gen string
	if s.rdb != nil {
		gen, _ = s.rdb.Get(ctx, genKey(key)).Result()
	}

	d, err := s.repo.SettingDecimal(ctx, key)
	if err != nil {
		s.log.Warn("fine_per_day unavailable, using 0", zap.Error(err))
		return decimal.Zero
	}
	if s.loaded != nil {
		s.loaded()
	}
	if s.rdb != nil {
		s.fill(ctx, key, gen, d.String())
	}
	return d
}

// fill caches value unless a Put ran since gen was read. WATCH makes a Put
// that lands between the check and EXEC abort the write.
func (s *Store) fill(ctx context.Context, key, gen, value string) {
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(key), value, s.ttl)
			return nil
		})
		return err
	}, genKey(key))
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		s.log.Debug("settings cache write failed", zap.Error(err))
	}
}
