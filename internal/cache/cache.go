package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/config"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/domain"
	"github.com/sysu-ecnc-dev/class-timetable/backend/internal/timetable"
)

// Digest 计算工作簿内容与课表结构的摘要，作为缓存的键
func Digest(sc *config.ScheduleConfig, sheets []domain.Sheet) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(sc); err != nil {
		return "", err
	}
	if err := enc.Encode(sheets); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Extractions 在进程内缓存工作簿的提取结果。缓存的结果只读，不允许调用方修改
type Extractions struct {
	cache *lru.Cache[string, *timetable.WorkbookResult]
}

func NewExtractions(size int) (*Extractions, error) {
	c, err := lru.New[string, *timetable.WorkbookResult](size)
	if err != nil {
		return nil, err
	}
	return &Extractions{cache: c}, nil
}

func (e *Extractions) Get(digest string) (*timetable.WorkbookResult, bool) {
	if e == nil {
		return nil, false
	}
	return e.cache.Get(digest)
}

func (e *Extractions) Add(digest string, result *timetable.WorkbookResult) {
	if e == nil {
		return
	}
	e.cache.Add(digest, result)
}

func (e *Extractions) Len() int {
	if e == nil {
		return 0
	}
	return e.cache.Len()
}

// Indexes 在 redis 中缓存按教室或教师生成的课表
type Indexes struct {
	rdb        *redis.Client
	expiration time.Duration
}

func NewIndexes(rdb *redis.Client, expiration time.Duration) *Indexes {
	return &Indexes{rdb: rdb, expiration: expiration}
}

func indexKey(digest string, kind timetable.KeyKind, key string, useRoster bool) string {
	return fmt.Sprintf("index_%s_%s_%s_%t", digest, kind, strings.ToUpper(key), useRoster)
}

// Get 读取缓存，没有命中时返回 nil, nil
func (c *Indexes) Get(ctx context.Context, digest string, kind timetable.KeyKind, key string, useRoster bool) (*timetable.CrossIndex, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}

	data, err := c.rdb.Get(ctx, indexKey(digest, kind, key, useRoster)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	idx := &timetable.CrossIndex{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (c *Indexes) Set(ctx context.Context, digest string, idx *timetable.CrossIndex, useRoster bool) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, indexKey(digest, idx.Kind, idx.Key, useRoster), data, c.expiration).Err()
}
