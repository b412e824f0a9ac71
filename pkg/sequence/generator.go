package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"creatorplane/pkg/rediskey"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(NewRedisGenerator),
)

type Generator interface {
	NextCampaignCode(ctx context.Context, tenantID string) (string, error)
	NextSlotCode(ctx context.Context, tenantID string) (string, error)
	NextVideoCode(ctx context.Context, tenantID string) (string, error)
	NextSubmissionCode(ctx context.Context, tenantID string) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisGenerator(p Params) Generator {
	return &RedisGenerator{
		rdb: p.Redis,
	}
}

func (g *RedisGenerator) NextCampaignCode(ctx context.Context, tenantID string) (string, error) {
	return g.nextDailyCode(ctx, "CMP", tenantID)
}

func (g *RedisGenerator) NextSlotCode(ctx context.Context, tenantID string) (string, error) {
	return g.nextDailyCode(ctx, "SLT", tenantID)
}

func (g *RedisGenerator) NextVideoCode(ctx context.Context, tenantID string) (string, error) {
	return g.nextDailyCode(ctx, "VID", tenantID)
}

func (g *RedisGenerator) NextSubmissionCode(ctx context.Context, tenantID string) (string, error) {
	return g.nextDailyCode(ctx, "SUB", tenantID)
}

func (g *RedisGenerator) nextDailyCode(ctx context.Context, prefix, tenantCode string) (string, error) {
	today := time.Now().UTC().Format("060102")
	key := rediskey.BuildSequenceKey(prefix, tenantCode, today)

	seq, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}

	if seq == 1 {
		expire := time.Until(time.Now().Truncate(24 * time.Hour).Add(24*time.Hour - time.Second))
		_ = g.rdb.Expire(ctx, key, expire).Err()
	}

	// base36, padded to at least 3 characters
	encodedSeq := strings.ToUpper(fmt.Sprintf("%03s", strconv.FormatInt(seq, 36)))

	randSuffix, _ := randomAlphaNumeric(2)

	return fmt.Sprintf("%s-%s-%s%s", prefix, today, encodedSeq, randSuffix), nil
}

func randomAlphaNumeric(n int) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		b[i] = chars[num.Int64()]
	}
	return string(b), nil
}
