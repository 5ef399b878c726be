package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ad_token:"

// Issuer hands out ad-view correlation tokens. The token string carries the
// user id and issuance time in the clear and has no integrity protection;
// redis is what makes it single-use and time-bounded.
type Issuer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIssuer(rdb *redis.Client, ttl time.Duration) *Issuer {
	return &Issuer{rdb: rdb, ttl: ttl}
}

func (i *Issuer) Issue(ctx context.Context, userID int64) (string, error) {
	tok := fmt.Sprintf("TOKEN_%d_%d", userID, time.Now().UnixNano())
	if err := i.rdb.Set(ctx, keyPrefix+tok, userID, i.ttl).Err(); err != nil {
		return "", fmt.Errorf("store ad token: %w", err)
	}
	return tok, nil
}

// Consume redeems a token. It is valid exactly once, only before its TTL and
// only for the user it was issued to.
func (i *Issuer) Consume(ctx context.Context, userID int64, tok string) (bool, error) {
	val, err := i.rdb.GetDel(ctx, keyPrefix+tok).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redeem ad token: %w", err)
	}
	owner, err := strconv.ParseInt(val, 10, 64)
	return err == nil && owner == userID, nil
}
