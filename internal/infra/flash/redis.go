package flash

import (
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sidCookie = "flash_sid"
	keyPrefix = "flash:"
	redisTTL  = 10 * time.Minute
)

// RedisStore keeps messages in a redis list keyed by a random browser id
// held in a cookie.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Add(c *gin.Context, category, text string) error {
	sid := sessionID(c)
	if sid == "" {
		sid = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sidCookie, sid, 0, "/", "", false, true)
	}

	raw, err := sonic.Marshal(Message{Category: category, Text: text})
	if err != nil {
		return err
	}

	ctx := c.Request.Context()
	key := keyPrefix + sid
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, raw)
		p.Expire(ctx, key, redisTTL)
		return nil
	})
	return err
}

func (s *RedisStore) Take(c *gin.Context) ([]Message, error) {
	sid := sessionID(c)
	if sid == "" {
		return nil, nil
	}

	ctx := c.Request.Context()
	key := keyPrefix + sid
	var lr *redis.StringSliceCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		lr = p.LRange(ctx, key, 0, -1)
		p.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return decode(lr.Val()), nil
}

func decode(raw []string) []Message {
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		var m Message
		if err := sonic.UnmarshalString(v, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// sessionID returns the browser id only when it parses as a uuid.
func sessionID(c *gin.Context) string {
	v, err := c.Cookie(sidCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(v); err != nil {
		return ""
	}
	return v
}
