package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"foodOrder/cart"
	"foodOrder/models"

	"github.com/redis/go-redis/v9"
)

const cartTTL = 24 * time.Hour

// CartRepository keeps the full cart value serialized per cart session.
// The aggregate itself lives in the cart package; this layer only loads
// and stores whole values.
type CartRepository interface {
	SetCart(cartSessionId string, c cart.Cart) (err error)
	GetCart(cartSessionId string) (res cart.Cart, err error)
	DeleteCart(cartSessionId string) (err error)
}

type CartRepo struct {
	rdb *redis.Client
	ctx context.Context
}

func NewCartRepository(redisConn *redis.Client, ctx context.Context) (CartRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &CartRepo{
		rdb: redisConn,
		ctx: ctx,
	}, nil
}

func (c *CartRepo) SetCart(cartSessionId string, crt cart.Cart) (err error) {
	jsonData, err := json.Marshal(crt)
	if err != nil {
		log.Errorf("SetCart: marshal: %v", err)
		err = models.ErrServerError
		return
	}
	err = c.rdb.Set(c.ctx, cartKey(cartSessionId), jsonData, cartTTL).Err()
	if err != nil {
		log.Errorf("SetCart: redis: %v", err)
		err = models.ErrServerError
	}
	return
}

// GetCart returns the empty default cart when no value is stored yet.
func (c *CartRepo) GetCart(cartSessionId string) (res cart.Cart, err error) {
	res = cart.New()
	val, e := c.rdb.Get(c.ctx, cartKey(cartSessionId)).Result()
	if e != nil {
		if e == redis.Nil {
			return
		}
		log.Errorf("GetCart: redis: %v", e)
		err = models.ErrServerError
		return
	}
	err = json.Unmarshal([]byte(val), &res)
	if err != nil {
		log.Errorf("GetCart: unmarshal: %v", err)
		res = cart.New()
		err = models.ErrServerError
	}
	return
}

func (c *CartRepo) DeleteCart(cartSessionId string) (err error) {
	err = c.rdb.Del(c.ctx, cartKey(cartSessionId)).Err()
	if err != nil {
		log.Errorf("DeleteCart: redis: %v", err)
		err = models.ErrServerError
	}
	return
}

func cartKey(cartSessionId string) string {
	return "cart:" + cartSessionId
}
