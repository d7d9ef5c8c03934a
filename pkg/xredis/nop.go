package xredis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// nopClient is used when redis is disabled. Every read is a cache miss.
type nopClient struct{}

func NewNopClient() *nopClient {
	return &nopClient{}
}

func (nopClient) Exist(context.Context, string) (bool, error)              { return false, nil }
func (nopClient) Del(context.Context, ...string) error                     { return nil }
func (nopClient) Keys(context.Context, string) ([]string, error)           { return nil, nil }
func (nopClient) Get(context.Context, string) (string, error)              { return "", redis.Nil }
func (nopClient) Incr(context.Context, string) (int64, error)              { return 0, nil }
func (nopClient) SetObj(context.Context, string, any, time.Duration) error { return nil }
func (nopClient) GetObj(context.Context, string, any) error                { return redis.Nil }
