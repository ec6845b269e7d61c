// Package messaging 은 Redis 연결과 pub/sub 발행을 제공합니다.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Publisher 는 채널에 메시지를 발행하는 인터페이스입니다
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// NewRedisClient 는 Redis 클라이언트를 생성하고 연결을 확인합니다
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return client, nil
}

// redisPublisher 는 Redis PUBLISH 로 Publisher 를 구현합니다
type redisPublisher struct {
	client redis.UniversalClient
}

// NewRedisPublisher 는 기존 Redis 클라이언트를 사용하는 Publisher 를 생성합니다
func NewRedisPublisher(client redis.UniversalClient) Publisher {
	return &redisPublisher{client: client}
}

// Publish 는 메시지를 JSON 으로 직렬화하여 발행합니다
func (r *redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("메시지 직렬화 실패: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// NoopPublisher 는 Redis 가 구성되지 않은 경우 사용하는 Publisher 입니다
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}
