// Package notify pushes analysis completion alerts onto a Redis list.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/models"
	"github.com/rs/zerolog"
)

const DefaultQueue = "phisnet:completions"

// CompletionEvent is the JSON payload pushed for every finished analysis.
type CompletionEvent struct {
	RecordID    string              `json:"recordId"`
	FileName    string              `json:"fileName"`
	Category    models.Category     `json:"category"`
	Status      models.UploadStatus `json:"status"`
	Risk        models.RiskLabel    `json:"risk,omitempty"`
	Confidence  int                 `json:"confidence,omitempty"`
	Threats     []string            `json:"threats,omitempty"`
	Error       string              `json:"error,omitempty"`
	CompletedAt time.Time           `json:"completedAt"`
}

// NewCompletionEvent builds the payload for a terminal record.
func NewCompletionEvent(rec models.UploadRecord) CompletionEvent {
	ev := CompletionEvent{
		RecordID:    rec.ID,
		FileName:    rec.FileName,
		Category:    rec.Category,
		Status:      rec.Status,
		Error:       rec.Error,
		CompletedAt: rec.UpdatedAt,
	}
	if rec.CompletedAt != nil {
		ev.CompletedAt = *rec.CompletedAt
	}
	if rec.Result != nil {
		ev.Risk = rec.Result.Risk
		ev.Confidence = rec.Result.Confidence
		ev.Threats = append([]string(nil), rec.Result.Threats...)
	}
	return ev
}

// pusher is the part of the redis client the publisher needs.
type pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher implements upload.CompletionSink.
type RedisPublisher struct {
	client pusher
	queue  string
	log    zerolog.Logger
}

// NewRedisPublisher connects to Redis and checks the connection.
func NewRedisPublisher(addr, password string, db int, queue string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newPublisher(rdb, queue), nil
}

func newPublisher(client pusher, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisPublisher{
		client: client,
		queue:  queue,
		log:    logger.Component("notify"),
	}
}

// OnComplete pushes one completion event.
func (p *RedisPublisher) OnComplete(ctx context.Context, rec models.UploadRecord) error {
	data, err := json.Marshal(NewCompletionEvent(rec))
	if err != nil {
		return err
	}
	if err := p.client.LPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push completion to %s: %w", p.queue, err)
	}
	p.log.Debug().Str("record", logger.ShortID(rec.ID)).Str("queue", p.queue).Msg("completion published")
	return nil
}

// Queue returns the list the events are pushed to.
func (p *RedisPublisher) Queue() string {
	return p.queue
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
