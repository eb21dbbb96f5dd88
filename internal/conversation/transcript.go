package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTranscript keeps the recent chat history in Redis lists, one list
// per identity, trimmed to a maximum length and expired after a TTL.
type RedisTranscript struct {
	client  *redis.Client
	maxMsgs int
	ttl     time.Duration
}

// NewRedisTranscript creates the transcript cache.
func NewRedisTranscript(client *redis.Client, maxMsgs int, ttl time.Duration) *RedisTranscript {
	return &RedisTranscript{client: client, maxMsgs: maxMsgs, ttl: ttl}
}

func transcriptKey(identity string) string {
	return fmt.Sprintf("transcript:%s", identity)
}

// Append adds one turn to the identity's transcript, trims the list and
// refreshes the TTL, all in one pipeline round trip.
func (t *RedisTranscript) Append(ctx context.Context, identity, role, content string) error {
	entry := TranscriptEntry{Role: role, Content: content, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling transcript entry: %w", err)
	}

	key := transcriptKey(identity)
	pipe := t.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-t.maxMsgs), -1)
	pipe.Expire(ctx, key, t.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Recent returns the last `limit` turns in chronological order.
func (t *RedisTranscript) Recent(ctx context.Context, identity string, limit int) ([]TranscriptEntry, error) {
	key := transcriptKey(identity)
	vals, err := t.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]TranscriptEntry, 0, len(vals))
	for _, v := range vals {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear deletes the identity's transcript.
func (t *RedisTranscript) Clear(ctx context.Context, identity string) error {
	return t.client.Del(ctx, transcriptKey(identity)).Err()
}
