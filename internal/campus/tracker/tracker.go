// internal/campus/tracker/tracker.go
package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"campus-assistant-workers/internal/common/config"
	"campus-assistant-workers/internal/common/database"
	"campus-assistant-workers/internal/common/errors"
	"campus-assistant-workers/internal/common/logger"
	"campus-assistant-workers/internal/models"
)

// Tracker keeps one ConversationState JSON document per sender in Redis.
// Every save refreshes the TTL, so a conversation expires as a whole after
// the configured idle window.
type Tracker struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func New(redisClient *database.RedisClient, cfg config.TrackerConfig, log logger.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTL) * time.Millisecond,
		logger: log,
	}
}

// Load fetches the state document for a sender. An absent key yields a
// fresh zero state. A document that no longer parses is discarded with a
// warning instead of wedging the conversation.
func (t *Tracker) Load(ctx context.Context, senderID string) (*models.ConversationState, error) {
	raw, err := t.redis.Get(ctx, t.key(senderID))
	if err == redis.Nil {
		return &models.ConversationState{}, nil
	}
	if err != nil {
		return nil, errors.NewTrackerReadFailedError(err)
	}

	state := &models.ConversationState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		t.logger.Warn("discarding unreadable conversation state", map[string]interface{}{
			"senderId": senderID,
			"error":    err.Error(),
		})
		return &models.ConversationState{}, nil
	}
	return state, nil
}

// Save writes the state document and restarts its TTL.
func (t *Tracker) Save(ctx context.Context, senderID string, state *models.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return errors.NewTrackerWriteFailedError(err)
	}
	if err := t.redis.Set(ctx, t.key(senderID), payload, t.ttl); err != nil {
		return errors.NewTrackerWriteFailedError(err)
	}
	return nil
}

// Clear drops the sender's state document.
func (t *Tracker) Clear(ctx context.Context, senderID string) error {
	if err := t.redis.Del(ctx, t.key(senderID)); err != nil {
		return errors.NewTrackerWriteFailedError(err)
	}
	return nil
}

func (t *Tracker) key(senderID string) string {
	return t.prefix + senderID
}
