package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/workforce-analytics-api/internal/domain"
)

const redisSaveRetries = 5

// RedisModelStore хранит модели в Redis в виде JSON.
// Замена набора выполняется через WATCH + MULTI/EXEC, чтение - одним MGET.
type RedisModelStore struct {
	client redis.UniversalClient
}

// NewRedisModelStore создаёт хранилище поверх клиента Redis
func NewRedisModelStore(client redis.UniversalClient) *RedisModelStore {
	return &RedisModelStore{client: client}
}

func redisKey(departmentID int64, target string) string {
	return fmt.Sprintf("trained_model:%d:%s", departmentID, target)
}

func (s *RedisModelStore) Save(ctx context.Context, models ...*domain.TrainedModel) error {
	if len(models) == 0 {
		return nil
	}

	keys := make([]string, len(models))
	for i, m := range models {
		keys[i] = redisKey(m.DepartmentID, m.Target)
	}

	versions := make([]int64, len(models))
	txf := func(tx *redis.Tx) error {
		prev, err := tx.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}

		pairs := make([]any, 0, 2*len(models))
		for i, m := range models {
			versions[i] = 1
			if raw, ok := prev[i].(string); ok {
				var old domain.TrainedModel
				if err := json.Unmarshal([]byte(raw), &old); err != nil {
					return fmt.Errorf("decode %s: %w", keys[i], err)
				}
				versions[i] = old.Version + 1
			}

			stored := *m
			stored.Version = versions[i]
			payload, err := json.Marshal(&stored)
			if err != nil {
				return err
			}
			pairs = append(pairs, keys[i], payload)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.MSet(ctx, pairs...)
			return nil
		})
		return err
	}

	var err error
	for range redisSaveRetries {
		err = s.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return &domain.ModelStoreError{Op: "save", Err: err}
	}

	for i, m := range models {
		m.Version = versions[i]
	}
	return nil
}

func (s *RedisModelStore) Load(ctx context.Context, departmentID int64, target string) (*domain.TrainedModel, error) {
	raw, err := s.client.Get(ctx, redisKey(departmentID, target)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrModelNotFound
		}
		return nil, &domain.ModelStoreError{Op: "load", Err: err}
	}

	var model domain.TrainedModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, &domain.ModelStoreError{Op: "decode", Err: err}
	}
	return &model, nil
}

func (s *RedisModelStore) LoadSet(ctx context.Context, departmentID int64, targets ...string) (map[string]*domain.TrainedModel, error) {
	result := make(map[string]*domain.TrainedModel, len(targets))
	if len(targets) == 0 {
		return result, nil
	}

	keys := make([]string, len(targets))
	for i, target := range targets {
		keys[i] = redisKey(departmentID, target)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, &domain.ModelStoreError{Op: "load", Err: err}
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var model domain.TrainedModel
		if err := json.Unmarshal([]byte(raw), &model); err != nil {
			return nil, &domain.ModelStoreError{Op: "decode", Err: err}
		}
		result[targets[i]] = &model
	}
	return result, nil
}
