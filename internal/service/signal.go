package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	rideready "github.com/rideready/rideready"
)

// EventChannel is the redis pub/sub channel carrying catalog changes.
const EventChannel = "rideready:events"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event rideready.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, EventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe streams catalog events into output until ctx is done.
func (s *SignalService) Subscribe(ctx context.Context, output chan<- rideready.Event) error {
	sub := s.rdb.Subscribe(ctx, EventChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event rideready.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
