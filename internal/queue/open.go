package queue

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Open builds the queue named by backend (memory, redis or rabbitmq). The
// returned close func releases backend connections.
func Open(backend string, client *redis.Client, rabbitURL, name string) (Queue, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "memory":
		return NewInMemory(256), noop, nil
	case "redis", "":
		return NewRedisQueue(client, name), noop, nil
	case "rabbitmq":
		q, err := NewRabbitQueue(rabbitURL, name)
		if err != nil {
			return nil, nil, err
		}
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", backend)
	}
}
