package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Tamanna-Joshi/habit-tracker/models"
	"github.com/Tamanna-Joshi/habit-tracker/storage/cache"
	"github.com/streadway/amqp"
)

const eventQueueName = "checkinEvents"

// Processed-event markers outlive any realistic redelivery window.
const dedupeTTL = 72 * time.Hour

// globalCount is used in the round robin algorithm that assigns a producer
// to each published event.
var globalCount int

// CheckInProducerFactory creates producers for check-in events.
type CheckInProducerFactory struct{}

// CheckInConsumerFactory creates consumers for check-in events.
// It carries the cache used to deduplicate redelivered events.
type CheckInConsumerFactory struct {
	Cache cache.CacheInterface
}

// CheckInProducer publishes check-in events to the AMQP queue.
type CheckInProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
}

// CheckInConsumer reads check-in events off the AMQP queue, drops
// duplicates via the cache, and announces streak milestones.
type CheckInConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   *amqp.Queue
	cache   cache.CacheInterface
}

// CreateProducer instantiates a new CheckInProducer bound to the given
// connection, channel and queue.
func (f *CheckInProducerFactory) CreateProducer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Producer, error) {
	return &CheckInProducer{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

// CreateConsumer instantiates a new CheckInConsumer bound to the given
// connection, channel and queue, using the factory's cache for dedupe.
func (f *CheckInConsumerFactory) CreateConsumer(conn *amqp.Connection, ch *amqp.Channel, queue *amqp.Queue) (Consumer, error) {
	return &CheckInConsumer{
		conn:    conn,
		channel: ch,
		queue:   queue,
		cache:   f.Cache,
	}, nil
}

// Publish sends a serialized event to the queue.
func (p *CheckInProducer) Publish(body []byte) error {
	err := p.channel.Publish(
		"",           // exchange
		p.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish check-in event: %w", err)
	}

	return nil
}

// milestoneFor returns the announcement for a streak worth celebrating, or
// "" for an ordinary day.
func milestoneFor(ev *models.CheckInEvent) string {
	switch ev.Streak {
	case 7:
		return fmt.Sprintf("habit %q hit a one-week streak (%d points)", ev.Name, ev.Points)
	case 30:
		return fmt.Sprintf("habit %q hit a 30-day streak (%d points)", ev.Name, ev.Points)
	case 100:
		return fmt.Sprintf("habit %q hit a 100-day streak (%d points)", ev.Name, ev.Points)
	case 365:
		return fmt.Sprintf("habit %q hit a full-year streak (%d points)", ev.Name, ev.Points)
	}
	return ""
}

// handleEvent processes a single decoded event exactly once. It returns an
// error only for transient failures that warrant a redelivery.
func (c *CheckInConsumer) handleEvent(ctx context.Context, ev *models.CheckInEvent) error {
	key := "checkin_" + ev.ID

	if c.cache != nil {
		_, err := c.cache.Get(ctx, key)
		if err == nil {
			// Already processed, drop the duplicate.
			return nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			return fmt.Errorf("error checking cache: %w", err)
		}
	}

	if msg := milestoneFor(ev); msg != "" {
		log.Printf("milestone: %s", msg)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, "1", dedupeTTL); err != nil {
			log.Printf("failed to mark event %s as processed: %v", ev.ID, err)
		}
	}
	return nil
}

// Consume sets up a consumer on the queue and launches a goroutine that
// reads events until the context is cancelled. Malformed payloads are
// dropped; transient failures are nacked for redelivery.
func (c *CheckInConsumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}

				ev := &models.CheckInEvent{}
				if err := json.Unmarshal(d.Body, ev); err != nil {
					log.Printf("failed to unmarshal check-in event: %v", err)
					d.Nack(false, false) // poison message, do not requeue
					continue
				}

				if err := c.handleEvent(ctx, ev); err != nil {
					log.Printf("failed to handle check-in event: %v", err)
					d.Nack(false, true)
					continue
				}
				d.Ack(false)

			case <-ctx.Done():
				return
			}
		}
	}()

	return msgs, nil
}

// BuildCheckInQueue initializes a Queue for check-in events with the given
// number of producers and consumers. The cache may be nil, in which case
// consumers skip deduplication.
func BuildCheckInQueue(rabbitMQURL string, numProducers, numConsumers int, dedupeCache cache.CacheInterface) (*Queue, error) {
	prodFactories := make([]ProducerFactory, numProducers)
	for i := 0; i < numProducers; i++ {
		prodFactories[i] = &CheckInProducerFactory{}
	}

	consFactories := make([]ConsumerFactory, numConsumers)
	for i := 0; i < numConsumers; i++ {
		consFactories[i] = &CheckInConsumerFactory{Cache: dedupeCache}
	}

	return InitQueue(rabbitMQURL, eventQueueName, prodFactories, consFactories)
}

// PublishCheckIn serializes a check-in event and publishes it onto the
// queue using one of the producers in a round-robin manner.
func PublishCheckIn(ev *models.CheckInEvent, q *Queue) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal check-in event: %w", err)
	}

	producerCount := len(q.Producers)
	if producerCount == 0 {
		return errors.New("no producers available")
	}

	producer := q.Producers[globalCount%producerCount]
	globalCount++

	if err := producer.Publish(body); err != nil {
		return fmt.Errorf("failed to publish check-in event: %w", err)
	}

	return nil
}
