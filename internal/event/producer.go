package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codedits/bitecheck/internal/domain"
	pkgkafka "github.com/codedits/bitecheck/pkg/kafka"
)

// Kafka topic constants for review and restaurant domain events.
const (
	TopicReviewCreated     = "bitecheck.review.created"
	TopicReviewUpdated     = "bitecheck.review.updated"
	TopicReviewDeleted     = "bitecheck.review.deleted"
	TopicRestaurantRemoved = "bitecheck.restaurant.removed"
	TopicUserDeleted       = "bitecheck.user.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeReview     = "review"
	AggregateTypeRestaurant = "restaurant"
	AggregateTypeUser       = "user"
)

// Source identifier for events originating from this service.
const SourceBitecheck = "bitecheck-api"

// ReviewData is the payload for review.created and review.updated events.
type ReviewData struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	RestaurantName string   `json:"restaurant_name"`
	Rating         float64  `json:"rating"`
	Images         []string `json:"images,omitempty"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	RestaurantName string `json:"restaurant_name"`
}

// RestaurantRemovedData is the payload for a restaurant.removed event,
// published when a restaurant's last review is deleted.
type RestaurantRemovedData struct {
	Name string `json:"name"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	ID          string   `json:"id"`
	Restaurants []string `json:"restaurants,omitempty"`
}

// Producer publishes review and restaurant domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, rv *domain.Review) error {
	return p.publishReview(ctx, TopicReviewCreated, rv)
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, rv *domain.Review) error {
	return p.publishReview(ctx, TopicReviewUpdated, rv)
}

func (p *Producer) publishReview(ctx context.Context, topic string, rv *domain.Review) error {
	data := ReviewData{
		ID:             rv.ID,
		UserID:         rv.UserID,
		RestaurantName: rv.RestaurantName,
		Rating:         rv.Rating,
		Images:         rv.Images,
	}

	event, err := pkgkafka.NewEvent(topic, rv.ID, AggregateTypeReview, SourceBitecheck, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", rv.ID),
		slog.String("restaurant", rv.RestaurantName),
	)

	return nil
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, rv *domain.Review) error {
	data := ReviewDeletedData{
		ID:             rv.ID,
		UserID:         rv.UserID,
		RestaurantName: rv.RestaurantName,
	}

	event, err := pkgkafka.NewEvent(TopicReviewDeleted, rv.ID, AggregateTypeReview, SourceBitecheck, data)
	if err != nil {
		return fmt.Errorf("create review.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewDeleted, event); err != nil {
		return fmt.Errorf("publish review.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.deleted event",
		slog.String("review_id", rv.ID),
		slog.String("restaurant", rv.RestaurantName),
	)

	return nil
}

// PublishRestaurantRemoved publishes a restaurant.removed event.
func (p *Producer) PublishRestaurantRemoved(ctx context.Context, name string) error {
	event, err := pkgkafka.NewEvent(TopicRestaurantRemoved, name, AggregateTypeRestaurant, SourceBitecheck, RestaurantRemovedData{Name: name})
	if err != nil {
		return fmt.Errorf("create restaurant.removed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicRestaurantRemoved, event); err != nil {
		return fmt.Errorf("publish restaurant.removed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published restaurant.removed event",
		slog.String("restaurant", name),
	)

	return nil
}

// PublishUserDeleted publishes a user.deleted event carrying the restaurant
// names whose aggregates the deletion touched.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string, restaurants []string) error {
	event, err := pkgkafka.NewEvent(TopicUserDeleted, userID, AggregateTypeUser, SourceBitecheck, UserDeletedData{ID: userID, Restaurants: restaurants})
	if err != nil {
		return fmt.Errorf("create user.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserDeleted, event); err != nil {
		return fmt.Errorf("publish user.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.deleted event",
		slog.String("user_id", userID),
	)

	return nil
}
