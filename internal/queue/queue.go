// Package queue publishes domain events to RabbitMQ for downstream consumers
// (notifications, analytics). Publishing is best-effort: a broker outage must
// never fail a booking.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const bookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a reservation transaction commits.
// It carries enough to notify or aggregate without querying the database.
type BookingConfirmedEvent struct {
	BookingID    int       `json:"booking_id"`
	Code         string    `json:"code"`
	UserID       int       `json:"user_id"`
	ShowtimeID   int       `json:"showtime_id"`
	MovieTitle   string    `json:"movie_title"`
	TheaterName  string    `json:"theater_name"`
	HallName     string    `json:"hall_name"`
	ShowtimeDate time.Time `json:"showtime_date"`
	Seats        []string  `json:"seats"`
	TotalPrice   string    `json:"total_price"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error
}

type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	// Idempotent; durable so messages survive broker restarts.
	_, err = ch.QueueDeclare(bookingConfirmedQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		bookingConfirmedQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
