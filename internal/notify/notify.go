// Package notify delivers fire-and-forget notifications: the "QR codes
// ready" mail and the realtime order stream of a restaurant.
package notify

import (
	"context"
	"sync"
	"time"

	"menuely/internal/model"

	"github.com/rs/zerolog"
)

// Notifier is what the services call. Methods return immediately and never
// report delivery failures.
type Notifier interface {
	QRCodesReady(ctx context.Context, restaurant model.Restaurant, menuName string, tables []model.TableURL)
	OrderCreated(ctx context.Context, restaurantID int64, summary model.OrderSummary)
}

// QRCodesReadyMessage is the payload handed to the mail transport.
type QRCodesReadyMessage struct {
	RestaurantID   int64            `json:"restaurantId"`
	Email          string           `json:"email"`
	RestaurantName string           `json:"restaurantName"`
	MenuName       string           `json:"menuName"`
	Tables         []model.TableURL `json:"tables"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// Mailer sends the QR codes mail.
type Mailer interface {
	SendQRCodesReady(ctx context.Context, msg QRCodesReadyMessage) error
}

// OrderStream pushes new orders to a restaurant's listeners.
type OrderStream interface {
	PublishOrder(ctx context.Context, restaurantID int64, summary model.OrderSummary) error
}

// Sink implements Notifier by dispatching each notification on its own
// goroutine with a bounded timeout.
type Sink struct {
	mailer  Mailer
	stream  OrderStream
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewSink creates a Sink. A nil mailer or stream makes that notification
// log-only.
func NewSink(mailer Mailer, stream OrderStream, timeout time.Duration, logger zerolog.Logger) *Sink {
	return &Sink{
		mailer:  mailer,
		stream:  stream,
		timeout: timeout,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

// QRCodesReady mails the table URLs to the restaurant.
func (s *Sink) QRCodesReady(ctx context.Context, restaurant model.Restaurant, menuName string, tables []model.TableURL) {
	msg := QRCodesReadyMessage{
		RestaurantID:   restaurant.ID,
		Email:          restaurant.Email,
		RestaurantName: restaurant.Name,
		MenuName:       menuName,
		Tables:         append([]model.TableURL(nil), tables...),
		CreatedAt:      time.Now().UTC(),
	}

	logger := s.logger.With().
		Str("notification", "qr_codes_ready").
		Int64("restaurant_id", restaurant.ID).
		Int("tables", len(tables)).
		Logger()

	if s.mailer == nil {
		logger.Info().Str("menu", menuName).Msg("mail transport not configured, notification logged only")
		return
	}

	s.dispatch(ctx, logger, func(ctx context.Context) error {
		return s.mailer.SendQRCodesReady(ctx, msg)
	})
}

// OrderCreated pushes the order summary to the restaurant's stream.
func (s *Sink) OrderCreated(ctx context.Context, restaurantID int64, summary model.OrderSummary) {
	logger := s.logger.With().
		Str("notification", "order_created").
		Int64("restaurant_id", restaurantID).
		Int64("order_id", summary.OrderID).
		Logger()

	if s.stream == nil {
		logger.Info().Msg("order stream not configured, notification logged only")
		return
	}

	s.dispatch(ctx, logger, func(ctx context.Context) error {
		return s.stream.PublishOrder(ctx, restaurantID, summary)
	})
}

func (s *Sink) dispatch(ctx context.Context, logger zerolog.Logger, send func(ctx context.Context) error) {
	// Detached from the request so a finished response does not cancel delivery.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := send(ctx); err != nil {
			logger.Warn().Err(err).Msg("notification delivery failed")
			return
		}
		logger.Debug().Msg("notification delivered")
	}()
}

// Close waits for in-flight notifications or until ctx is done.
func (s *Sink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
