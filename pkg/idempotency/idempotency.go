// Package idempotency remembers the response of a mutating request under the
// client-supplied Idempotency-Key so that retries replay it instead of
// settling a second order.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pesio-ai/be-procurement-settlement/pkg/errors"
)

const Header = "Idempotency-Key"

// Key returns the trimmed Idempotency-Key header, or "" when absent.
func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Response is a stored HTTP response.
type Response struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type entry struct {
	Pending  bool      `json:"pending"`
	Response *Response `json:"response,omitempty"`
}

// RedisStore keeps reservations and responses in redis under
// "<service>:idempotency:<scope>:<key>".
type RedisStore struct {
	client      redis.Cmdable
	serviceName string
	ttl         time.Duration
}

func NewRedisStore(client redis.Cmdable, serviceName string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, serviceName: serviceName, ttl: ttl}
}

func (s *RedisStore) generateKey(scope, key string) string {
	return fmt.Sprintf("%s:idempotency:%s:%s", s.serviceName, scope, key)
}

// Begin reserves key. It returns the stored response when the key was already
// completed, and a CONFLICT error while another request holds the reservation.
func (s *RedisStore) Begin(ctx context.Context, scope, key string) (*Response, error) {
	k := s.generateKey(scope, key)

	pending, _ := json.Marshal(entry{Pending: true})
	ok, err := s.client.SetNX(ctx, k, pending, s.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to reserve idempotency key")
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		// expired between SETNX and GET; let the caller proceed unreserved
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read idempotency key")
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode idempotency entry")
	}
	if e.Pending || e.Response == nil {
		return nil, errors.Conflict("a request with this idempotency key is still in progress")
	}
	return e.Response, nil
}

// Complete stores the response for later replays.
func (s *RedisStore) Complete(ctx context.Context, scope, key string, resp *Response) error {
	data, err := json.Marshal(entry{Response: resp})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode idempotency entry")
	}
	if err := s.client.Set(ctx, s.generateKey(scope, key), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to store idempotency entry")
	}
	return nil
}

// Abort drops a reservation so the client may retry after a failure.
func (s *RedisStore) Abort(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, s.generateKey(scope, key)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to release idempotency key")
	}
	return nil
}
