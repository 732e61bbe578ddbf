package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEventType is returned when a row carries a type tag with no
// registered decoder.
var ErrUnknownEventType = errors.New("unknown event type")

// DecodeFunc turns a serialized payload into its typed value.
type DecodeFunc func(content []byte) (any, error)

type subscription struct {
	name    string
	handler Handler
}

// Registry maps event type tags to decoders and handlers. The mapping is
// explicit: only registered tags can be dispatched.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
	handlers map[string][]subscription
	global   []subscription
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]DecodeFunc),
		handlers: make(map[string][]subscription),
	}
}

// RegisterDecoder binds eventType to decode. Registering a tag twice is an
// error.
func (r *Registry) RegisterDecoder(eventType string, decode DecodeFunc) error {
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}
	if decode == nil {
		return fmt.Errorf("decoder for %s is nil", eventType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[eventType]; exists {
		return fmt.Errorf("decoder for %s already registered", eventType)
	}
	r.decoders[eventType] = decode
	return nil
}

// RegisterJSON registers a decoder that unmarshals the payload into T.
func RegisterJSON[T any](r *Registry, eventType string) error {
	return r.RegisterDecoder(eventType, func(content []byte) (any, error) {
		var payload T
		if err := json.Unmarshal(content, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
}

// Subscribe adds h for the given event types. Handlers run in subscription
// order.
func (r *Registry) Subscribe(name string, h Handler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range eventTypes {
		r.handlers[t] = append(r.handlers[t], subscription{name: name, handler: h})
	}
}

// SubscribeAll adds h for every event type. It runs after the type-specific
// handlers.
func (r *Registry) SubscribeAll(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.global = append(r.global, subscription{name: name, handler: h})
}

// Decode resolves eventType to its decoder and decodes content.
func (r *Registry) Decode(eventType string, content []byte) (any, error) {
	r.mu.RLock()
	decode, ok := r.decoders[eventType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	payload, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	return payload, nil
}

func (r *Registry) subscriptions(eventType string) []subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]subscription, 0, len(r.handlers[eventType])+len(r.global))
	subs = append(subs, r.handlers[eventType]...)
	subs = append(subs, r.global...)
	return subs
}

// Types lists the registered event type tags.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
