// Package kv is the persistence boundary of the storefront: a flat key-value
// store that the catalog, order and coupon registries mirror their state into.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Logical keys of the mirrored registries.
const (
	KeyProducts = "products"
	KeyOrders   = "orders"
	KeyCoupons  = "coupons"
)

type Store interface {
	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Document is a typed view over a single key.
type Document[T any] struct {
	store Store
	codec Codec
	key   string
}

func NewDocument[T any](store Store, codec Codec, key string) *Document[T] {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Document[T]{store: store, codec: codec, key: key}
}

func (d *Document[T]) Key() string {
	return d.key
}

func (d *Document[T]) Load(ctx context.Context) (T, bool, error) {
	var v T

	raw, ok, err := d.store.Get(ctx, d.key)
	if err != nil {
		return v, false, fmt.Errorf("kv: failed to read %q: %w", d.key, err)
	}
	if !ok {
		return v, false, nil
	}

	if err := d.codec.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("kv: failed to decode %q: %w", d.key, err)
	}

	return v, true, nil
}

func (d *Document[T]) Save(ctx context.Context, v T) error {
	raw, err := d.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: failed to encode %q: %w", d.key, err)
	}

	if err := d.store.Set(ctx, d.key, raw); err != nil {
		return fmt.Errorf("kv: failed to write %q: %w", d.key, err)
	}

	return nil
}
