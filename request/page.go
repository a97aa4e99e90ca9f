package request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	perrors "github.com/jmgilman/go/errors"
)

// PageMeta is the pagination block every list response carries.
type PageMeta struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Envelope is a decoded list response: the items array plus its PageMeta.
type Envelope[T any] struct {
	Items []T
	PageMeta
}

// DecodeEnvelope decodes a list response whose items live under itemsKey.
func DecodeEnvelope[T any](data []byte, itemsKey string) (Envelope[T], error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope[T]{}, perrors.Wrap(err, perrors.CodeSchemaFailed, "decode list response")
	}
	return envelopeFrom[T](raw, itemsKey)
}

func envelopeFrom[T any](raw map[string]json.RawMessage, itemsKey string) (Envelope[T], error) {
	var env Envelope[T]

	items, ok := raw[itemsKey]
	if !ok {
		return env, perrors.New(perrors.CodeSchemaFailed, fmt.Sprintf("list response missing %q", itemsKey))
	}
	if err := json.Unmarshal(items, &env.Items); err != nil {
		return env, perrors.Wrap(err, perrors.CodeSchemaFailed, "decode "+itemsKey)
	}
	if env.Items == nil {
		env.Items = []T{}
	}

	for key, dst := range map[string]*int{"total": &env.Total, "skip": &env.Skip, "limit": &env.Limit} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return env, perrors.Wrap(err, perrors.CodeSchemaFailed, "decode "+key)
		}
	}
	return env, nil
}

// GetPage issues a GET against a list endpoint and decodes its envelope.
func GetPage[T any](ctx context.Context, c *Client, path string, query url.Values, itemsKey string) (Envelope[T], error) {
	raw, err := Get[map[string]json.RawMessage](ctx, c, path, query)
	if err != nil {
		return Envelope[T]{}, err
	}
	return envelopeFrom[T](raw, itemsKey)
}
