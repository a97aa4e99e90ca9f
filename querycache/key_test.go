package querycache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuildKey_StableAcrossParamOrder(t *testing.T) {
	a := map[string]any{"limit": 10, "skip": 20, "search": "love", "tag": "history"}
	b := map[string]any{"tag": "history", "search": "love", "skip": 20, "limit": 10}

	ka, err := BuildKey("posts", []string{"authors"}, a)
	if err != nil {
		t.Fatalf("BuildKey() error = %v", err)
	}
	kb, err := BuildKey("posts", []string{"authors"}, b)
	if err != nil {
		t.Fatalf("BuildKey() error = %v", err)
	}
	if ka.String() != kb.String() {
		t.Errorf("keys differ: %s vs %s", ka, kb)
	}
}

func TestBuildKey_StructAndMapAgree(t *testing.T) {
	type params struct {
		Skip  int `json:"skip"`
		Limit int `json:"limit"`
	}

	fromStruct := MustBuildKey("comments", []string{"post", "1"}, params{Skip: 0, Limit: 5})
	fromMap := MustBuildKey("comments", []string{"post", "1"}, map[string]int{"limit": 5, "skip": 0})
	if fromStruct.String() != fromMap.String() {
		t.Errorf("keys differ: %s vs %s", fromStruct, fromMap)
	}
}

func TestBuildKey_DifferentParamsDiffer(t *testing.T) {
	k1 := MustBuildKey("posts", []string{"authors"}, map[string]any{"skip": 0})
	k2 := MustBuildKey("posts", []string{"authors"}, map[string]any{"skip": 10})
	if k1.String() == k2.String() {
		t.Errorf("different params produced the same key %s", k1)
	}
}

func TestBuildKey_EmptyParamsOmitted(t *testing.T) {
	type empty struct {
		Skip int `json:"skip,omitempty"`
	}

	for _, params := range []any{nil, map[string]any{}, empty{}} {
		key := MustBuildKey("tags", nil, params)
		if key.String() != "tags" {
			t.Errorf("BuildKey(%v) = %s, want tags", params, key)
		}
	}
}

func TestBuildKey_HashSegmentFormat(t *testing.T) {
	key := MustBuildKey("posts", []string{"authors"}, map[string]any{"limit": 10})
	if len(key) != 3 {
		t.Fatalf("len(key) = %d, want 3", len(key))
	}
	if len(key[2]) != 16 {
		t.Errorf("hash segment %q should be 16 hex chars", key[2])
	}
}

func TestBuildKey_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		scope   []string
		params  any
		wantErr error
	}{
		{"empty entity", "", nil, nil, ErrInvalidKey},
		{"slash in scope", "posts", []string{"a/b"}, nil, ErrInvalidKey},
		{"blank scope", "posts", []string{" "}, nil, ErrInvalidKey},
		{"too long", strings.Repeat("x", MaxKeyLength+1), nil, nil, ErrKeyTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildKey(tt.entity, tt.scope, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := BuildKey("posts", nil, map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("expected error for unencodable params")
	}
}

func TestKey_HasPrefix(t *testing.T) {
	key := Key{"comments", "post", "12", "abcd"}

	tests := []struct {
		prefix Key
		want   bool
	}{
		{Key{"comments"}, true},
		{Key{"comments", "post", "12"}, true},
		{Key{"comments", "post", "1"}, false},
		{Key{"comments", "post", "12", "abcd", "x"}, false},
		{Key{}, true},
	}
	for _, tt := range tests {
		if got := key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("HasPrefix(%v) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestFreshnessPolicy_Effective(t *testing.T) {
	p := FreshnessPolicy{Default: 5 * time.Minute, Max: 30 * time.Minute}

	tests := []struct {
		requested, want time.Duration
	}{
		{DefaultFreshness, 5 * time.Minute},
		{0, 0},
		{10 * time.Minute, 10 * time.Minute},
		{90 * time.Minute, 30 * time.Minute},
	}
	for _, tt := range tests {
		if got := p.Effective(tt.requested); got != tt.want {
			t.Errorf("Effective(%v) = %v, want %v", tt.requested, got, tt.want)
		}
	}
}
