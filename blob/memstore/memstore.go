// Copyright 2019 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memstore implements the [blob.KV] interface using an in-memory
// map, for tests and small jobs that do not need a durable store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/bupstream/chunker/blob"
)

// KV implements the [blob.KV] interface using an in-memory map. The
// contents of a KV are not persisted. All operations are safe for
// concurrent use by multiple goroutines.
type KV struct {
	μ sync.RWMutex
	m map[string]string
}

// New constructs a new, empty key-value store.
func New() *KV { return &KV{m: make(map[string]string)} }

// Snapshot copies a snapshot of the keys and values of s into m.
// If m == nil, a new empty map is allocated and returned.
func (s *KV) Snapshot(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	s.μ.RLock()
	defer s.μ.RUnlock()
	for k, v := range s.m {
		m[k] = v
	}
	return m
}

// Get implements part of [blob.KV].
func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.μ.RLock()
	defer s.μ.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, blob.KeyNotFound(key)
	}
	return []byte(v), nil
}

// Has implements part of [blob.KV].
func (s *KV) Has(_ context.Context, keys ...string) (blob.KeySet, error) {
	s.μ.RLock()
	defer s.μ.RUnlock()
	var out blob.KeySet
	for _, key := range keys {
		if _, ok := s.m[key]; ok {
			out.Add(key)
		}
	}
	return out, nil
}

// Put implements part of [blob.KV].
func (s *KV) Put(_ context.Context, opts blob.PutOptions) error {
	s.μ.Lock()
	defer s.μ.Unlock()
	if _, ok := s.m[opts.Key]; ok && !opts.Replace {
		return blob.KeyExists(opts.Key)
	}
	s.m[opts.Key] = string(opts.Data)
	return nil
}

// Delete implements part of [blob.KV].
func (s *KV) Delete(_ context.Context, key string) error {
	s.μ.Lock()
	defer s.μ.Unlock()
	if _, ok := s.m[key]; !ok {
		return blob.KeyNotFound(key)
	}
	delete(s.m, key)
	return nil
}

// List implements part of [blob.KV].
func (s *KV) List(_ context.Context, start string) func(func(string, error) bool) {
	return func(yield func(string, error) bool) {
		s.μ.RLock()
		keys := make([]string, 0, len(s.m))
		for k := range s.m {
			if k >= start {
				keys = append(keys, k)
			}
		}
		s.μ.RUnlock()
		sort.Strings(keys)
		for _, k := range keys {
			if !yield(k, nil) {
				return
			}
		}
	}
}

// Len implements part of [blob.KV].
func (s *KV) Len(_ context.Context) (int64, error) {
	s.μ.RLock()
	defer s.μ.RUnlock()
	return int64(len(s.m)), nil
}
