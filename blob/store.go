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

// Package blob implements an interface and support code for persistent
// storage of opaque (untyped) binary blobs, used here to hold the chunk
// bytes produced by package split once the caller has hashed them into a
// content key.
//
// This is a single-keyspace trim of the teacher's blob package: the
// multi-namespace Store/Sub machinery that package supports is unneeded for
// a single chunk-tree run, so only KVCore/KV/CAS and the CAS-from-KV
// wrapper survive, adapted to stand alone.
package blob

import (
	"context"
	"errors"
	"iter"

	"golang.org/x/crypto/blake2b"
)

// Closer is an extension interface representing the ability to close and
// release resources claimed by a storage component.
type Closer interface {
	Close(context.Context) error
}

// KeySet represents a set of string keys.
type KeySet map[string]bool

// Has reports whether key is a member of s.
func (s KeySet) Has(key string) bool { return s[key] }

// Add inserts key into s.
func (s *KeySet) Add(key string) {
	if *s == nil {
		*s = make(KeySet)
	}
	(*s)[key] = true
}

// KVCore is the common interface shared by implementations of a key-value
// namespace. Users will generally not use this interface directly; it is
// included by reference in KV and CAS.
type KVCore interface {
	// Get fetches the contents of a blob from the store. If the key is not
	// found in the store, Get must report an ErrKeyNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Has reports which of the specified keys are present in the store.
	Has(ctx context.Context, keys ...string) (KeySet, error)

	// Delete atomically removes a blob from the store. If the key is not
	// found in the store, Delete must report an ErrKeyNotFound error.
	Delete(ctx context.Context, key string) error

	// List returns an iterator over each key in the store greater than or
	// equal to start, in lexicographic order. After the iterator reports
	// an error, it must immediately return, even if the yield function
	// reports true.
	List(ctx context.Context, start string) iter.Seq2[string, error]

	// Len reports the number of keys currently in the store.
	Len(ctx context.Context) (int64, error)
}

// PutOptions regulate the behaviour of the Put method of a KV
// implementation.
type PutOptions struct {
	Key     string // the key to associate with the data
	Data    []byte // the data to write
	Replace bool   // whether to replace an existing value for this key
}

// A KV represents a mutable set of key-value pairs in which each value is
// identified by a unique, opaque string key. Implementations must be safe
// for concurrent use by multiple goroutines.
type KV interface {
	KVCore

	// Put writes a blob to the store. If the store already contains the
	// specified key and opts.Replace is true, the existing value is
	// replaced without error; otherwise Put must report ErrKeyExists
	// without modifying the previous value.
	Put(ctx context.Context, opts PutOptions) error
}

// CAS represents a mutable set of content-addressed key-value pairs in
// which each value is identified by a unique, opaque string key.
type CAS interface {
	KVCore

	// CASPut writes data to a content-addressed blob in the underlying
	// store, and returns the assigned key.
	CASPut(ctx context.Context, data []byte) (string, error)

	// CASKey returns the content address of data without modifying the
	// store.
	CASKey(ctx context.Context, data []byte) string
}

// CASFromKV converts a KV into a CAS. If the concrete type of kv already
// implements CAS, it is returned as-is; otherwise it is wrapped in an
// implementation that computes content addresses using a blake2b digest of
// the content.
func CASFromKV(kv KV) CAS {
	if cas, ok := kv.(CAS); ok {
		return cas
	}
	return hashCAS{KV: kv}
}

// CASFromKVError combines an error check with a call to CASFromKV, for use
// by storage constructors that return (KV, error).
func CASFromKVError(kv KV, err error) (CAS, error) {
	if err != nil {
		return nil, err
	}
	return CASFromKV(kv), nil
}

var (
	// ErrKeyExists is reported by Put when writing a key that already
	// exists in the store.
	ErrKeyExists = errors.New("key already exists")

	// ErrKeyNotFound is reported by Get or Delete when given a key that
	// does not exist in the store.
	ErrKeyNotFound = errors.New("key not found")
)

// IsKeyNotFound reports whether err is or wraps ErrKeyNotFound.
func IsKeyNotFound(err error) bool { return err != nil && errors.Is(err, ErrKeyNotFound) }

// IsKeyExists reports whether err is or wraps ErrKeyExists.
func IsKeyExists(err error) bool { return err != nil && errors.Is(err, ErrKeyExists) }

// KeyError is the concrete type of errors involving a blob key.
type KeyError struct {
	Err error
	Key string
}

// Error implements the error interface for KeyError. The key is
// deliberately not included, since error values are often logged by
// default and keys may be sensitive.
func (k *KeyError) Error() string { return k.Err.Error() }

// Unwrap returns the underlying error from k, to support error wrapping.
func (k *KeyError) Unwrap() error { return k.Err }

// KeyNotFound returns an ErrKeyNotFound error reporting that key was not
// found.
func KeyNotFound(key string) error { return &KeyError{Key: key, Err: ErrKeyNotFound} }

// KeyExists returns an ErrKeyExists error reporting that key exists in the
// store.
func KeyExists(key string) error { return &KeyError{Key: key, Err: ErrKeyExists} }

// hashCAS is a content-addressable wrapper that adds the CAS methods to a
// delegated KV.
type hashCAS struct{ KV }

func (c hashCAS) key(data []byte) string {
	h := blake2b.Sum256(data)
	return string(h[:])
}

// CASPut implements CAS.
func (c hashCAS) CASPut(ctx context.Context, data []byte) (string, error) {
	key := c.key(data)

	if st, err := c.Has(ctx, key); err == nil && st.Has(key) {
		return key, nil
	}
	err := c.Put(ctx, PutOptions{Key: key, Data: data, Replace: false})
	if IsKeyExists(err) {
		err = nil
	}
	return key, err
}

// CASKey implements CAS.
func (c hashCAS) CASKey(_ context.Context, data []byte) string { return c.key(data) }

// SyncKeys reports which of the given keys are not present in ks. If all
// the keys are present, SyncKeys returns an empty KeySet.
func SyncKeys(ctx context.Context, ks KVCore, keys []string) (KeySet, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	have, err := ks.Has(ctx, keys...)
	if err != nil {
		return nil, err
	}
	var missing KeySet
	for _, key := range keys {
		if !have.Has(key) {
			missing.Add(key)
		}
	}
	return missing, nil
}
