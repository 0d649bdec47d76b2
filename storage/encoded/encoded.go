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

// Package encoded implements a [blob.KV] that applies a reversible encoding
// such as compression to the data, so that chunk bytes are transformed
// once on the way to storage and once on the way back, without the rest of
// the pipeline needing to know.
package encoded

import (
	"bytes"
	"context"
	"iter"

	"github.com/bupstream/chunker/blob"
)

// A Codec defines the capabilities needed to encode and decode.
type Codec interface {
	// Encode writes the encoding of src to w. After encoding, src may be garbage.
	Encode(w *bytes.Buffer, src []byte) error

	// Decode writes the decoding of src to w. After decoding, src may be garbage.
	Decode(w *bytes.Buffer, src []byte) error
}

// A KV wraps an existing [blob.KV] implementation in which blobs are
// encoded using a Codec.
type KV struct {
	codec Codec
	real  blob.KV
}

// New constructs a new KV that delegates to kv and uses c to encode and
// decode blob data. New will panic if either kv or c is nil.
func New(kv blob.KV, c Codec) KV {
	if kv == nil {
		panic("keyspace is nil")
	} else if c == nil {
		panic("codec is nil")
	}
	return KV{codec: c, real: kv}
}

// Get implements part of [blob.KV].
func (s KV) Get(ctx context.Context, key string) ([]byte, error) {
	enc, err := s.real.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.codec.Decode(&buf, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Has implements part of [blob.KV]. It delegates directly to the
// underlying store, since the codec does not change key presence.
func (s KV) Has(ctx context.Context, keys ...string) (blob.KeySet, error) {
	return s.real.Has(ctx, keys...)
}

// Put implements part of [blob.KV].
func (s KV) Put(ctx context.Context, opts blob.PutOptions) error {
	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, opts.Data); err != nil {
		return err
	}
	opts.Data = buf.Bytes()
	return s.real.Put(ctx, opts)
}

// Delete implements part of [blob.KV]. It delegates directly to the
// underlying store.
func (s KV) Delete(ctx context.Context, key string) error { return s.real.Delete(ctx, key) }

// List implements part of [blob.KV]. It delegates directly to the
// underlying store, since keys are not themselves encoded.
func (s KV) List(ctx context.Context, start string) iter.Seq2[string, error] {
	return s.real.List(ctx, start)
}

// Len implements part of [blob.KV]. It delegates directly to the
// underlying store.
func (s KV) Len(ctx context.Context) (int64, error) { return s.real.Len(ctx) }
