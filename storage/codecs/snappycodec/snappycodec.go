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

// Package snappycodec implements the encoded.Codec interface to apply
// Snappy compression to blobs. Chunk payloads from a content-defined split
// compress well in aggregate even though each chunk is compressed in
// isolation, since backup data is frequently textual or sparse.
package snappycodec

import (
	"bytes"

	"github.com/golang/snappy"
)

// Codec implements the encoded.Codec interface using Snappy block
// compression. The zero value is ready for use.
type Codec struct{}

// NewCodec returns a ready-to-use Codec.
func NewCodec() Codec { return Codec{} }

// Encode compresses src and writes it to w.
func (Codec) Encode(w *bytes.Buffer, src []byte) error {
	max := snappy.MaxEncodedLen(len(src))
	if max < 0 {
		max = 0
	}
	buf := make([]byte, max)
	enc := snappy.Encode(buf, src)
	_, err := w.Write(enc)
	return err
}

// Decode decompresses src and writes it to w.
func (Codec) Decode(w *bytes.Buffer, src []byte) error {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	dec, err := snappy.Decode(buf, src)
	if err != nil {
		return err
	}
	_, err = w.Write(dec)
	return err
}
