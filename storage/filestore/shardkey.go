// Copyright 2024 Michael J. Fromberger. All Rights Reserved.
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

package filestore

import (
	"cmp"
	"encoding/hex"
	"errors"
	"path"
	"strings"
)

// shardKey maps a blake2b content key to a sharded filesystem path, so a
// store holding millions of chunks does not put them all in one directory.
// The zero value encodes keys as plain hexadecimal strings with no sharding.
type shardKey struct {
	// root is the filesystem directory the encoded path is rooted at.
	root string

	// shard is the length, in hex digits, of the directory level split off
	// the front of each key. A non-positive shard disables sharding.
	shard int
}

// errNotMyKey is reported by decode when given a path that does not match
// the parameters of the shardKey.
var errNotMyKey = errors.New("path does not match this store's shard layout")

// encode maps key to its on-disk path under root.
func (c shardKey) encode(key string) string {
	tail := hex.EncodeToString([]byte(key))
	if c.shard <= 0 {
		return path.Join(c.root, tail)
	}

	// Pad the shard label to the desired length with "-", which sorts
	// before every hexadecimal digit.
	label := tail[:min(c.shard, len(tail))]
	for len(label) < c.shard {
		label += "-"
	}

	// An empty key encodes to "-", which is non-empty but still sorts
	// before every real hex-encoded key.
	return path.Join(c.root, label, cmp.Or(tail, "-"))
}

// decode recovers the content key from a path previously produced by
// encode. Any error past errNotMyKey comes from decoding the hex digits.
func (c shardKey) decode(p string) (string, error) {
	tail, ok := strings.CutPrefix(p, c.root+"/")
	if p == c.root {
		// An unsharded empty key encodes to the root itself.
		tail, ok = "", true
	}
	if !ok {
		return "", errNotMyKey
	}

	if c.shard <= 0 {
		key, err := hex.DecodeString(tail)
		return string(key), err
	}

	label, rest, ok := strings.Cut(tail, "/")
	if !ok || len(label) != c.shard || rest == "" {
		return "", errNotMyKey
	}
	if rest == "-" {
		return "", nil
	}
	key, err := hex.DecodeString(rest)
	return string(key), err
}
