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
	"strings"
	"testing"
)

func TestShardKeyEncode(t *testing.T) {
	tests := []struct {
		name        string
		key         shardKey
		input, want string
	}{
		{"PlainEmpty", shardKey{root: "r"}, "", "r"},
		{"PlainKey", shardKey{root: "r"}, "\x01\x02\x03", "r/010203"},
		{"Shard1", shardKey{root: "r", shard: 1}, "\xab\xcd", "r/a/abcd"},
		{"Shard2", shardKey{root: "r", shard: 2}, "\xab\xcd\xef", "r/ab/abcdef"},
		{"Shard3", shardKey{root: "r", shard: 3}, "\x01\x02\x03\x04", "r/010/01020304"},
		{"EmptyShard", shardKey{root: "r", shard: 3}, "", "r/---/-"},
		{"ShortShard", shardKey{root: "r", shard: 3}, "\x01", "r/01-/01"},
		{"LongShard", shardKey{root: "r", shard: 8}, "ABC", "r/414243--/414243"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc := tc.key.encode(tc.input)
			if enc != tc.want {
				t.Errorf("encode %q: got %q, want %q", tc.input, enc, tc.want)
			}

			dec, err := tc.key.decode(enc)
			if err != nil {
				t.Errorf("decode %q: unexpected error: %v", enc, err)
			} else if dec != tc.input {
				t.Errorf("decode %q: got %q, want %q", enc, dec, tc.input)
			}
		})
	}
}

func TestShardKeyDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     shardKey
		input   string
		errtext string
	}{
		{"WrongRoot", shardKey{root: "r"}, "other/010203", errNotMyKey.Error()},
		{"NonHex", shardKey{root: "r"}, "r/garbage", "invalid byte"},
		{"BadShard", shardKey{root: "r", shard: 3}, "r/0a/0b0c0d", errNotMyKey.Error()},
		{"EmptyTail", shardKey{root: "r", shard: 3}, "r/0a0/", errNotMyKey.Error()},
		{"BadHex", shardKey{root: "r", shard: 3}, "r/0a0/0a0", "odd length hex"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := tc.key.decode(tc.input)
			if err == nil {
				t.Errorf("decode %q: got %q, want error", tc.input, dec)
			} else if got := err.Error(); !strings.Contains(got, tc.errtext) {
				t.Errorf("decode %q: got %v, want %q", tc.input, err, tc.errtext)
			}
		})
	}
}
