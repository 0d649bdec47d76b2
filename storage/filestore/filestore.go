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

// Package filestore implements the [blob.KV] interface using files. The
// store comprises a directory with subdirectories keyed by a prefix of the
// hex-encoded chunk key, similar to a Git local object store, so a run
// that writes millions of chunks does not put them all in one directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/creachadair/atomicfile"

	"github.com/bupstream/chunker/blob"
)

// KV implements the [blob.KV] interface using a directory structure with
// one file per stored chunk.
type KV struct {
	key shardKey
}

// New creates a KV associated with the specified root directory, which is
// created if it does not already exist. Keys are sharded three hex digits
// deep.
func New(dir string) (KV, error) {
	clean := filepath.Clean(dir)
	if err := os.MkdirAll(clean, 0700); err != nil {
		return KV{}, err
	}
	return KV{key: shardKey{root: clean, shard: 3}}, nil
}

func (s KV) keyPath(key string) string { return s.key.encode(key) }

// Get implements part of [blob.KV].
func (s KV) Get(_ context.Context, key string) ([]byte, error) {
	bits, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = blob.KeyNotFound(key)
		}
		return nil, fmt.Errorf("key %q: %w", key, err)
	}
	return bits, nil
}

// Has implements part of [blob.KV].
func (s KV) Has(_ context.Context, keys ...string) (blob.KeySet, error) {
	var out blob.KeySet
	for _, key := range keys {
		if _, err := os.Stat(s.keyPath(key)); err == nil {
			out.Add(key)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
	}
	return out, nil
}

// Put implements part of [blob.KV]. A successful Put linearizes to the
// point at which the rename of the write temporary succeeds.
func (s KV) Put(_ context.Context, opts blob.PutOptions) error {
	p := s.keyPath(opts.Key)
	if _, err := os.Stat(p); err == nil && !opts.Replace {
		return blob.KeyExists(opts.Key)
	} else if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return err
	}
	return atomicfile.WriteData(p, opts.Data, 0600)
}

// Delete implements part of [blob.KV].
func (s KV) Delete(_ context.Context, key string) error {
	p := s.keyPath(key)
	err := os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return blob.KeyNotFound(key)
	}
	return err
}

// List implements part of [blob.KV]. If any concurrent Put on a key later
// than the current scan position succeeds, List may or may not observe it.
func (s KV) List(_ context.Context, start string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		roots, err := listdir(s.Dir())
		if err != nil {
			yield("", err)
			return
		}
		for _, root := range roots {
			cur := filepath.Join(s.Dir(), root)
			keys, err := listdir(cur)
			if err != nil {
				yield("", err)
				return
			}
			for _, tail := range keys {
				key, err := s.key.decode(path.Join(cur, tail))
				if err != nil || key < start {
					continue // skip non-key files and keys prior to the start
				}
				if !yield(key, nil) {
					return
				}
			}
		}
	}
}

// Len implements part of [blob.KV]. It is implemented using List.
func (s KV) Len(ctx context.Context) (int64, error) {
	var nb int64
	for _, err := range s.List(ctx, "") {
		if err != nil {
			return 0, err
		}
		nb++
	}
	return nb, nil
}

// Dir reports the directory path associated with s.
func (s KV) Dir() string { return s.key.root }

func listdir(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	sort.Strings(names)
	return names, err
}
