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

package blob

import (
	"context"

	"github.com/creachadair/taskgroup"
)

// PutItem is one entry of a batch submitted to PutMany.
type PutItem struct {
	Key  string
	Data []byte
}

// PutMany writes a batch of items to kv concurrently. split.HashSplit hands
// back chunks one at a time to respect the chunking core's "no parallelism
// across inputs" rule, but nothing stops the caller pushing a finished
// batch of chunk writes to storage in parallel once the pipeline has
// drained.
//
// A key already present (ErrKeyExists) is treated as success, since
// content-addressed keys are idempotent: whichever writer got there first
// wrote the same bytes. parallel bounds the number of concurrent writes; a
// value less than 1 is treated as 1.
func PutMany(ctx context.Context, kv KV, items []PutItem, parallel int) error {
	if parallel < 1 {
		parallel = 1
	}
	g, run := taskgroup.New(nil).Limit(parallel)
	for _, it := range items {
		run(func() error {
			err := kv.Put(ctx, PutOptions{Key: it.Key, Data: it.Data})
			if IsKeyExists(err) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
