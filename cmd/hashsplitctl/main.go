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

// Program hashsplitctl content-defined-chunks one or more files, stores
// the resulting chunks in a filesystem-backed content-addressed store, and
// writes a manifest describing the chunk tree next to the last input.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bupstream/chunker/blob"
	"github.com/bupstream/chunker/index"
	"github.com/bupstream/chunker/manifest"
	"github.com/bupstream/chunker/rollsum"
	"github.com/bupstream/chunker/source"
	"github.com/bupstream/chunker/split"
	"github.com/bupstream/chunker/storage/codecs/snappycodec"
	"github.com/bupstream/chunker/storage/encoded"
	"github.com/bupstream/chunker/storage/filestore"
	"github.com/bupstream/chunker/tree"
)

var storeDir = flag.String("store", "", "content-addressed chunk store directory (required)")

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatalf("Usage: %s -store DIR file [file ...]", filepath.Base(os.Args[0]))
	}
	if *storeDir == "" {
		log.Fatal("missing -store directory")
	}

	files := make([]*os.File, flag.NArg())
	srcs := make([]source.Source, flag.NArg())
	var totalSize int64
	for i, name := range flag.Args() {
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("Open %s: %v", name, err)
		}
		defer f.Close()
		if fi, err := f.Stat(); err == nil {
			totalSize += fi.Size()
		}
		files[i] = f
		srcs[i] = source.NewFileSource(f)
	}

	ctx := context.Background()

	kv, err := filestore.New(*storeDir)
	if err != nil {
		log.Fatalf("Opening store: %v", err)
	}
	store := blob.KV(encoded.New(kv, snappycodec.NewCodec()))
	cas := blob.CASFromKV(store)

	// Size the Bloom filter from a rough estimate of how many distinct
	// chunks this run will produce: total input bytes divided by the
	// average chunk size implied by the default split threshold. New
	// panics on numKeys <= 0, so floor it at a small minimum for tiny or
	// empty inputs.
	estKeys := int(totalSize / (1 << rollsum.BaseBits))
	if estKeys < 1024 {
		estKeys = 1024
	}
	idx := index.New(estKeys, nil)

	var nchunks int
	bld := tree.NewBuilder()
	var entries []manifest.Entry

	start := time.Now()
	lastReport := start
	var seen int64
	progress := func(fileIndex, prevRead int) error {
		seen += int64(prevRead)
		if now := time.Now(); totalSize > 0 && now.Sub(lastReport) > time.Second {
			fmt.Fprintf(os.Stderr, "\r%d byte of %d done (%.2f%%)", seen, totalSize, float64(seen)/float64(totalSize)*100)
			lastReport = now
		}
		return nil
	}

	for chunk, err := range split.HashSplit(srcs, progress, split.Options{}) {
		if err != nil {
			log.Fatalf("Splitting input: %v", err)
		}
		key := cas.CASKey(ctx, chunk.Bytes)

		// Fast-reject: a Bloom filter never reports false negatives, so
		// idx.Has == false means key is certainly new in this run and the
		// write can skip CASPut's own existence round trip. idx.Has == true
		// may be a false positive, so it always falls back to the safe,
		// store-consulting path instead of skipping the write outright.
		if !idx.Has(key) {
			if err := store.Put(ctx, blob.PutOptions{Key: key, Data: chunk.Bytes}); err != nil && !blob.IsKeyExists(err) {
				log.Fatalf("Storing chunk: %v", err)
			}
		} else if _, err := cas.CASPut(ctx, chunk.Bytes); err != nil {
			log.Fatalf("Storing chunk: %v", err)
		}
		idx.Add(key)

		bld.Add([]byte(key), uint64(len(chunk.Bytes)), chunk.Level)
		entries = append(entries, manifest.Entry{
			Key:   []byte(key),
			Size:  uint64(len(chunk.Bytes)),
			Level: uint32(chunk.Level),
		})
		nchunks++
	}
	if totalSize > 0 {
		fmt.Fprintf(os.Stderr, "\r%d byte of %d done (100.00%%)\n", totalSize, totalSize)
	}

	root := bld.Root()
	fmt.Fprintf(os.Stderr, "wrote %d chunks, %d bytes, tree size %d at level %d\n",
		nchunks, manifest.TotalSize(entries), root.Size, root.Level)

	out := flag.Arg(flag.NArg()-1) + ".manifest"
	if err := os.WriteFile(out, manifest.Encode(entries), 0600); err != nil {
		log.Fatalf("Writing manifest: %v", err)
	}
	fmt.Fprintf(os.Stderr, "manifest written to %s\n", out)
}
