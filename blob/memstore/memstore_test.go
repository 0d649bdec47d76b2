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

package memstore_test

import (
	"context"
	"testing"

	"github.com/bupstream/chunker/blob"
	"github.com/bupstream/chunker/blob/memstore"
	"github.com/google/go-cmp/cmp"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()

	if err := m.Put(ctx, blob.PutOptions{Key: "foo", Data: []byte("bar")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Put(ctx, blob.PutOptions{Key: "foo", Data: []byte("baz")}); !blob.IsKeyExists(err) {
		t.Fatalf("Put duplicate: got %v, want ErrKeyExists", err)
	}
	if err := m.Put(ctx, blob.PutOptions{Key: "foo", Data: []byte("baz"), Replace: true}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, err := m.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "baz" {
		t.Fatalf("Get = %q, want baz", got)
	}

	if _, err := m.Get(ctx, "nonesuch"); !blob.IsKeyNotFound(err) {
		t.Fatalf("Get nonesuch: got %v, want ErrKeyNotFound", err)
	}

	if err := m.Delete(ctx, "foo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, "foo"); !blob.IsKeyNotFound(err) {
		t.Fatalf("Delete again: got %v, want ErrKeyNotFound", err)
	}
}

func TestHasAndLen(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()
	m.Put(ctx, blob.PutOptions{Key: "a", Data: []byte("1")})
	m.Put(ctx, blob.PutOptions{Key: "b", Data: []byte("2")})

	have, err := m.Has(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !have.Has("a") || !have.Has("b") || have.Has("c") {
		t.Fatalf("Has = %v, want {a,b}", have)
	}

	n, err := m.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
}

func TestListIsSortedAndStartBounded(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()
	for _, k := range []string{"c", "a", "b", "d"} {
		m.Put(ctx, blob.PutOptions{Key: k, Data: []byte(k)})
	}

	var got []string
	for k, err := range m.List(ctx, "b") {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, k)
	}
	want := []string{"b", "c", "d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List(start=b) (-want, +got):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()
	m.Put(ctx, blob.PutOptions{Key: "foo", Data: []byte("bar")})
	m.Put(ctx, blob.PutOptions{Key: "baz", Data: []byte("quux")})
	m.Delete(ctx, "baz")

	got := m.Snapshot(nil)
	want := map[string]string{"foo": "bar"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrong snapshot: (-want, +got):\n%s", diff)
	}
}
