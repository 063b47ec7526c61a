// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package cache

import (
	"reflect"
	"sync"
	"testing"
)

func TestTrie_InsertAndMembers(t *testing.T) {
	t.Parallel()

	trie := NewTrie(0)

	if !trie.Insert("Photosynthesis", "vid1") {
		t.Error("Insert should return true for new pair")
	}
	if trie.Insert("photosynthesis", "vid1") {
		t.Error("Insert should return false for existing pair")
	}
	if !trie.Insert("PHOTOSYNTHESIS", "vid2") {
		t.Error("Insert should return true for new member")
	}

	if trie.Size() != 1 {
		t.Errorf("Size() = %d, want 1", trie.Size())
	}

	members, ok := trie.Members("photoSynthesis")
	if !ok {
		t.Fatal("Members should find keyphrase case-insensitively")
	}
	if !reflect.DeepEqual(members, []string{"vid1", "vid2"}) {
		t.Errorf("Members() = %v", members)
	}

	if _, ok := trie.Members("photo"); ok {
		t.Error("Members should not match a bare prefix")
	}
	if trie.Insert("", "vid1") || trie.Insert("x", "") {
		t.Error("Insert should reject empty values")
	}
}

func TestTrie_Complete(t *testing.T) {
	t.Parallel()

	trie := NewTrie(2)
	trie.Insert("cell", "v1")
	trie.Insert("cell wall", "v1")
	trie.Insert("cell wall", "v2")
	trie.Insert("cellular respiration", "v3")
	trie.Insert("chlorophyll", "v1")

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"default limit", "cel", 0, []string{"cell wall", "cell"}},
		{"explicit limit", "cel", 5, []string{"cell wall", "cell", "cellular respiration"}},
		{"case insensitive", "CH", 5, []string{"chlorophyll"}},
		{"no match", "zz", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, r := range trie.Complete(tt.prefix, tt.limit) {
				got = append(got, r.Value)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q, %d) = %v, want %v", tt.prefix, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTrie_RemovePrunes(t *testing.T) {
	t.Parallel()

	trie := NewTrie(0)
	trie.Insert("cell", "v1")
	trie.Insert("cell", "v2")
	trie.Insert("cellar", "v1")

	if !trie.Remove("cell", "v1") {
		t.Error("Remove should report existing pair")
	}
	if trie.Remove("cell", "v1") {
		t.Error("Remove should report missing pair")
	}
	if trie.Size() != 2 {
		t.Errorf("Size() = %d, want 2", trie.Size())
	}

	trie.Remove("cellar", "v1")
	if trie.HasPrefix("cella") {
		t.Error("empty branch should be pruned")
	}
	if !trie.HasPrefix("cel") {
		t.Error("cell still has a member")
	}

	trie.Remove("cell", "v2")
	if trie.Size() != 0 || trie.HasPrefix("c") {
		t.Errorf("trie should be empty, Size() = %d", trie.Size())
	}
}

func TestTrie_Unicode(t *testing.T) {
	t.Parallel()

	trie := NewTrie(0)
	trie.Insert("Größe", "v1")
	trie.Insert("grün", "v2")

	results := trie.Complete("gr", 10)
	if len(results) != 2 {
		t.Fatalf("Complete() len = %d, want 2", len(results))
	}

	if !trie.Remove("größe", "v1") {
		t.Fatal("Remove should handle multi-byte keys")
	}
	if _, ok := trie.Members("Größe"); ok {
		t.Error("removed keyphrase should be gone")
	}
	if _, ok := trie.Members("grün"); !ok {
		t.Error("sibling keyphrase should remain")
	}
}

func TestTrie_AllAndClear(t *testing.T) {
	t.Parallel()

	trie := NewTrie(0)
	trie.Insert("b", "v1")
	trie.Insert("a", "v1")
	trie.Insert("a", "v2")

	all := trie.All()
	if len(all) != 2 || all[0].Value != "a" || all[0].Count != 2 {
		t.Errorf("All() = %+v", all)
	}

	trie.Clear()
	if trie.Size() != 0 || len(trie.All()) != 0 {
		t.Error("Clear should empty the trie")
	}
}

func TestTrie_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	trie := NewTrie(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			member := string(rune('a' + i))
			trie.Insert("shared", member)
			trie.Complete("sh", 5)
		}(i)
	}
	wg.Wait()

	members, _ := trie.Members("shared")
	if len(members) != 20 {
		t.Errorf("Members() len = %d, want 20", len(members))
	}
}
