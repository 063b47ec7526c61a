// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package cache

import (
	"sort"
	"strings"
	"sync"
)

// DefaultMaxSuggestions bounds Complete when no limit is given.
const DefaultMaxSuggestions = 10

type trieNode struct {
	children map[rune]*trieNode
	value    string              // original spelling of the keyphrase ending here
	members  map[string]struct{} // video ids; non-empty iff a keyphrase ends here
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

func (n *trieNode) isEnd() bool {
	return len(n.members) > 0
}

// Trie is a thread-safe prefix tree from keyphrases to the set of videos they
// occur in. Matching is case-insensitive.
type Trie struct {
	mu             sync.RWMutex
	root           *trieNode
	size           int
	maxSuggestions int
}

// TrieResult is one completion.
type TrieResult struct {
	Value   string   // keyphrase as first inserted
	Members []string // sorted video ids
	Count   int      // len(Members)
}

// NewTrie creates an empty Trie returning at most maxSuggestions completions
// by default. Non-positive values select DefaultMaxSuggestions.
func NewTrie(maxSuggestions int) *Trie {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	return &Trie{root: newTrieNode(), maxSuggestions: maxSuggestions}
}

func normalizeKey(key string) []rune {
	return []rune(strings.ToLower(strings.TrimSpace(key)))
}

// Insert records that value occurs in member. It reports whether the pair is new.
func (t *Trie) Insert(value, member string) bool {
	key := normalizeKey(value)
	if len(key) == 0 || member == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, ch := range key {
		if node.children[ch] == nil {
			node.children[ch] = newTrieNode()
		}
		node = node.children[ch]
	}

	if !node.isEnd() {
		node.members = make(map[string]struct{})
		node.value = strings.TrimSpace(value)
		t.size++
	}
	if _, ok := node.members[member]; ok {
		return false
	}
	node.members[member] = struct{}{}
	return true
}

// Remove drops member from value. The keyphrase disappears once no member is
// left, and empty branches are pruned. It reports whether the pair existed.
func (t *Trie) Remove(value, member string) bool {
	key := normalizeKey(value)
	if len(key) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.removeRecursive(t.root, key, 0, member)
}

func (t *Trie) removeRecursive(node *trieNode, key []rune, depth int, member string) bool {
	if depth == len(key) {
		if _, ok := node.members[member]; !ok {
			return false
		}
		delete(node.members, member)
		if len(node.members) == 0 {
			node.members = nil
			node.value = ""
			t.size--
		}
		return true
	}

	ch := key[depth]
	child := node.children[ch]
	if child == nil {
		return false
	}

	removed := t.removeRecursive(child, key, depth+1, member)
	if removed && !child.isEnd() && len(child.children) == 0 {
		delete(node.children, ch)
	}
	return removed
}

// Members returns the sorted members of an exact keyphrase.
func (t *Trie) Members(value string) ([]string, bool) {
	key := normalizeKey(value)
	if len(key) == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(key)
	if node == nil || !node.isEnd() {
		return nil, false
	}
	return sortedMembers(node.members), true
}

// HasPrefix checks if any keyphrase starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	key := normalizeKey(prefix)
	if len(key) == 0 {
		return t.size > 0
	}
	return t.find(key) != nil
}

// Complete returns keyphrases starting with prefix, most widespread first and
// then alphabetically, at most limit of them (the default when limit <= 0).
func (t *Trie) Complete(prefix string, limit int) []TrieResult {
	if limit <= 0 {
		limit = t.maxSuggestions
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(normalizeKey(prefix))
	if node == nil {
		return nil
	}

	var results []TrieResult
	collect(node, &results)
	sortResults(results)

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// All returns every keyphrase in Complete order.
func (t *Trie) All() []TrieResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var results []TrieResult
	collect(t.root, &results)
	sortResults(results)
	return results
}

// Size returns the number of distinct keyphrases.
func (t *Trie) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Clear removes all entries.
func (t *Trie) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.root = newTrieNode()
	t.size = 0
}

func (t *Trie) find(key []rune) *trieNode {
	node := t.root
	for _, ch := range key {
		node = node.children[ch]
		if node == nil {
			return nil
		}
	}
	return node
}

func collect(node *trieNode, results *[]TrieResult) {
	if node.isEnd() {
		members := sortedMembers(node.members)
		*results = append(*results, TrieResult{
			Value:   node.value,
			Members: members,
			Count:   len(members),
		})
	}
	for _, child := range node.children {
		collect(child, results)
	}
}

func sortResults(results []TrieResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Value < results[j].Value
	})
}

func sortedMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
