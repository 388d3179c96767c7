package index

import (
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

// Prefix indexes String-valued attributes in a patricia trie, supporting
// IndexScanPrefix lookups (spec §5 query operators) in addition to exact
// equality. Each trie leaf holds the set of entity ids sharing that exact
// string.
type Prefix struct {
	trie *patricia.Trie
}

func NewPrefix() *Prefix {
	return &Prefix{trie: patricia.NewTrie()}
}

func prefixKey(s string) patricia.Prefix {
	return patricia.Prefix(s)
}

// Insert adds owner under s.
func (p *Prefix) Insert(s string, owner id.Id) {
	key := prefixKey(s)
	item := p.trie.Get(key)
	bucket, ok := item.(map[id.Id]struct{})
	if !ok {
		bucket = make(map[id.Id]struct{})
		p.trie.Insert(key, bucket)
	}
	bucket[owner] = struct{}{}
}

// Remove drops owner from s's bucket.
func (p *Prefix) Remove(s string, owner id.Id) {
	key := prefixKey(s)
	item := p.trie.Get(key)
	bucket, ok := item.(map[id.Id]struct{})
	if !ok {
		return
	}
	delete(bucket, owner)
	if len(bucket) == 0 {
		p.trie.Delete(key)
	}
}

// Lookup returns every entity holding exactly s.
func (p *Prefix) Lookup(s string) []id.Id {
	item := p.trie.Get(prefixKey(s))
	bucket, _ := item.(map[id.Id]struct{})
	out := make([]id.Id, 0, len(bucket))
	for eid := range bucket {
		out = append(out, eid)
	}
	return out
}

// ScanPrefix returns every entity whose indexed string starts with
// prefix, across every matching string in the trie.
func (p *Prefix) ScanPrefix(prefix string) []id.Id {
	var out []id.Id
	_ = p.trie.VisitSubtree(prefixKey(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		bucket, _ := item.(map[id.Id]struct{})
		for eid := range bucket {
			out = append(out, eid)
		}
		return nil
	})
	return out
}

// ValueInsert/ValueRemove adapt Insert/Remove to the common Value
// interface, accepting only String values (the caller guarantees this via
// attribute type validation — a non-string Value here indicates a schema
// bug, not a runtime condition to recover from).
func (p *Prefix) ValueInsert(v value.Value, owner id.Id) {
	if s, ok := v.(value.String); ok {
		p.Insert(string(s), owner)
	}
}

func (p *Prefix) ValueRemove(v value.Value, owner id.Id) {
	if s, ok := v.(value.String); ok {
		p.Remove(string(s), owner)
	}
}
