package dedup

import "github.com/cardledger/cardledger/internal/model"

// SeenSet is an immutable set of identity hashes already in the ledger.
type SeenSet struct {
	hashes map[string]struct{}
}

// NewSeenSet returns a set holding hashes.
func NewSeenSet(hashes ...string) SeenSet {
	m := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		m[h] = struct{}{}
	}
	return SeenSet{hashes: m}
}

// Contains reports whether hash is in the set.
func (s SeenSet) Contains(hash string) bool {
	_, ok := s.hashes[hash]
	return ok
}

// Len returns the number of hashes in the set.
func (s SeenSet) Len() int { return len(s.hashes) }

// Extend returns a new set holding s plus hashes. s is unchanged.
func (s SeenSet) Extend(hashes ...string) SeenSet {
	m := make(map[string]struct{}, len(s.hashes)+len(hashes))
	for h := range s.hashes {
		m[h] = struct{}{}
	}
	for _, h := range hashes {
		m[h] = struct{}{}
	}
	return SeenSet{hashes: m}
}

// Result splits a batch of candidates.
type Result struct {
	New        []model.Transaction
	Duplicates []model.Transaction
}

// Hashes returns the identity hashes of the new transactions.
func (r Result) Hashes() []string {
	out := make([]string, len(r.New))
	for i, t := range r.New {
		out[i] = t.IdentityHash
	}
	return out
}

// Partition splits txns into those not in seen and those that are. Within
// the batch the first occurrence of a hash wins and later ones count as
// duplicates. Input order is kept in both halves.
func Partition(seen SeenSet, txns []model.Transaction) Result {
	var res Result
	batch := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		if _, dup := batch[t.IdentityHash]; dup || seen.Contains(t.IdentityHash) {
			res.Duplicates = append(res.Duplicates, t)
			continue
		}
		batch[t.IdentityHash] = struct{}{}
		res.New = append(res.New, t)
	}
	return res
}
