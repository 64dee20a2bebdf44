// internal/notify/recipients/resolved.go

// Package recipients resolves a configuration's recipient rules into the
// To/Cc/Bcc buckets of an outgoing message.
package recipients

import "academic-notifications/internal/models"

// addrSet is an insertion-ordered set of email addresses. Deduplication is
// structural: adding an address twice is a no-op.
type addrSet struct {
	order []string
	seen  map[string]struct{}
}

func newAddrSet() *addrSet {
	return &addrSet{seen: make(map[string]struct{})}
}

func (s *addrSet) add(addr string) {
	if addr == "" {
		return
	}
	if _, ok := s.seen[addr]; ok {
		return
	}
	s.seen[addr] = struct{}{}
	s.order = append(s.order, addr)
}

func (s *addrSet) list() []string {
	if len(s.order) == 0 {
		return nil
	}
	return append([]string(nil), s.order...)
}

// ResolvedRecipients holds the three deduplicated buckets. The same address
// may legitimately appear in more than one bucket.
type ResolvedRecipients struct {
	to  *addrSet
	cc  *addrSet
	bcc *addrSet
}

func NewResolvedRecipients() *ResolvedRecipients {
	return &ResolvedRecipients{
		to:  newAddrSet(),
		cc:  newAddrSet(),
		bcc: newAddrSet(),
	}
}

func (r *ResolvedRecipients) bucket(b models.RecipientBucket) *addrSet {
	switch b {
	case models.BucketTo:
		return r.to
	case models.BucketCc:
		return r.cc
	case models.BucketBcc:
		return r.bcc
	}
	return nil
}

// Add appends an address to the named bucket; unrecognized buckets are
// ignored.
func (r *ResolvedRecipients) Add(b models.RecipientBucket, addr string) {
	if set := r.bucket(b); set != nil {
		set.add(addr)
	}
}

func (r *ResolvedRecipients) To() []string  { return r.to.list() }
func (r *ResolvedRecipients) Cc() []string  { return r.cc.list() }
func (r *ResolvedRecipients) Bcc() []string { return r.bcc.list() }

// Empty reports whether all three buckets are empty.
func (r *ResolvedRecipients) Empty() bool {
	return len(r.to.order) == 0 && len(r.cc.order) == 0 && len(r.bcc.order) == 0
}
