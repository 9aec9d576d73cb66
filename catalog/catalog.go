// Package catalog implements an in-memory book catalogue: a red-black tree
// keyed by book id where every book carries a bounded reservation waitlist,
// plus an audit of how many node colors change across mutations.
//
// A Catalog is not safe for concurrent use.
package catalog

import (
	"fmt"
	"log/slog"
	"math"
)

// Catalog owns the tree and all state derived from it.
type Catalog struct {
	books       *RBTree
	audit       colorAudit
	clock       arrivalClock
	waitlistCap int
	metrics     *Metrics
	logger      *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithWaitlistCapacity overrides DefaultWaitlistCapacity for waitlists
// created from now on.
func WithWaitlistCapacity(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.waitlistCap = n
		}
	}
}

// WithMetrics reports operations to m.
func WithMetrics(m *Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an empty Catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		books:       newRBTree(),
		waitlistCap: DefaultWaitlistCapacity,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of catalogued books.
func (c *Catalog) Len() int { return c.books.Size() }

// ---------------- Queries ---------------- //

// Search returns the book with the given id.
func (c *Catalog) Search(id int) (Book, bool) {
	n := c.books.searchNode(id)
	if n == nil {
		return Book{}, false
	}
	return n.rec.book(), true
}

// RangeScan returns the books with lo <= id <= hi in ascending id order.
func (c *Catalog) RangeScan(lo, hi int) []Book {
	var out []Book
	c.books.rangeScan(lo, hi, func(n *node) {
		out = append(out, n.rec.book())
	})
	return out
}

// Nearest returns every book whose id is at the minimal distance from
// target, in ascending id order. It returns nil on an empty catalog.
func (c *Catalog) Nearest(target int) []Book {
	var (
		out  []Book
		best = uint(math.MaxUint)
	)
	c.books.forEachAscending(func(n *node) bool {
		d := distance(n.rec.id, target)
		switch {
		case d < best:
			best = d
			out = append(out[:0], n.rec.book())
		case d == best:
			out = append(out, n.rec.book())
		}
		return true
	})
	return out
}

func distance(a, b int) uint {
	if a > b {
		return uint(a) - uint(b)
	}
	return uint(b) - uint(a)
}

// FlipCount returns the total number of node color changes observed across
// completed insertions and deletions.
func (c *Catalog) FlipCount() int { return c.audit.count() }

// Verify checks every red-black and linkage invariant of the tree. Any
// violation is wrapped in ErrInvalidTopology.
func (c *Catalog) Verify() error { return c.books.verify() }

// ---------------- Mutations ---------------- //

// Insert catalogues a new book. It returns ErrDuplicateKey, leaving the
// catalog unchanged, when id is already present.
func (c *Catalog) Insert(id int, title, author string, availability Availability) (err error) {
	defer recoverTopology(&err)

	n := c.books.insert(record{
		id:           id,
		title:        title,
		author:       author,
		availability: availability,
		holder:       NoPatron,
	})
	if n == nil {
		c.metrics.observeOp("insert", "duplicate")
		return fmt.Errorf("insert %d: %w", id, ErrDuplicateKey)
	}
	c.afterMutation("insert", id)
	return nil
}

// Remove deletes a book and returns the patron ids that were still waiting
// for it, in waitlist heap order. Removing an absent id returns ErrNotFound.
func (c *Catalog) Remove(id int) (waiting []int, err error) {
	defer recoverTopology(&err)

	n := c.books.searchNode(id)
	if n == nil {
		c.metrics.observeOp("remove", "not_found")
		return nil, fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}
	waiting = []int{}
	if n.rec.waitlist != nil {
		waiting = n.rec.waitlist.PatronIDs()
	}
	c.books.delete(n)
	c.afterMutation("remove", id)
	return waiting, nil
}

func (c *Catalog) afterMutation(op string, id int) {
	flipped := c.audit.observe(c.books)
	c.metrics.observeOp(op, "ok")
	c.metrics.observeMutation(flipped, c.books.Size())
	c.logger.Debug("catalog mutated",
		slog.String("op", op),
		slog.Int("book_id", id),
		slog.Int("flipped", flipped),
		slog.Int("books", c.books.Size()),
	)
}

// ---------------- Lending ---------------- //

// AcquireOutcome is the result of an Acquire call.
type AcquireOutcome uint8

const (
	// Granted means the patron now holds the book.
	Granted AcquireOutcome = iota
	// Queued means the patron was put on the waitlist, or dropped if the
	// waitlist was already full.
	Queued
)

func (o AcquireOutcome) String() string {
	if o == Granted {
		return "granted"
	}
	return "queued"
}

// Acquire lends book id to patron if it is available; otherwise it
// reserves the book for patron at the given priority. Reservations beyond
// the waitlist capacity are dropped silently.
func (c *Catalog) Acquire(patron, id, priority int) (AcquireOutcome, error) {
	arrival := c.clock.next()
	n := c.books.searchNode(id)
	if n == nil {
		c.metrics.observeOp("acquire", "not_found")
		return Queued, fmt.Errorf("acquire %d: %w", id, ErrNotFound)
	}

	rec := &n.rec
	if rec.availability == Available {
		rec.availability = Unavailable
		rec.holder = patron
		c.metrics.observeOp("acquire", Granted.String())
		return Granted, nil
	}

	if rec.waitlist == nil {
		rec.waitlist = NewWaitlist(c.waitlistCap)
	}
	if !rec.waitlist.Offer(WaitEntry{PatronID: patron, Priority: priority, Arrival: arrival}) {
		c.metrics.observeDrop()
		c.logger.Debug("waitlist full, reservation dropped",
			slog.Int("book_id", id),
			slog.Int("patron_id", patron),
			slog.Int("capacity", rec.waitlist.Cap()),
		)
	}
	c.metrics.observeOp("acquire", Queued.String())
	return Queued, nil
}

// ReleaseResult reports who holds a book after Release.
type ReleaseResult struct {
	// Reassigned is true when the book went straight to the next patron on
	// the waitlist.
	Reassigned bool
	// Holder is the new holder, or NoPatron when the book is now available.
	Holder int
}

// Release returns book id. If anyone is waiting, the book is lent to the
// first of them immediately. Releasing an already available book is a
// caller error; it is not detected.
func (c *Catalog) Release(id int) (ReleaseResult, error) {
	n := c.books.searchNode(id)
	if n == nil {
		c.metrics.observeOp("release", "not_found")
		return ReleaseResult{Holder: NoPatron}, fmt.Errorf("release %d: %w", id, ErrNotFound)
	}

	rec := &n.rec
	rec.availability = Available
	rec.holder = NoPatron
	if rec.waitlist == nil {
		c.metrics.observeOp("release", "freed")
		return ReleaseResult{Holder: NoPatron}, nil
	}
	next, ok := rec.waitlist.RemoveMin()
	if !ok {
		c.metrics.observeOp("release", "freed")
		return ReleaseResult{Holder: NoPatron}, nil
	}
	rec.availability = Unavailable
	rec.holder = next.PatronID
	c.metrics.observeOp("release", "reassigned")
	return ReleaseResult{Reassigned: true, Holder: next.PatronID}, nil
}
