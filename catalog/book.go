package catalog

// Availability is whether a book can be borrowed right now.
type Availability uint8

const (
	Available Availability = iota
	Unavailable
)

func (a Availability) String() string {
	if a == Available {
		return "Available"
	}
	return "Unavailable"
}

// NoPatron is the BorrowedBy value of a book nobody holds.
const NoPatron = -1

// Book is a copy of one catalogued record. Mutating it does not affect the
// catalog.
type Book struct {
	ID           int
	Title        string
	Author       string
	Availability Availability
	BorrowedBy   int
	Reservations []int // pending patron ids in waitlist heap order
}

// record is the payload a tree node carries. Deleting a node with two
// children overwrites its record with the in-order predecessor's.
type record struct {
	id           int
	title        string
	author       string
	availability Availability
	holder       int
	waitlist     *Waitlist // nil until the first reservation
}

func (r *record) book() Book {
	b := Book{
		ID:           r.id,
		Title:        r.title,
		Author:       r.author,
		Availability: r.availability,
		BorrowedBy:   r.holder,
		Reservations: []int{},
	}
	if r.waitlist != nil {
		b.Reservations = r.waitlist.PatronIDs()
	}
	return b
}
