package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gatorlibrary/catalog"
)

func availabilityLabel(a catalog.Availability) string {
	if a == catalog.Available {
		return "Yes"
	}
	return "No"
}

func parseAvailability(s string) (catalog.Availability, error) {
	switch s {
	case "Yes":
		return catalog.Available, nil
	case "No":
		return catalog.Unavailable, nil
	}
	return 0, fmt.Errorf("%w: availability must be \"Yes\" or \"No\", got %q", ErrSyntax, s)
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func writeBook(w io.Writer, b catalog.Book) {
	borrowedBy := "None"
	if b.BorrowedBy != catalog.NoPatron {
		borrowedBy = strconv.Itoa(b.BorrowedBy)
	}
	fmt.Fprintf(w, "BookID = %d\n", b.ID)
	fmt.Fprintf(w, "Title = \"%s\"\n", b.Title)
	fmt.Fprintf(w, "Author = \"%s\"\n", b.Author)
	fmt.Fprintf(w, "Availability = \"%s\"\n", availabilityLabel(b.Availability))
	fmt.Fprintf(w, "BorrowedBy = %s\n", borrowedBy)
	fmt.Fprintf(w, "Reservations = [%s]\n", joinIDs(b.Reservations))
	fmt.Fprintln(w)
}

func writeNotFound(w io.Writer, id int) {
	fmt.Fprintf(w, "Book %d not found in the Library\n\n", id)
}

func writeRemoved(w io.Writer, id int, waiting []int) {
	switch len(waiting) {
	case 0:
		fmt.Fprintf(w, "Book %d is no longer available.\n\n", id)
	case 1:
		fmt.Fprintf(w, "Book %d is no longer available. Reservation made by Patron %d has been cancelled!\n\n",
			id, waiting[0])
	default:
		fmt.Fprintf(w, "Book %d is no longer available. Reservations made by Patrons %s have been cancelled!\n\n",
			id, joinIDs(waiting))
	}
}
