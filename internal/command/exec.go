package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatorlibrary/catalog"
)

const tracerName = "gatorlibrary/internal/command"

// Command names understood by the executor.
const (
	PrintBook       = "PrintBook"
	PrintBooks      = "PrintBooks"
	InsertBook      = "InsertBook"
	BorrowBook      = "BorrowBook"
	ReturnBook      = "ReturnBook"
	DeleteBook      = "DeleteBook"
	FindClosestBook = "FindClosestBook"
	ColorFlipCount  = "ColorFlipCount"
	Quit            = "Quit"
)

// Executor runs commands against a catalog and writes the report.
type Executor struct {
	cat    *catalog.Catalog
	out    *bufio.Writer
	logger *slog.Logger
	tracer trace.Tracer
	verify bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for skipped lines and aborted runs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracerProvider takes spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Executor) { e.tracer = tp.Tracer(tracerName) }
}

// WithVerify checks the catalog's invariants after every insert and delete.
func WithVerify(on bool) Option {
	return func(e *Executor) { e.verify = on }
}

// NewExecutor returns an Executor writing its report to w. Output is
// buffered until Run returns or Flush is called.
func NewExecutor(cat *catalog.Catalog, w io.Writer, opts ...Option) *Executor {
	e := &Executor{
		cat:    cat,
		out:    bufio.NewWriter(w),
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Flush writes any buffered report output.
func (e *Executor) Flush() error { return e.out.Flush() }

// Run executes every line of r until Quit or end of input. Malformed and
// unknown lines are logged and skipped; a broken tree aborts the run.
func (e *Executor) Run(ctx context.Context, r io.Reader) (err error) {
	defer func() {
		if ferr := e.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("failed to write the report: %w", ferr)
		}
	}()

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		cmd, perr := Parse(text)
		if perr != nil {
			e.logger.WarnContext(ctx, "skipping malformed line",
				slog.Int("line", line),
				slog.String("error", perr.Error()),
			)
			continue
		}
		cmd.Line = line

		quit, err := e.Exec(ctx, cmd)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if quit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}

// Exec runs one command. It reports quit for Quit, and returns an error only
// when the catalog's tree is found broken; other failures are logged and the
// command is skipped.
func (e *Executor) Exec(ctx context.Context, cmd Command) (quit bool, err error) {
	ctx, span := e.tracer.Start(ctx, "command."+cmd.Name,
		trace.WithAttributes(
			attribute.String("command", cmd.Name),
			attribute.Int("line", cmd.Line),
			attribute.Int("arg_count", len(cmd.Args)),
		),
	)
	defer span.End()

	quit, err = e.dispatch(cmd)
	if err == nil {
		return quit, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, catalog.ErrInvalidTopology) {
		e.logger.ErrorContext(ctx, "catalog tree is broken, aborting",
			slog.String("command", cmd.Name),
			slog.Int("line", cmd.Line),
			slog.String("error", err.Error()),
		)
		return false, err
	}
	e.logger.WarnContext(ctx, "skipping command",
		slog.String("command", cmd.Name),
		slog.Int("line", cmd.Line),
		slog.String("error", err.Error()),
	)
	return false, nil
}

func (e *Executor) dispatch(cmd Command) (bool, error) {
	switch cmd.Name {
	case PrintBook:
		return false, e.printBook(cmd)
	case PrintBooks:
		return false, e.printBooks(cmd)
	case InsertBook:
		return false, e.mutated(e.insertBook(cmd))
	case BorrowBook:
		return false, e.borrowBook(cmd)
	case ReturnBook:
		return false, e.returnBook(cmd)
	case DeleteBook:
		return false, e.mutated(e.deleteBook(cmd))
	case FindClosestBook:
		return false, e.findClosestBook(cmd)
	case ColorFlipCount:
		return false, e.colorFlipCount(cmd)
	case Quit:
		fmt.Fprintln(e.out, "Program Terminated!!")
		return true, nil
	}
	return false, fmt.Errorf("%w: unknown command %q", ErrSyntax, cmd.Name)
}

// mutated runs the invariant check after a successful insert or delete when
// verification is on.
func (e *Executor) mutated(err error) error {
	if err != nil || !e.verify {
		return err
	}
	return e.cat.Verify()
}

// ---------------- Handlers ---------------- //

func (e *Executor) printBook(cmd Command) error {
	args, err := cmd.ints(1)
	if err != nil {
		return err
	}
	b, ok := e.cat.Search(args[0])
	if !ok {
		writeNotFound(e.out, args[0])
		return nil
	}
	writeBook(e.out, b)
	return nil
}

func (e *Executor) printBooks(cmd Command) error {
	args, err := cmd.ints(2)
	if err != nil {
		return err
	}
	for _, b := range e.cat.RangeScan(args[0], args[1]) {
		writeBook(e.out, b)
	}
	return nil
}

func (e *Executor) insertBook(cmd Command) error {
	if err := cmd.arity(4); err != nil {
		return err
	}
	id, err := cmd.intArg(0)
	if err != nil {
		return err
	}
	availability, err := parseAvailability(cmd.Args[3])
	if err != nil {
		return err
	}
	return e.cat.Insert(id, cmd.Args[1], cmd.Args[2], availability)
}

func (e *Executor) borrowBook(cmd Command) error {
	args, err := cmd.ints(3)
	if err != nil {
		return err
	}
	patron, id, priority := args[0], args[1], args[2]
	out, err := e.cat.Acquire(patron, id, priority)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeNotFound(e.out, id)
		return nil
	case err != nil:
		return err
	case out == catalog.Granted:
		fmt.Fprintf(e.out, "Book %d Borrowed by Patron %d\n\n", id, patron)
	default:
		fmt.Fprintf(e.out, "Book %d Reserved by Patron %d\n\n", id, patron)
	}
	return nil
}

func (e *Executor) returnBook(cmd Command) error {
	args, err := cmd.ints(2)
	if err != nil {
		return err
	}
	patron, id := args[0], args[1]
	res, err := e.cat.Release(id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeNotFound(e.out, id)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Book %d Returned by Patron %d\n", id, patron)
	if res.Reassigned {
		fmt.Fprintf(e.out, "\nBook %d Allotted to Patron %d\n", id, res.Holder)
	}
	fmt.Fprintln(e.out)
	return nil
}

func (e *Executor) deleteBook(cmd Command) error {
	args, err := cmd.ints(1)
	if err != nil {
		return err
	}
	waiting, err := e.cat.Remove(args[0])
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	writeRemoved(e.out, args[0], waiting)
	return nil
}

func (e *Executor) findClosestBook(cmd Command) error {
	args, err := cmd.ints(1)
	if err != nil {
		return err
	}
	for _, b := range e.cat.Nearest(args[0]) {
		writeBook(e.out, b)
	}
	return nil
}

func (e *Executor) colorFlipCount(cmd Command) error {
	if err := cmd.arity(0); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Colour Flip Count: %d\n\n", e.cat.FlipCount())
	return nil
}
