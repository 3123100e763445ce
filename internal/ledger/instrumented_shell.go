package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentedShell struct {
	session        *Session
	scanner        *bufio.Scanner
	out            io.Writer
	telemetry      *TelemetryProvider
	currencySymbol string
}

func NewInstrumentedShell(telemetry *TelemetryProvider, session *Session, in io.Reader, out io.Writer, currencySymbol string) *InstrumentedShell {
	return &InstrumentedShell{
		session:        session,
		scanner:        bufio.NewScanner(in),
		out:            out,
		telemetry:      telemetry,
		currencySymbol: currencySymbol,
	}
}

// Run reads commands until exit, end of input or cancellation of ctx.
// A read blocked on the input does not delay cancellation.
func (s *InstrumentedShell) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	lines := s.readLines(ctx)
	for ctx.Err() == nil {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
		case line, ok = <-lines:
		}
		if !ok || ctx.Err() != nil {
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		// Create a new span for each command
		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		done := s.processCommand(cmdCtx, input)
		cmdSpan.End()
		if done {
			break
		}
	}

	span.AddEvent("shell_ended")
}

func (s *InstrumentedShell) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for s.scanner.Scan() {
			select {
			case lines <- s.scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// processCommand reports whether the session should end.
func (s *InstrumentedShell) processCommand(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	command := fields[0]
	args := strings.TrimSpace(strings.TrimPrefix(input, command))
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("command.name", command))

	switch command {
	case "check_in":
		s.handleCheckIn(ctx, args)
	case "check_out":
		s.handleCheckOut(ctx, args)
	case "list":
		s.handleList(ctx)
	case "fees":
		s.handleFees()
	case "create_ledger":
		s.handleCreateLedger(ctx, fields[1:])
	case "exit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		span.AddEvent("unknown_command", trace.WithAttributes(
			attribute.String("unknown_command", command),
		))
		fmt.Fprintf(s.out, "Unknown command: %s\n", command)
	}
	return false
}

// handleCheckIn takes the rest of the line, spaces included, as the plate.
func (s *InstrumentedShell) handleCheckIn(ctx context.Context, plate string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.check_in_command")
	defer span.End()

	if plate == "" {
		span.AddEvent("invalid_arguments")
		fmt.Fprintln(s.out, "Usage: check_in <plate>")
		return
	}

	s.session.CheckIn(ctx, plate)
	fmt.Fprintf(s.out, "Vehicle with plate %s checked in\n", plate)
}

// handleCheckOut takes the last word as the hours and everything before it
// as the plate. The plate is looked up before the hours are validated.
func (s *InstrumentedShell) handleCheckOut(ctx context.Context, args string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.check_out_command")
	defer span.End()

	i := strings.LastIndexAny(args, " \t")
	if i < 0 {
		span.AddEvent("invalid_arguments")
		fmt.Fprintln(s.out, "Usage: check_out <plate> <hours>")
		return
	}
	plate, rawHours := strings.TrimSpace(args[:i]), args[i+1:]

	if !s.session.IsParked(plate) {
		s.notParked(span, plate)
		return
	}

	hours, err := strconv.Atoi(rawHours)
	if err != nil || hours < 0 {
		span.RecordError(fmt.Errorf("invalid hours: %s", rawHours))
		span.AddEvent("invalid_hours")
		fmt.Fprintln(s.out, "Invalid hours")
		return
	}

	receipt, err := s.session.CheckOut(ctx, plate, hours)
	if errors.Is(err, ErrNotFound) {
		s.notParked(span, plate)
		return
	}

	span.AddEvent("check_out_successful")
	fmt.Fprintf(s.out, "Vehicle %s checked out. Total due: %s\n",
		receipt.Plate, FormatAmount(s.currencySymbol, receipt.AmountDue))
}

func (s *InstrumentedShell) notParked(span trace.Span, plate string) {
	span.AddEvent("check_out_failed")
	fmt.Fprintf(s.out, "Sorry, vehicle %s is not parked here. Check that the plate was typed correctly\n", plate)
}

func (s *InstrumentedShell) handleList(ctx context.Context) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.list_command")
	defer span.End()

	plates, err := s.session.ListParked(ctx)
	if errors.Is(err, ErrEmpty) {
		span.AddEvent("ledger_empty")
		fmt.Fprintln(s.out, "No vehicles parked")
		return
	}

	fmt.Fprintln(s.out, "Parked vehicles:")
	for _, plate := range plates {
		fmt.Fprintln(s.out, plate)
	}
}

func (s *InstrumentedShell) handleFees() {
	entryFee, hourlyFee := s.session.Fees()
	fmt.Fprintf(s.out, "Entry fee: %s, hourly fee: %s\n",
		FormatAmount(s.currencySymbol, entryFee),
		FormatAmount(s.currencySymbol, hourlyFee))
}

func (s *InstrumentedShell) handleCreateLedger(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer().Start(ctx, "shell.create_ledger_command")
	defer span.End()

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		fmt.Fprintln(s.out, "Usage: create_ledger <entry_fee> <hourly_fee>")
		return
	}

	entryFee, err := decimal.NewFromString(parts[0])
	if err != nil || entryFee.IsNegative() {
		span.AddEvent("invalid_entry_fee")
		fmt.Fprintln(s.out, "Invalid entry fee")
		return
	}
	hourlyFee, err := decimal.NewFromString(parts[1])
	if err != nil || hourlyFee.IsNegative() {
		span.AddEvent("invalid_hourly_fee")
		fmt.Fprintln(s.out, "Invalid hourly fee")
		return
	}

	s.session.Reset(ctx, entryFee, hourlyFee)
	span.AddEvent("ledger_created")
	fmt.Fprintf(s.out, "Created a ledger with entry fee %s and hourly fee %s\n",
		FormatAmount(s.currencySymbol, entryFee), FormatAmount(s.currencySymbol, hourlyFee))
}
