package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// listSeparator joins the batch columns (ids, owners, tos, amounts,
// remaining) inside a single CSV cell.
const listSeparator = ";"

// csvHeader is the fixed column set. Every event kind shares it; cells a
// kind does not use stay empty.
var csvHeader = []string{
	"seq", "type", "timestamp", "operator",
	"id", "ids",
	"from", "to", "owners", "tos",
	"owner", "spender",
	"amount", "amounts", "remaining",
	"approved", "delegated",
	"name", "symbol", "decimals", "supply",
}

// WriteCSV exports events as CSV with a header row. The CSV form is for
// spreadsheets and diffing; JSONL is the replayable format.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, ev := range events {
		if err := cw.Write(csvRow(ev)); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile exports events to a CSV file, creating or truncating it.
func WriteCSVFile(filename string, events []Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, events); err != nil {
		return err
	}
	return f.Close()
}

func csvRow(ev Event) []string {
	approved := ""
	if ev.Approved != nil {
		approved = strconv.FormatBool(*ev.Approved)
	}
	decimals := ""
	if ev.Type == TypeCreated {
		decimals = strconv.FormatUint(uint64(ev.Decimals), 10)
	}
	// Zero is a legal token id, so the cell is blank only for event kinds
	// that carry no single id at all.
	id := ""
	switch ev.Type {
	case TypeCreated, TypeTransferSingle, TypeApproval:
		id = strconv.FormatUint(ev.ID, 10)
	}
	delegated := ""
	if ev.Delegated {
		delegated = "true"
	}
	return []string{
		strconv.FormatUint(ev.Seq, 10),
		string(ev.Type),
		ev.Timestamp.Format(time.RFC3339Nano),
		ev.Operator,
		id,
		joinUints(ev.IDs),
		ev.From,
		ev.To,
		strings.Join(ev.Owners, listSeparator),
		strings.Join(ev.Tos, listSeparator),
		ev.Owner,
		ev.Spender,
		ev.Amount,
		strings.Join(ev.Amounts, listSeparator),
		strings.Join(ev.Remaining, listSeparator),
		approved,
		delegated,
		ev.Name,
		ev.Symbol,
		decimals,
		ev.Supply,
	}
}

func joinUints(vs []uint64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, listSeparator)
}
