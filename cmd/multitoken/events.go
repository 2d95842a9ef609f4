package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pflow-xyz/go-multitoken/journal"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	typeFilter := fs.String("type", "", "Filter by event type")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: multitoken events <journal.jsonl> [options]

Display the timeline of events in an audit journal.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show all events
  multitoken events ledger.jsonl

  # Only transfers
  multitoken events ledger.jsonl --type TransferSingle
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("journal file required")
	}

	evs, err := journal.ReadJSONLFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	shown := 0
	for _, ev := range evs {
		if *typeFilter != "" && string(ev.Type) != *typeFilter {
			continue
		}
		shown++
		fmt.Printf("%3d  %-14s  %s\n", ev.Seq, ev.Type, describe(ev))
	}
	if shown == 0 {
		fmt.Println("No events recorded")
	}
	return nil
}

func describe(ev journal.Event) string {
	switch ev.Type {
	case journal.TypeCreated:
		return fmt.Sprintf("id=%d name=%q symbol=%q decimals=%d supply=%s",
			ev.ID, ev.Name, ev.Symbol, ev.Decimals, ev.Supply)
	case journal.TypeTransferSingle:
		s := fmt.Sprintf("id=%d from=%s to=%s amount=%s", ev.ID, ev.From, ev.To, ev.Amount)
		if ev.Delegated {
			s += " delegated"
		}
		return s
	case journal.TypeTransferBatch:
		sender := ev.From
		if sender == "" {
			sender = "[" + strings.Join(ev.Owners, " ") + "]"
		}
		return fmt.Sprintf("ids=%v from=%s tos=%v amounts=%v", ev.IDs, sender, ev.Tos, ev.Amounts)
	case journal.TypeApproval:
		return fmt.Sprintf("id=%d owner=%s spender=%s amount=%s", ev.ID, ev.Owner, ev.Spender, ev.Amount)
	case journal.TypeApprovalBatch:
		return fmt.Sprintf("ids=%v owners=%v spender=%s remaining=%v", ev.IDs, ev.Owners, ev.Spender, ev.Remaining)
	case journal.TypeApprovalGlobal:
		approved := ev.Approved != nil && *ev.Approved
		return fmt.Sprintf("owner=%s spender=%s approved=%t", ev.Owner, ev.Spender, approved)
	default:
		return ""
	}
}
