package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/eventstore"
	"github.com/pflow-xyz/go-multitoken/journal"
	"github.com/pflow-xyz/go-multitoken/multitoken"
	"github.com/pflow-xyz/go-multitoken/proof"
)

func demo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	journalOut := fs.String("journal", "", "Write the audit journal to a JSONL file")
	csvOut := fs.String("csv", "", "Write the audit journal to a CSV file")
	dbOut := fs.String("db", "", "Record the audit journal into a SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: multitoken demo [options]

Run a scripted ledger session: create two assets, mint, transfer,
approve, and move funds by delegation, then print the balances, the
audit journal, and the state commitment.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Print the session
  multitoken demo

  # Keep the journal for replay and proving
  multitoken demo --journal ledger.jsonl

  # Persist the audit trail
  multitoken demo --db ledger.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := journal.NewLog()
	sink := journal.Sink(log)
	if *dbOut != "" {
		store, err := eventstore.NewSQLiteStore(*dbOut)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = journal.Multi{log, eventstore.NewRecorder(store, "ledger")}
	}

	engine := multitoken.NewEngine(sink)

	alice := namedAddress("alice")
	bob := namedAddress("bob")
	carol := namedAddress("carol")
	dave := namedAddress("dave")

	const gold, silver multitoken.TokenID = 1, 2

	steps := []struct {
		desc string
		run  func() error
	}{
		{"create gold", func() error {
			return engine.Create(alice, gold, multitoken.AssetInfo{Name: "Gold", Symbol: "GLD", Decimals: 2})
		}},
		{"create silver with initial supply", func() error {
			return engine.Create(alice, silver, multitoken.AssetInfo{
				Name: "Silver", Symbol: "SLV", Decimals: 2, TotalSupply: uint256.NewInt(500),
			})
		}},
		{"mint gold to alice", func() error {
			return engine.Mint(alice, gold, alice, uint256.NewInt(100))
		}},
		{"alice pays bob", func() error {
			return engine.Transfer(alice, gold, bob, uint256.NewInt(30))
		}},
		{"alice authorizes carol", func() error {
			return engine.Approve(alice, gold, carol, uint256.NewInt(50))
		}},
		{"carol moves alice's gold to dave", func() error {
			return engine.TransferFrom(carol, gold, alice, dave, uint256.NewInt(40))
		}},
		{"alice grants dave blanket authority", func() error {
			return engine.ApproveGlobal(alice, dave, true)
		}},
		{"dave sweeps both assets", func() error {
			return engine.TransferFromBatch(dave,
				[]multitoken.TokenID{gold, silver},
				[]multitoken.Address{alice, alice},
				[]multitoken.Address{dave, dave},
				[]*uint256.Int{uint256.NewInt(10), uint256.NewInt(200)})
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}

	holders := []struct {
		name string
		addr multitoken.Address
	}{
		{"alice", alice}, {"bob", bob}, {"carol", carol}, {"dave", dave},
	}

	fmt.Println("=== Balances ===")
	for _, id := range []multitoken.TokenID{gold, silver} {
		info := engine.AssetInfo(id)
		fmt.Printf("%s (%s), supply %s:\n", info.Name, info.Symbol, info.TotalSupply.Dec())
		for _, h := range holders {
			bal, err := engine.BalanceOf(id, h.addr)
			if err != nil {
				return err
			}
			if !bal.IsZero() {
				fmt.Printf("  %-6s %s\n", h.name, bal.Dec())
			}
		}
	}

	remaining, err := engine.AllowanceOf(gold, alice, carol)
	if err != nil {
		return err
	}
	fmt.Printf("\ncarol's remaining gold allowance from alice: %s\n", remaining.Dec())

	fmt.Println("\n=== Journal ===")
	for _, ev := range log.Events() {
		fmt.Printf("%3d %-14s operator=%s\n", ev.Seq, ev.Type, ev.Operator)
	}

	snap := engine.Snapshot()
	fmt.Printf("\nstate commitment: %s\n", proof.CommitmentHex(proof.StateCommitment(snap)))

	if *journalOut != "" {
		if err := journal.WriteJSONLFile(*journalOut, log.Events()); err != nil {
			return err
		}
		fmt.Printf("journal written to %s\n", *journalOut)
	}
	if *csvOut != "" {
		if err := journal.WriteCSVFile(*csvOut, log.Events()); err != nil {
			return err
		}
		fmt.Printf("journal written to %s\n", *csvOut)
	}
	return nil
}

// namedAddress derives a stable demo address from a short name.
func namedAddress(name string) multitoken.Address {
	var a multitoken.Address
	copy(a[len(a)-len(name):], name)
	return a
}
