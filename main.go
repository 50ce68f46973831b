package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/config"
	"github.com/ldimov09/mocksys-tui/internal/history"
	"github.com/ldimov09/mocksys-tui/internal/session"
	"github.com/ldimov09/mocksys-tui/internal/transfer"
)

// apiGateway adapts the REST client to the transfer coordinator's view of
// the backend. A preview is a plain user lookup; no money moves.
type apiGateway struct {
	client *api.Client
}

func (g apiGateway) ResolveReceiver(ctx context.Context, accountNumber string) (transfer.Receiver, error) {
	u, err := g.client.User(ctx, accountNumber)
	if err != nil {
		return transfer.Receiver{}, err
	}
	return transfer.Receiver{Name: u.Name, AccountNumber: u.AccountNumber}, nil
}

func (g apiGateway) CommitTransfer(ctx context.Context, receiverAccount, pin string, amount decimal.Decimal) (transfer.Receipt, error) {
	receipt, err := g.client.Transfer(ctx, receiverAccount, pin, amount)
	if err != nil {
		return transfer.Receipt{}, err
	}
	return transfer.Receipt{Balance: receipt.Balance}, nil
}

// historyRecorder feeds committed transfers into the local suggestion cache.
type historyRecorder struct {
	store *history.Store
}

func (r historyRecorder) RecordTransfer(ctx context.Context, receiverAccount, receiverName string, amount decimal.Decimal) error {
	return r.store.Record(ctx, history.Entry{
		ReceiverAccount: receiverAccount,
		ReceiverName:    receiverName,
		Amount:          amount,
	})
}

func main() {
	check := flag.Bool("check", false, "run the headless self-check and exit")
	flag.Parse()

	if *check {
		if err := runSelfCheck(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "check failed:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sess := session.NewStore(cfg.SessionPath())
	if err := sess.Load(); err != nil {
		log.Printf("warn: could not restore session: %v", err)
	}

	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		// The app works without suggestions; just say so.
		log.Printf("warn: local history unavailable: %v", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	client := api.NewClient(cfg.API.BaseURL, sess.Token)

	opts := []transfer.Option{transfer.WithTimeout(cfg.API.RequestTimeout)}
	if hist != nil {
		opts = append(opts, transfer.WithRecorder(historyRecorder{store: hist}))
	}
	coord := transfer.New(apiGateway{client: client}, sess, opts...)

	p := tea.NewProgram(newModel(cfg, sess, client, coord, hist), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
