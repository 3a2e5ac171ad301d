package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/masjid-console/internal/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBalanceCheck_Covered(t *testing.T) {
	out, err := runCLI(t, "balance", "check", "--category", "Operasional Kas Tunai", "--amount", "50000", "--cash", "100000", "--bank", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "kas tunai (inferred)") {
		t.Fatalf("expected inferred cash source, got:\n%s", out)
	}
	if !strings.Contains(out, "Available: Rp 100.000") || !strings.Contains(out, "Balance OK") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestBalanceCheck_Insufficient(t *testing.T) {
	out, err := runCLI(t, "balance", "check", "--source", "bank", "--amount", "750000", "--cash", "1000000", "--bank", "500000")
	if !errors.Is(err, errInsufficient) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if !strings.Contains(out, "Saldo rekening bank tidak mencukupi") {
		t.Fatalf("expected warning, got:\n%s", out)
	}
}

func TestBalanceCheck_RejectsBadAmount(t *testing.T) {
	if _, err := runCLI(t, "balance", "check", "--amount", "-5", "--cash", "10"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	if _, err := runCLI(t, "balance", "check", "--amount", "5", "--cash", "lots"); err == nil {
		t.Fatalf("expected error for bad cash balance")
	}
}

func TestCategoryInfer(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"category", "infer", "Transfer Rekening BSI"}, "bank\tinferred"},
		{[]string{"category", "infer", "Infaq Jumat"}, "cash\tinferred"},
		{[]string{"category", "infer", "Infaq Jumat", "--source", "bank"}, "bank\texplicit"},
	}

	for _, tt := range tests {
		out, err := runCLI(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tt.args, err)
		}
		if strings.TrimSpace(out) != tt.want {
			t.Fatalf("%v: got %q, want %q", tt.args, strings.TrimSpace(out), tt.want)
		}
	}
}

func TestSummaryShow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer svc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"income":2000000,"expense":500000,"draftCount":1,"cashBalance":1000000,"bankBalance":500000}}`)
	}))
	defer srv.Close()

	out, err := runCLI(t, "summary", "show", "--url", srv.URL, "--token", "svc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Total saldo: Rp 1.500.000") || !strings.Contains(out, "Draft:       1") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = runCLI(t, "summary", "show", "--url", srv.URL, "--token", "svc", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"total_balance": "1500000"`) {
		t.Fatalf("unexpected JSON output:\n%s", out)
	}

	if _, err := runCLI(t, "summary", "show", "--url", srv.URL, "--token", "wrong"); err == nil {
		t.Fatalf("expected error for rejected token")
	}
}

type fetcherStub struct {
	calls atomic.Int32
}

func (f *fetcherStub) FetchSummary(ctx context.Context, token string) (domain.AccountSummary, error) {
	n := f.calls.Add(1)
	cash := decimal.NewFromInt(int64(n) * 1000)
	return domain.AccountSummary{CashBalance: cash, TotalBalance: cash}, nil
}

func TestWatchSummary_PrintsNewSnapshots(t *testing.T) {
	fetcher := &fetcherStub{}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	if err := watchSummary(ctx, &out, fetcher, "svc", 20*time.Millisecond, time.Second, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.calls.Load() < 2 {
		t.Fatalf("expected repeated refreshes, got %d", fetcher.calls.Load())
	}
	if !strings.Contains(out.String(), "Kas tunai:   Rp 1.000") {
		t.Fatalf("expected first snapshot in output:\n%s", out.String())
	}
}
