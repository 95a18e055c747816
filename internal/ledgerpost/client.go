// Package ledgerpost talks to the club's accounting service. The
// engine only pushes: voucher notifications at booking/confirm time and
// ledger postings on successful payment. Failures are reported to the
// caller, which logs and moves on; nothing in the booking workflow
// blocks on accounting.
package ledgerpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// Client posts vouchers and ledger entries to the accounting service
// over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type voucherPayload struct {
	VoucherID  string `json:"voucher_id"`
	BookingID  string `json:"booking_id"`
	ClaimantID string `json:"claimant_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	State      string `json:"state"`
}

type ledgerPayload struct {
	ClaimantID string `json:"claimant_id"`
	Amount     string `json:"amount"`
	PostedAt   string `json:"posted_at"`
}

func (c *Client) EmitVoucher(ctx context.Context, kind domain.ResourceKind, voucher domain.Voucher) error {
	return c.post(ctx, "/vouchers", voucherPayload{
		VoucherID:  voucher.ID,
		BookingID:  voucher.BookingID,
		ClaimantID: voucher.ClaimantID,
		Kind:       string(kind),
		Amount:     voucher.Amount.String(),
		State:      string(voucher.State),
	})
}

func (c *Client) PostLedger(ctx context.Context, claimantID string, amount decimal.Decimal) error {
	return c.post(ctx, "/ledger/entries", ledgerPayload{
		ClaimantID: claimantID,
		Amount:     amount.String(),
		PostedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// Noop is the poster used when no accounting endpoint is configured.
// It logs each call so local runs still show the workflow firing.
type Noop struct {
	Logger *log.Logger
}

func (n Noop) EmitVoucher(_ context.Context, kind domain.ResourceKind, voucher domain.Voucher) error {
	n.logger().Printf("voucher %s booking=%s kind=%s amount=%s state=%s (no poster configured)",
		voucher.ID, voucher.BookingID, kind, voucher.Amount, voucher.State)
	return nil
}

func (n Noop) PostLedger(_ context.Context, claimantID string, amount decimal.Decimal) error {
	n.logger().Printf("ledger entry claimant=%s amount=%s (no poster configured)", claimantID, amount)
	return nil
}

func (n Noop) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.Default()
}
