package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"tasabot/internal/domain"
)

type fakeReceiptStore struct {
	receipts []domain.Receipt
	nextID   int64
}

func (f *fakeReceiptStore) Insert(ctx context.Context, txID int64, fileURL string) (domain.Receipt, error) {
	f.nextID++
	r := domain.Receipt{ID: f.nextID, TransactionID: txID, FileURL: fileURL}
	f.receipts = append(f.receipts, r)
	return r, nil
}

type fakeObjectStore struct {
	uploads map[string]string // key -> content type
	fail    error
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if f.fail != nil {
		return f.fail
	}
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[key] = contentType
	return nil
}

func newReceiptFixture(t *testing.T) (*Receipts, *fakeReceiptStore, *fakeObjectStore, *Orders) {
	t.Helper()
	orders, _, rateStore := newOrderFixture()
	if _, err := newRatesService(rateStore).SetBuy(context.Background(), dec("36")); err != nil {
		t.Fatal(err)
	}
	store := &fakeReceiptStore{}
	objects := &fakeObjectStore{}
	return NewReceipts(store, objects, orders), store, objects, orders
}

func TestAttachReceipt(t *testing.T) {
	svc, store, objects, orders := newReceiptFixture(t)
	ctx := context.Background()

	q, err := orders.CreateQuote(ctx, 7, domain.OrderSell, dec("100"))
	if err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Attach(ctx, 7, "comprobante.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if rec.TransactionID != q.Order.ID {
		t.Errorf("attached to order %d, want %d", rec.TransactionID, q.Order.ID)
	}

	prefix := fmt.Sprintf("tx/%d/", q.Order.ID)
	if !strings.HasPrefix(rec.FileURL, prefix) {
		t.Errorf("key = %q, want prefix %q", rec.FileURL, prefix)
	}
	if !strings.HasSuffix(rec.FileURL, ".pdf") {
		t.Errorf("key = %q, want .pdf suffix", rec.FileURL)
	}
	if ct := objects.uploads[rec.FileURL]; ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if len(store.receipts) != 1 {
		t.Errorf("receipt rows = %d", len(store.receipts))
	}
}

func TestAttachWithoutPendingOrder(t *testing.T) {
	svc, store, objects, _ := newReceiptFixture(t)

	_, err := svc.Attach(context.Background(), 99, "foto.jpg", strings.NewReader("x"))
	if !errors.Is(err, ErrNoPendingOrder) {
		t.Fatalf("err = %v, want ErrNoPendingOrder", err)
	}
	if len(objects.uploads) != 0 {
		t.Error("nothing should be uploaded without a pending order")
	}
	if len(store.receipts) != 0 {
		t.Error("no receipt row should be written")
	}
}

func TestAttachUploadFailureWritesNoRow(t *testing.T) {
	svc, store, objects, orders := newReceiptFixture(t)
	ctx := context.Background()

	if _, err := orders.CreateQuote(ctx, 7, domain.OrderBuy, dec("50")); err != nil {
		t.Fatal(err)
	}
	objects.fail = errors.New("bucket unavailable")

	if _, err := svc.Attach(ctx, 7, "foto.jpg", strings.NewReader("x")); err == nil {
		t.Fatal("expected upload error")
	}
	if len(store.receipts) != 0 {
		t.Error("failed upload must not leave a receipt row")
	}
}

func TestAttachKeysAreUnique(t *testing.T) {
	svc, _, objects, orders := newReceiptFixture(t)
	ctx := context.Background()

	if _, err := orders.CreateQuote(ctx, 7, domain.OrderBuy, dec("50")); err != nil {
		t.Fatal(err)
	}

	a, err := svc.Attach(ctx, 7, "a.png", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Attach(ctx, 7, "b.png", strings.NewReader("y"))
	if err != nil {
		t.Fatal(err)
	}
	if a.FileURL == b.FileURL {
		t.Errorf("keys must not collide: %q", a.FileURL)
	}
	if len(objects.uploads) != 2 {
		t.Errorf("uploads = %d, want 2", len(objects.uploads))
	}
}

func TestClassifyFile(t *testing.T) {
	cases := []struct {
		name string
		ext  string
		mime string
	}{
		{"recibo.pdf", "pdf", "application/pdf"},
		{"captura.PNG", "png", "image/png"},
		{"foto.jpeg", "jpg", "image/jpeg"},
		{"sin_extension", "jpg", "image/jpeg"},
	}
	for _, tc := range cases {
		ext, mime := classifyFile(tc.name)
		if ext != tc.ext || mime != tc.mime {
			t.Errorf("classifyFile(%q) = %q/%q, want %q/%q", tc.name, ext, mime, tc.ext, tc.mime)
		}
	}
}
