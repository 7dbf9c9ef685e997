package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"tasabot/core/logger"
	"tasabot/internal/domain"
)

// ReceiptStore persists receipt rows.
type ReceiptStore interface {
	Insert(ctx context.Context, transactionID int64, fileURL string) (domain.Receipt, error)
}

// ObjectStore uploads receipt files.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// Receipts attaches uploaded payment proofs to pending orders.
type Receipts struct {
	store   ReceiptStore
	objects ObjectStore
	orders  *Orders
}

func NewReceipts(store ReceiptStore, objects ObjectStore, orders *Orders) *Receipts {
	return &Receipts{store: store, objects: objects, orders: orders}
}

// Attach locates the user's newest pending order, uploads the file under a
// collision-free key and records the receipt row. Orders that already have
// a receiving account assigned still qualify: the receipt arrives last in
// the flow. Returns ErrNoPendingOrder when the user has nothing pending.
func (s *Receipts) Attach(ctx context.Context, userID int64, fileName string, body io.Reader) (domain.Receipt, error) {
	order, err := s.orders.LocatePending(ctx, userID, false)
	if err != nil {
		return domain.Receipt{}, err
	}

	ext, mime := classifyFile(fileName)
	key := fmt.Sprintf("tx/%d/%s.%s", order.ID, uuid.NewString(), ext)

	if err := s.objects.Upload(ctx, key, mime, body); err != nil {
		logger.SVCReceipts.Warn("receipt upload failed",
			slog.Int64("order_id", order.ID),
			slog.String("event", "receipt.upload_failed"),
			slog.String("object_key", key),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return domain.Receipt{}, fmt.Errorf("receipts: upload: %w", err)
	}

	rec, err := s.store.Insert(ctx, order.ID, key)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("receipts: insert: %w", err)
	}

	logger.SVCReceipts.Info("receipt attached",
		slog.Int64("order_id", order.ID),
		slog.String("event", "receipt.attach"),
		slog.Int64("receipt_id", rec.ID),
		slog.String("object_key", key),
		slog.String("content_type", mime),
	)
	return rec, nil
}

// classifyFile maps a Telegram file name to a storage extension and MIME
// type. PDFs and PNGs keep their type, everything else is treated as JPEG.
func classifyFile(fileName string) (ext, mime string) {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(fileName), ".")) {
	case "pdf":
		return "pdf", "application/pdf"
	case "png":
		return "png", "image/png"
	default:
		return "jpg", "image/jpeg"
	}
}
