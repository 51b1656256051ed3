package worker

// shopping_list_worker.go
// Mails the consolidated shopping list of a planning window to purchasing,
// with the list attached as CSV.

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"catercost/internal/infra"

	"github.com/rs/zerolog/log"
)

// ShoppingListLine is one ingredient to buy. Quantities travel as strings to
// keep decimal precision through JSON.
type ShoppingListLine struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Required string `json:"required"`
	Stock    string `json:"stock"`
	ToBuy    string `json:"to_buy"`
}

// ShoppingListPayload is the job body sent to QueueShoppingList.
type ShoppingListPayload struct {
	Recipient   string             `json:"recipient"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	RequestedBy string             `json:"requested_by,omitempty"`
	Lines       []ShoppingListLine `json:"lines"`
}

// Sender delivers an email message.
type Sender interface {
	Send(msg infra.Message) error
}

// ShoppingListWorker renders and mails shopping lists.
type ShoppingListWorker struct {
	mailer Sender
}

func NewShoppingListWorker(mailer Sender) *ShoppingListWorker {
	return &ShoppingListWorker{mailer: mailer}
}

// Process is a Handler for JobTypeShoppingList.
func (w *ShoppingListWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p ShoppingListPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", ErrPermanent, err)
	}
	if p.Recipient == "" {
		return fmt.Errorf("%w: empty recipient", ErrPermanent)
	}

	attachment, err := renderCSV(p.Lines)
	if err != nil {
		return fmt.Errorf("%w: render csv: %v", ErrPermanent, err)
	}

	msg := infra.Message{
		To:      []string{p.Recipient},
		Subject: fmt.Sprintf("Shopping list %s to %s", p.StartDate, p.EndDate),
		Text:    renderText(p),
		Attachments: []infra.Attachment{{
			Filename:    fmt.Sprintf("shopping-list-%s.csv", p.StartDate),
			ContentType: "text/csv",
			Content:     attachment,
		}},
	}
	if err := w.mailer.Send(msg); err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Str("to", p.Recipient).Msg("shopping_list_worker: mail relay circuit open")
		}
		return err
	}
	log.Info().Str("to", p.Recipient).Int("lines", len(p.Lines)).Msg("shopping_list_worker: shopping list sent")
	return nil
}

func renderText(p ShoppingListPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Production window %s to %s\n", p.StartDate, p.EndDate)
	if p.RequestedBy != "" {
		fmt.Fprintf(&b, "Requested by %s\n", p.RequestedBy)
	}
	b.WriteString("\n")
	if len(p.Lines) == 0 {
		b.WriteString("Stock covers every requirement. Nothing to buy.\n")
		return b.String()
	}
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "- %s: %s %s (%s)\n", l.Name, l.ToBuy, l.Unit, l.Category)
	}
	return b.String()
}

func renderCSV(lines []ShoppingListLine) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name", "category", "unit", "required", "stock", "to_buy"}); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if err := w.Write([]string{l.Name, l.Category, l.Unit, l.Required, l.Stock, l.ToBuy}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
