package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"catercost/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []infra.Message
	err  error
}

func (f *fakeSender) Send(msg infra.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestShoppingListWorker_SendsCSV(t *testing.T) {
	sender := &fakeSender{}
	w := NewShoppingListWorker(sender)

	err := w.Process(context.Background(), mustJSON(t, ShoppingListPayload{
		Recipient: "compras@catercost.local",
		StartDate: "2025-05-01",
		EndDate:   "2025-05-08",
		Lines: []ShoppingListLine{
			{Name: "flour", Category: "Dry", Unit: "g", Required: "320", Stock: "100", ToBuy: "220"},
			{Name: "pasta", Category: "Dry", Unit: "g", Required: "2000", Stock: "0", ToBuy: "2000"},
		},
	}))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"compras@catercost.local"}, msg.To)
	assert.Equal(t, "Shopping list 2025-05-01 to 2025-05-08", msg.Subject)
	assert.Contains(t, msg.Text, "- flour: 220 g (Dry)")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "shopping-list-2025-05-01.csv", msg.Attachments[0].Filename)
	assert.Equal(t,
		"name,category,unit,required,stock,to_buy\nflour,Dry,g,320,100,220\npasta,Dry,g,2000,0,2000\n",
		string(msg.Attachments[0].Content))
}

func TestShoppingListWorker_EmptyList(t *testing.T) {
	sender := &fakeSender{}
	err := NewShoppingListWorker(sender).Process(context.Background(), mustJSON(t, ShoppingListPayload{Recipient: "a@b.c"}))
	require.NoError(t, err)
	assert.Contains(t, sender.sent[0].Text, "Nothing to buy")
}

func TestShoppingListWorker_Errors(t *testing.T) {
	w := NewShoppingListWorker(&fakeSender{})
	err := w.Process(context.Background(), json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrPermanent)

	relayErr := errors.New("451 try later")
	w = NewShoppingListWorker(&fakeSender{err: relayErr})
	err = w.Process(context.Background(), mustJSON(t, ShoppingListPayload{Recipient: "a@b.c"}))
	assert.ErrorIs(t, err, relayErr)
	assert.NotErrorIs(t, err, ErrPermanent)
}
