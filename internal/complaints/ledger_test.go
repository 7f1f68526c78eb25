package complaints

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

type fixture struct {
	store  *storage.MemoryStore
	ledger *Ledger

	masterID uuid.UUID
	agencyID uuid.UUID
	clientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	master := &models.Master{Name: "Platform", Email: "master@example.com"}
	require.NoError(t, store.CreateMaster(ctx, master))

	agency := &models.Agency{MasterID: master.ID, Name: "Acme Media", Email: "acme@example.com"}
	require.NoError(t, store.CreateAgency(ctx, agency))

	client := &models.AgencyClient{AgencyID: agency.ID, BusinessName: "Corner Cafe", BusinessEmail: "cafe@example.com"}
	require.NoError(t, store.CreateAgencyClient(ctx, client))

	return &fixture{
		store:    store,
		ledger:   NewLedger(store, zerolog.Nop()),
		masterID: master.ID,
		agencyID: agency.ID,
		clientID: client.ID,
	}
}

func TestSubmitResolvesReceiver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.ledger.SubmitFromClient(ctx, f.clientID, "  screen is dark  ")
	require.NoError(t, err)
	assert.Equal(t, f.agencyID, c.AgencyID)
	assert.Equal(t, "screen is dark", c.Message)
	assert.Equal(t, models.ComplaintPending, c.Status)

	a, err := f.ledger.SubmitFromAgency(ctx, f.agencyID, "payout is late")
	require.NoError(t, err)
	assert.Equal(t, f.masterID, a.MasterID)
}

func TestSubmitEmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.SubmitFromClient(context.Background(), f.clientID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestEditOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.ledger.SubmitFromClient(ctx, f.clientID, "screen is dark")
	require.NoError(t, err)

	edited, err := f.ledger.EditClientMessage(ctx, f.clientID, c.ID, "screen flickers")
	require.NoError(t, err)
	assert.Equal(t, "screen flickers", edited.Message)
	assert.Equal(t, models.ComplaintPending, edited.Status)

	_, err = f.ledger.ReplyToClient(ctx, f.agencyID, c.ID, "technician dispatched", models.ComplaintResolved)
	require.NoError(t, err)

	_, err = f.ledger.EditClientMessage(ctx, f.clientID, c.ID, "still broken")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestEditByNonSubmitter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.ledger.SubmitFromClient(ctx, f.clientID, "screen is dark")
	require.NoError(t, err)

	_, err = f.ledger.EditClientMessage(ctx, uuid.New(), c.ID, "hijacked")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestReplyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.ledger.SubmitFromClient(ctx, f.clientID, "screen is dark")
	require.NoError(t, err)

	_, err = f.ledger.ReplyToClient(ctx, f.agencyID, c.ID, "  ", models.ComplaintResolved)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.ledger.ReplyToClient(ctx, f.agencyID, c.ID, "ok", models.ComplaintStatus("CLOSED"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.ledger.ReplyToClient(ctx, uuid.New(), c.ID, "ok", models.ComplaintResolved)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAgencyThreadLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.ledger.SubmitFromAgency(ctx, f.agencyID, "payout is late")
	require.NoError(t, err)

	replied, err := f.ledger.ReplyToAgency(ctx, f.masterID, c.ID, "processed today", models.ComplaintRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, replied.Status)
	assert.Equal(t, "processed today", replied.Reply)

	_, err = f.ledger.EditAgencyMessage(ctx, f.agencyID, c.ID, "edited")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestListBySubmitterAndReceiver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.SubmitFromClient(ctx, f.clientID, "first")
	require.NoError(t, err)
	_, err = f.ledger.SubmitFromClient(ctx, f.clientID, "second")
	require.NoError(t, err)

	mine, err := f.ledger.ListByClient(ctx, f.clientID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	inbox, err := f.ledger.ListForAgency(ctx, f.agencyID)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	other, err := f.ledger.ListForAgency(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
