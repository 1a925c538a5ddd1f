package backup_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/wattcount/internal/backup"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/repository"
	"github.com/mmynk/wattcount/internal/storage"
	"github.com/mmynk/wattcount/internal/storage/memory"
)

var exportTime = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*backup.Engine, *storage.RecordStore) {
	t.Helper()
	store := storage.New(memory.New())
	require.NoError(t, store.Init(context.Background()))
	return backup.New(store, backup.WithClock(func() time.Time { return exportTime })), store
}

func populate(t *testing.T, store *storage.RecordStore) {
	t.Helper()
	ctx := context.Background()
	repos := repository.New(store)

	alice, err := repos.Users.Create(ctx, models.User{Username: "alice", PhoneNumber: "111", Role: models.RolePrimary, GroupCode: "ALICE001"})
	require.NoError(t, err)
	_, err = repos.GroupCodes.CreateWithCode(ctx, "ALICE001", alice.ID, nil)
	require.NoError(t, err)
	rec, err := repos.Consumption.Create(ctx, models.ConsumptionRecord{
		UserID: alice.ID, ReadingDate: models.NewDate(2024, 5, 1),
		PreviousReading: decimal.NewFromInt(100), CurrentReading: decimal.NewFromInt(180),
	})
	require.NoError(t, err)
	bill, err := repos.Bills.Create(ctx, models.Bill{UserID: alice.ID, BillingCycle: "2024-05", ConsumptionRecordID: rec.ID, TotalAmount: decimal.RequireFromString("20.5")})
	require.NoError(t, err)
	_, err = repos.Payments.Create(ctx, models.Payment{BillID: bill.ID, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = repos.Rates.Create(ctx, models.Rate{PricePerKWh: decimal.RequireFromString("0.25")})
	require.NoError(t, err)
}

func snapshot(t *testing.T, store *storage.RecordStore) map[storage.Collection][]json.RawMessage {
	t.Helper()
	out := make(map[storage.Collection][]json.RawMessage)
	for _, c := range storage.Collections() {
		records, err := store.ReadRaw(context.Background(), c)
		require.NoError(t, err)
		out[c] = records
	}
	return out
}

func TestExportEnvelope(t *testing.T) {
	engine, store := newEngine(t)
	populate(t, store)

	out, err := engine.Export(context.Background())
	require.NoError(t, err)
	require.Contains(t, string(out), "\n  \"version\": \"1.0\"")

	var env backup.Envelope
	require.NoError(t, json.Unmarshal(out, &env))
	require.Equal(t, backup.FormatVersion, env.Version)
	require.True(t, env.ExportedAt.Equal(exportTime))
	require.Len(t, env.Data, 6)
	require.Len(t, env.Data["users"], 1)
	require.Len(t, env.Data["group_codes"], 1)
	require.Len(t, env.Data["payments"], 1)

	codesOnly, err := engine.ExportCodes(context.Background())
	require.NoError(t, err)
	var codesEnv backup.Envelope
	require.NoError(t, json.Unmarshal(codesOnly, &codesEnv))
	require.Len(t, codesEnv.Data, 1)
	require.Contains(t, codesEnv.Data, "group_codes")
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	source, sourceStore := newEngine(t)
	populate(t, sourceStore)

	out, err := source.Export(ctx)
	require.NoError(t, err)

	target, targetStore := newEngine(t)
	result, err := target.Import(ctx, out, backup.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, result.Counts, 6)

	require.Equal(t, snapshot(t, sourceStore), snapshot(t, targetStore))

	// The imported data stays usable through the repositories.
	repos := repository.New(targetStore)
	bills, err := repos.Bills.GetAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.Equal(t, models.StatusPartial, bills[0].Status)
	require.Equal(t, "alice", bills[0].Username)
}

func TestMergeKeepsExistingRecords(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)
	require.NoError(t, storage.Write(ctx, store, storage.Users, []models.User{
		{ID: "u1", Username: "existing"},
		{ID: "u2", Username: "kept"},
	}))

	envelope := []byte(`{
		"version": "1.0",
		"exportedAt": "2024-05-15T12:00:00Z",
		"data": {
			"users": [
				{"id": "u1", "username": "incoming"},
				{"id": "u3", "username": "new"},
				{"id": "u3", "username": "duplicate in envelope"}
			]
		}
	}`)

	_, err := engine.Import(ctx, envelope, backup.ImportOptions{Merge: true})
	require.NoError(t, err)

	users, err := storage.Read[models.User](ctx, store, storage.Users)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "existing", users[0].Username)
	require.Equal(t, "kept", users[1].Username)
	require.Equal(t, "new", users[2].Username)

	_, err = engine.Import(ctx, envelope, backup.ImportOptions{})
	require.NoError(t, err)
	users, err = storage.Read[models.User](ctx, store, storage.Users)
	require.NoError(t, err)
	require.Len(t, users, 3, "replace keeps the envelope verbatim")
	require.Equal(t, "incoming", users[0].Username)
}

func TestImportSelection(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	envelope := []byte(`{"version":"1.0","data":{
		"users":[{"id":"u1","username":"alice"}],
		"shared_codes":[{"id":"c1","code":"ALICE001","owner_id":"u1"}],
		"rates":null,
		"unknown":[1,2,3]
	}}`)

	result, err := engine.ImportCodes(ctx, envelope, false)
	require.NoError(t, err)
	require.Equal(t, map[storage.Collection]int{storage.GroupCodes: 1}, result.Counts)

	users, err := store.ReadRaw(ctx, storage.Users)
	require.NoError(t, err)
	require.Empty(t, users, "users were not selected")

	codes, err := storage.Read[models.GroupCode](ctx, store, storage.GroupCodes)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	require.Equal(t, "ALICE001", codes[0].Code)

	result, err = engine.Import(ctx, envelope, backup.ImportOptions{Collections: []storage.Collection{storage.Users, storage.Rates}})
	require.NoError(t, err)
	require.Equal(t, map[storage.Collection]int{storage.Users: 1}, result.Counts)
}

func TestCanonicalNameWinsOverAlias(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t)

	envelope := []byte(`{"data":{
		"shared_codes":[{"id":"old"}],
		"group_codes":[{"id":"new"}]
	}}`)
	_, err := engine.Import(ctx, envelope, backup.ImportOptions{})
	require.NoError(t, err)

	codes, err := storage.Read[models.GroupCode](ctx, store, storage.GroupCodes)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	require.Equal(t, "new", codes[0].ID)
}

func TestImportRejectsMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		envelope string
	}{
		{"not json", `{"data":`},
		{"missing data", `{"version":"1.0"}`},
		{"null data", `{"data":null}`},
		{"data not an object", `{"data":[]}`},
		{"collection not an array", `{"data":{"users":{"id":"u1"}}}`},
		{"record not an object", `{"data":{"users":[{"id":"u1"}],"bills":["b1"]}}`},
		{"null record", `{"data":{"users":[null]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine, store := newEngine(t)

			_, err := engine.Import(ctx, []byte(tt.envelope), backup.ImportOptions{})
			require.ErrorIs(t, err, models.ErrInvalidFormat)
			require.ErrorIs(t, err, models.ErrFormat)

			users, err := store.ReadRaw(ctx, storage.Users)
			require.NoError(t, err)
			require.Empty(t, users, "nothing may be written from a malformed envelope")
		})
	}
}

func TestImportLegacyExportKeepsGroupLinks(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	legacy := `{
  "version": "1.0",
  "exportedAt": "2024-05-01T10:00:00.000Z",
  "data": {
    "users": [
      {"id": "p1", "username": "alice", "phone_number": "111", "password": "pw", "role": "main_user", "shared_code": "C0DE1234", "is_active": true, "created_at": "2024-04-01T10:00:00.000Z"},
      {"id": "m1", "username": "bob", "phone_number": "222", "password": "pw", "role": "shared_user", "shared_code": "c0de1234", "is_active": true, "created_at": "2024-04-02T10:00:00.000Z"}
    ],
    "shared_codes": [
      {"id": "c1", "code": "C0DE1234", "main_user_id": "p1", "expires_at": null, "is_used": true, "used_by_user_id": "m1", "created_at": "2024-04-01T10:00:00.000Z"}
    ],
    "bills": [
      {"id": "b1", "user_id": "p1", "billing_cycle": "2024-04", "total_amount": 42.5, "status": "unpaid", "created_at": "2024-04-30T10:00:00.000Z", "updated_at": "2024-04-30T10:00:00.000Z"}
    ]
  }
}`

	res, err := engine.Import(ctx, []byte(legacy), backup.ImportOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Counts[storage.GroupCodes])

	repos := repository.New(store)

	codes, err := repos.GroupCodes.GetAll(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, codes, 1)
	require.Equal(t, "m1", codes[0].UsedBy)

	members, err := repos.Users.ListGroupMembers(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "m1", members[0].ID)
	require.Equal(t, models.RoleMember, members[0].Role)

	bills, err := repos.Bills.GetMy(ctx, "m1", 0)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.Equal(t, "b1", bills[0].ID)
	require.True(t, bills[0].TotalAmount.Equal(decimal.RequireFromString("42.5")))
}
