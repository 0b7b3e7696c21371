package pgparcels

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "parcelbox_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/parcelbox_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGParcels_RepoFlow(t *testing.T) {
	ctx := context.Background()
	st := startStorage(t)
	require.NoError(t, st.Ping(ctx))

	postal := "1234AB"
	a, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{HumanName: "Кроссовки", TrackingID: "3STEST1", CarrierID: "postnl", PostalCode: &postal})
	require.NoError(t, err)
	require.NotZero(t, a.ID)
	require.Equal(t, "1234AB", a.PostalCodeValue())

	b, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{HumanName: "Книга", TrackingID: "LP001", CarrierID: "cainiao"})
	require.NoError(t, err)
	require.Nil(t, b.PostalCode)

	got, err := st.GetParcelRef(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Кроссовки", got.HumanName)

	_, err = st.GetParcelRef(ctx, 999999)
	require.ErrorIs(t, err, models.ErrParcelNotFound)

	// снимок статуса
	snap, err := st.GetStatusSnapshot(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, snap)

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertStatusSnapshot(ctx, models.StatusSnapshot{ParcelRefID: a.ID, LastStatus: models.StatusInTransit, LastChangeTimestamp: t1}))
	require.NoError(t, st.UpsertStatusSnapshot(ctx, models.StatusSnapshot{ParcelRefID: a.ID, LastStatus: models.StatusDelivered, LastChangeTimestamp: t1.Add(time.Hour)}))

	snap, err = st.GetStatusSnapshot(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, snap.LastStatus)
	require.True(t, snap.LastChangeTimestamp.Equal(t1.Add(time.Hour)))

	err = st.UpdateStatusSnapshot(ctx, models.StatusSnapshot{ParcelRefID: b.ID, LastStatus: models.StatusInTransit, LastChangeTimestamp: t1})
	require.ErrorIs(t, err, models.ErrSnapshotNotFound)
	require.NoError(t, st.InsertStatusSnapshot(ctx, models.StatusSnapshot{ParcelRefID: b.ID, LastStatus: models.StatusInTransit, LastChangeTimestamp: t1}))
	require.Error(t, st.InsertStatusSnapshot(ctx, models.StatusSnapshot{ParcelRefID: b.ID, LastStatus: models.StatusInTransit, LastChangeTimestamp: t1}))

	// история архивной посылки
	events := []models.HistoryEvent{
		{Description: "Delivered", Time: t1.Add(2 * time.Hour), Location: "Utrecht"},
		{Description: "Sorted", Time: t1, Location: ""},
		{Description: "Received", Time: t1, Location: ""},
	}
	require.NoError(t, st.InsertHistoryEvents(ctx, a.ID, events))
	require.NoError(t, st.InsertHistoryEvents(ctx, a.ID, events[:1]))

	hist, err := st.GetHistoryEvents(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	require.Equal(t, "Delivered", hist[0].Description)
	require.Equal(t, "Sorted", hist[1].Description)
	require.Equal(t, "Received", hist[2].Description)

	// архив + список
	require.NoError(t, st.SetArchived(ctx, a.ID, true))
	require.NoError(t, st.DismissArchivePrompt(ctx, a.ID))
	require.ErrorIs(t, st.SetArchived(ctx, 999999, true), models.ErrParcelNotFound)

	active, err := st.ListParcelRefs(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, b.ID, active[0].ID)

	all, err := st.ListParcelRefs(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[0].IsArchived)
	require.True(t, all[0].ArchivePromptDismissed)

	// удаление
	require.NoError(t, st.DeleteStatusSnapshot(ctx, a.ID))
	require.NoError(t, st.DeleteHistory(ctx, a.ID))
	require.NoError(t, st.DeleteParcelRef(ctx, a.ID))
	require.ErrorIs(t, st.DeleteParcelRef(ctx, a.ID), models.ErrParcelNotFound)

	hist, err = st.GetHistoryEvents(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestPGParcels_ClaimDue(t *testing.T) {
	ctx := context.Background()
	st := startStorage(t)

	due, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{TrackingID: "A1", CarrierID: "demo"})
	require.NoError(t, err)
	later, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{TrackingID: "B2", CarrierID: "demo"})
	require.NoError(t, err)
	archived, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{TrackingID: "C3", CarrierID: "demo"})
	require.NoError(t, err)

	_, err = st.db.Exec(ctx, `UPDATE parcels SET next_check_at = now() - interval '1 minute' WHERE id = ANY($1)`, []int64{int64(due.ID), int64(archived.ID)})
	require.NoError(t, err)
	_, err = st.db.Exec(ctx, `UPDATE parcels SET next_check_at = now() + interval '1 hour' WHERE id = $1`, later.ID)
	require.NoError(t, err)
	require.NoError(t, st.SetArchived(ctx, archived.ID, true))

	now := time.Now().UTC()
	lease := 10 * time.Second
	claimed, err := st.ClaimDueParcelRefs(ctx, now, 10, lease)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, due.ID, claimed[0].ID)
	require.WithinDuration(t, now.Add(lease), claimed[0].NextCheckAt, 2*time.Second)

	// повторный claim в пределах lease ничего не отдаёт
	again, err := st.ClaimDueParcelRefs(ctx, now, 10, lease)
	require.NoError(t, err)
	require.Empty(t, again)

	next := now.Add(30 * time.Minute)
	require.NoError(t, st.ScheduleNextCheck(ctx, due.ID, next, true))
	require.NoError(t, st.ScheduleNextCheck(ctx, due.ID, next, true))
	got, err := st.GetParcelRef(ctx, due.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, got.CheckFailCount)
	require.WithinDuration(t, next, got.NextCheckAt, time.Second)

	require.NoError(t, st.ScheduleNextCheck(ctx, due.ID, next, false))
	got, err = st.GetParcelRef(ctx, due.ID)
	require.NoError(t, err)
	require.Zero(t, got.CheckFailCount)
}
