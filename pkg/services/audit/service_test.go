package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	auditstore "github.com/de-tools/grc-admin/pkg/store/sqldb/audit"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject string, payload any) error {
	return m.Called(subject, payload).Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

type mockArchiver struct {
	mock.Mock
	body string
}

func (m *mockArchiver) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	data, _ := io.ReadAll(body)
	m.body = string(data)
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     auditstore.Store
	publisher *mockPublisher
	archiver  *mockArchiver
	svc       *service
}

func setupFixture(t *testing.T, withArchiver bool) *fixture {
	store, err := auditstore.NewStore(sqldbtest.NewDB(t))
	require.NoError(t, err)

	f := &fixture{
		store:     store,
		publisher: new(mockPublisher),
		archiver:  new(mockArchiver),
	}
	var svc Service
	if withArchiver {
		svc = NewService(store, f.publisher, f.archiver, metrics.New())
	} else {
		svc = NewService(store, f.publisher, nil, nil)
	}
	f.svc = svc.(*service)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *fixture) seed(t *testing.T, id string, age time.Duration) {
	require.NoError(t, f.store.Insert(context.Background(), &domain.AuditLog{
		ID:          id,
		UserID:      "u1",
		UserEmail:   "u1@example.com",
		Action:      domain.AuditUpdate,
		EntityType:  "sop",
		EntityID:    "s1",
		Description: "Updated SOP, step \"2\"",
		IPAddress:   "10.0.0.1",
		StatusCode:  200,
		CreatedAt:   now.Add(-age),
	}))
}

func TestService_Record(t *testing.T) {
	t.Run("fills defaults and publishes", func(t *testing.T) {
		f := setupFixture(t, false)
		f.publisher.On("Publish", "grc.audit.create", mock.Anything).Return(nil)

		entry := &domain.AuditLog{Action: domain.AuditCreate, EntityType: "control", EntityID: "c1"}
		require.NoError(t, f.svc.Record(context.Background(), entry))

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "system", entry.UserID)
		assert.Equal(t, now, entry.CreatedAt)

		got, err := f.svc.Get(context.Background(), entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "control", got.EntityType)
		f.publisher.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the record", func(t *testing.T) {
		f := setupFixture(t, false)
		f.publisher.On("Publish", "grc.audit.delete", mock.Anything).Return(errors.New("nats down"))

		err := f.svc.Record(context.Background(), &domain.AuditLog{UserID: "u1", Action: domain.AuditDelete, EntityType: "sop"})
		assert.NoError(t, err)
	})
}

func TestService_ExportCSV(t *testing.T) {
	f := setupFixture(t, false)
	f.seed(t, "a1", 2*time.Hour)
	f.seed(t, "a2", time.Hour)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportCSV(context.Background(), domain.AuditFilter{EntityType: "sop"}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"a1", "2024-06-30T10:00:00Z", "u1", "u1@example.com", "update", "sop", "s1",
		"Updated SOP, step \"2\"", "10.0.0.1", "200",
	}, records[1])
	assert.Equal(t, "a2", records[2][0])
}

func TestService_Stats_InvalidRange(t *testing.T) {
	f := setupFixture(t, false)
	from, to := now, now.Add(-time.Hour)

	_, err := f.svc.Stats(context.Background(), &from, &to)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestService_Cleanup(t *testing.T) {
	t.Run("invalid retention", func(t *testing.T) {
		f := setupFixture(t, false)
		_, err := f.svc.Cleanup(context.Background(), 0)
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	t.Run("deletes without archiver", func(t *testing.T) {
		f := setupFixture(t, false)
		f.seed(t, "old", 40*24*time.Hour)
		f.seed(t, "new", time.Hour)

		n, err := f.svc.Cleanup(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = f.svc.Get(context.Background(), "old")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("archives before delete", func(t *testing.T) {
		f := setupFixture(t, true)
		f.seed(t, "old", 40*24*time.Hour)
		f.archiver.On("Upload", "audit-20240531T120000Z.csv").Return("audit/audit-20240531T120000Z.csv", nil)

		n, err := f.svc.Cleanup(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Contains(t, f.archiver.body, "old,")
		f.archiver.AssertExpectations(t)
	})

	t.Run("archive failure keeps entries", func(t *testing.T) {
		f := setupFixture(t, true)
		f.seed(t, "old", 40*24*time.Hour)
		f.archiver.On("Upload", mock.Anything).Return("", errors.New("access denied"))

		_, err := f.svc.Cleanup(context.Background(), 30)
		assert.Error(t, err)

		_, err = f.svc.Get(context.Background(), "old")
		assert.NoError(t, err)
	})

	t.Run("nothing to archive skips upload", func(t *testing.T) {
		f := setupFixture(t, true)
		f.seed(t, "new", time.Hour)

		n, err := f.svc.Cleanup(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		f.archiver.AssertNotCalled(t, "Upload", mock.Anything)
	})
}
