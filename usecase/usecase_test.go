package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wadesk/wadesk/domains/agent"
	"github.com/wadesk/wadesk/domains/provider"
	"github.com/wadesk/wadesk/infrastructure/storage"
)

// testEnv bundles the real repositories over a throwaway SQLite database, so
// usecase tests exercise the same SQL the service runs in production.
type testEnv struct {
	db        *gorm.DB
	agents    *storage.AgentGormRepository
	customers *storage.CustomerGormRepository
	messages  *storage.MessageGormRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return &testEnv{
		db:        db,
		agents:    storage.NewAgentRepository(db),
		customers: storage.NewCustomerRepository(db),
		messages:  storage.NewMessageRepository(db),
	}
}

func (e *testEnv) seedAgent(t *testing.T, name string) agent.Agent {
	t.Helper()
	ag, err := e.agents.Create(context.Background(), agent.Agent{Name: name, Role: agent.RoleAgent})
	if err != nil {
		t.Fatalf("seed agent %q: %v", name, err)
	}
	return ag
}

// fakeAdapter is a scripted provider for send-path tests.
type sentCall struct {
	ToPhone string
	Content string
}

type fakeAdapter struct {
	kind     provider.Kind
	result   provider.SendResult
	sendErr  error
	sent     []sentCall
	events   []provider.Event
	parseErr error
}

func (f *fakeAdapter) Kind() provider.Kind { return f.kind }
func (f *fakeAdapter) Configured() bool    { return true }

func (f *fakeAdapter) Send(_ context.Context, toPhone, content string) (provider.SendResult, error) {
	f.sent = append(f.sent, sentCall{ToPhone: toPhone, Content: content})
	return f.result, f.sendErr
}

func (f *fakeAdapter) SendTemplate(ctx context.Context, toPhone string, _ map[string]string) (provider.SendResult, error) {
	return f.Send(ctx, toPhone, "")
}

func (f *fakeAdapter) ParseWebhook(_ []byte) ([]provider.Event, error) {
	return f.events, f.parseErr
}
