package factory

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tactics-progress/internal/dependencies/mocks"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App on memory storage with a mocked clock and the
// testutil fixture catalogue
func NewTestApp(t testing.TB) *TestApp {
	store := memory.New()
	testutil.SeedCatalogue(t, store)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, account.Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
