//go:build postgres

package loyalty_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	loyaltyapp "github.com/jackyeh168/order_settlement/src/internal/application/loyalty"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/config"
	"github.com/jackyeh168/order_settlement/src/internal/infrastructure/database"
	loyaltyrepo "github.com/jackyeh168/order_settlement/src/internal/infrastructure/persistence/loyalty"
)

// 執行：POSTGRES_TEST_DSN=postgres://... go test -tags postgres ./...

func setupPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	db, err := database.Open(config.DatabaseConfig{Driver: "postgres", DSN: dsn}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return newFixture(t, db, "1")
}

// Test 1: 多連線並發結算同一帳戶，行鎖序列化讀-改-寫
func TestSettleOnPaid_Postgres_ConcurrentOrders_RowLock(t *testing.T) {
	// Arrange
	f := setupPostgresFixture(t)
	user := newUser()
	t.Cleanup(func() {
		f.db.Where("account_id IN (?)",
			f.db.Model(&loyaltyrepo.LoyaltyAccountModel{}).Select("account_id").Where("user_id = ?", user),
		).Delete(&loyaltyrepo.LedgerEntryModel{})
		f.db.Where("user_id = ?", user).Delete(&loyaltyrepo.LoyaltyAccountModel{})
	})
	const orders = 16

	var wg sync.WaitGroup
	errs := make(chan error, orders*3)

	// Act: 每筆訂單投遞三次
	for i := 0; i < orders; i++ {
		orderID := uuid.NewString()
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.settle.Execute(context.Background(), loyaltyapp.SettleOnPaidCommand{
					OrderID: orderID, UserID: &user, SubtotalCents: 1000,
				})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		require.NoError(t, err)
	}

	bal, err := f.balance.Execute(loyaltyapp.GetBalanceQuery{UserID: user})
	require.NoError(t, err)
	assert.Equal(t, int64(orders*10_000_000), bal.BalanceMicro)
	assert.Equal(t, int64(orders*1000), bal.LifetimeSpend)
	assert.True(t, bal.Consistent)
}
