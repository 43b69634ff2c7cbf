package shared

import "context"

// TransactionContext 事務上下文介面
//
// 設計決策：可選事務參與模式
//
// 行為約定：
// - tx != nil: 在調用者的事務中執行（事務傳播）
// - tx == nil: 使用 auto-commit 模式（僅限單一讀操作）
//
// Repository 方法約束：
// - 寫操作與加鎖讀取（...ForUpdate）必須傳入 non-nil tx
// - 一般讀操作可傳入 nil
//
// 範例：
//   txManager.InTransaction(ctx, func(tx TransactionContext) error {
//       account, _ := accounts.EnsureForUpdate(tx, userID)   // SELECT ... FOR UPDATE
//       entry := account.EarnForOrder(orderID, earned, note)
//       if err := ledger.Append(tx, entry); err != nil {
//           return err
//       }
//       return accounts.Update(tx, account)
//   })
//
// 這是一個標記介面：Infrastructure Layer 提供具體實作（GORM），
// Domain 與 Application Layer 不依賴任何資料庫套件。
type TransactionContext interface{}

// TransactionManager 事務管理器介面
//
// fn 返回錯誤或 panic 時整個事務回滾；成功返回時提交。
// 提交後才釋放 fn 內取得的行鎖。
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(tx TransactionContext) error) error
}
