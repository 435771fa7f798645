package transaction

import "context"

// Tx はリポジトリ横断の操作を1トランザクションにまとめるための抽象
// 在庫の確保・解放と申込の状態遷移は必ず同一トランザクション内で行う
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はトランザクションの開始を担う
// 実装はインフラ層に置き、ドメイン層はこのインターフェースだけを見る
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
