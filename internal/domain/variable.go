package domain

import (
	"encoding/json"
	"time"
)

// Variable は汎用の変数ストアに保存されるJSON値付きレコードを表す。
// スキーマ状態やマイグレーションバージョンの永続化基盤として使う。
type Variable struct {
	ID        string
	Name      string
	Value     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
