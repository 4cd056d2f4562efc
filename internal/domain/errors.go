package domain

import "errors"

var (
	// ErrComponentNotFound は指定されたIDのコンポーネントが登録されていない場合のエラー。
	ErrComponentNotFound = errors.New("component not found")

	// ErrInvalidComponentID はコンポーネントIDの形式が不正な場合のエラー。
	ErrInvalidComponentID = errors.New("invalid component ID")

	// ErrSchemaOperationFailed はテーブル単位のDDL操作が失敗した場合の集約エラー。
	ErrSchemaOperationFailed = errors.New("schema operation failed")

	// ErrNoTableDefinition はテーブル定義にSQLもカラムリストもない場合のエラー。
	ErrNoTableDefinition = errors.New("no table definition")

	// ErrUnknownColumnType は未知の抽象カラム型が指定された場合のエラー。
	ErrUnknownColumnType = errors.New("unknown column type")
)
