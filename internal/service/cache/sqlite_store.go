package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	value      BLOB NOT NULL
);`

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore 하나의 SQLite 테이블(cache_entries)에 항목을 보관하는 Store 구현체입니다.
// 모든 쓰기는 트랜잭션 안의 upsert로 수행되므로 중간에 실패해도 다른 항목은 영향을 받지 않습니다.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore path의 SQLite 파일을 열고(없으면 생성) 스키마를 준비합니다.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("캐시 디렉토리를 생성할 수 없습니다: '%s'", dir))
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "캐시 데이터베이스를 열 수 없습니다")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.System, "캐시 테이블 생성에 실패했습니다")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (Entry, bool, error) {
	var (
		createdAt int64
		value     []byte
	)

	err := s.db.QueryRowContext(ctx, `SELECT created_at, value FROM cache_entries WHERE name = ?`, name).Scan(&createdAt, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, apperrors.Wrap(err, apperrors.System, "캐시 항목 조회에 실패했습니다")
	}

	return Entry{Name: name, CreatedAt: time.UnixMilli(createdAt), Value: value}, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "캐시 트랜잭션 시작에 실패했습니다")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cache_entries (name, created_at, value) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at, value = excluded.value`,
		e.Name, e.CreatedAt.UnixMilli(), e.Value,
	); err != nil {
		return apperrors.Wrap(err, apperrors.System, "캐시 항목 저장에 실패했습니다")
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "캐시 트랜잭션 커밋에 실패했습니다")
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE name = ?`, name); err != nil {
		return apperrors.Wrap(err, apperrors.System, "캐시 항목 삭제에 실패했습니다")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
