// Package storage 提供评估结果的本地持久化
//
// 把历次运行存入单个 SQLite 文件，回归对比可以按运行 ID 或"最近一次
// 通过的运行"取基线，而不必手工管理 JSON 文件。
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

// ErrRunNotFound 指定的运行不存在
var ErrRunNotFound = errors.New("evaluation run not found")

// RunInfo 运行的概要信息
type RunInfo struct {
	// RunID 运行标识
	RunID string `json:"run_id"`

	// StartedAt 开始时间
	StartedAt time.Time `json:"started_at"`

	// Passed 是否通过
	Passed bool `json:"passed"`

	// PassRate 通过率
	PassRate float64 `json:"pass_rate"`

	// TotalTests 总用例数
	TotalTests int `json:"total_tests"`
}

// Store SQLite 运行存储
type Store struct {
	db *sql.DB
}

// Open 打开（必要时初始化）运行存储
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TIMESTAMP NOT NULL,
		passed      INTEGER NOT NULL,
		pass_rate   REAL NOT NULL,
		total_tests INTEGER NOT NULL,
		payload     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭存储
func (s *Store) Close() error {
	return s.db.Close()
}

// Save 保存一次运行的完整结果
func (s *Store) Save(ctx context.Context, result *evaluation.EvaluationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, started_at, passed, pass_rate, total_tests, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.StartedAt, result.Passed, result.PassRate,
		result.TotalTests, string(payload))
	if err != nil {
		return fmt.Errorf("保存运行失败: %w", err)
	}
	return nil
}

// Load 按运行 ID 加载完整结果
func (s *Store) Load(ctx context.Context, runID string) (*evaluation.EvaluationResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("读取运行失败: %w", err)
	}

	var result evaluation.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("解析运行失败: %w", err)
	}
	return &result, nil
}

// Latest 返回最近一次运行的完整结果
//
// 参数:
//   - passedOnly: 为 true 时只在通过的运行中取最近一次
func (s *Store) Latest(ctx context.Context, passedOnly bool) (*evaluation.EvaluationResult, error) {
	query := `SELECT payload FROM runs ORDER BY started_at DESC LIMIT 1`
	if passedOnly {
		query = `SELECT payload FROM runs WHERE passed = 1 ORDER BY started_at DESC LIMIT 1`
	}

	var payload string
	err := s.db.QueryRowContext(ctx, query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取运行失败: %w", err)
	}

	var result evaluation.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("解析运行失败: %w", err)
	}
	return &result, nil
}

// List 返回所有运行的概要信息，按开始时间倒序
func (s *Store) List(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, passed, pass_rate, total_tests
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("列出运行失败: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.RunID, &info.StartedAt, &info.Passed,
			&info.PassRate, &info.TotalTests); err != nil {
			return nil, fmt.Errorf("读取运行信息失败: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
