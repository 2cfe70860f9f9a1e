package GeoSat

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// TileCatalog 切片目录数据库
// 记录一次切片任务产出的所有切片窗口与范围，供断点续切和后续入库查询。
type TileCatalog struct {
	db *sql.DB
}

// CreateTileCatalog 创建（或打开）切片目录数据库
func CreateTileCatalog(dbPath string) (*TileCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog database: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS tiles (
			tile_index INTEGER PRIMARY KEY,
			path TEXT,
			offset_x INTEGER,
			offset_y INTEGER,
			width INTEGER,
			height INTEGER,
			min_x REAL,
			min_y REAL,
			max_x REAL,
			max_y REAL,
			skipped INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			name TEXT PRIMARY KEY,
			value TEXT
		)`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return &TileCatalog{db: db}, nil
}

// Close 关闭目录数据库
func (tc *TileCatalog) Close() error {
	if tc.db == nil {
		return nil
	}
	err := tc.db.Close()
	tc.db = nil
	return err
}

// AddTiles 批量写入切片记录
// 同一tile_index重复写入时覆盖旧记录，续切场景下目录保持最新状态。
func (tc *TileCatalog) AddTiles(records []TileRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := tc.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO tiles
		(tile_index, path, offset_x, offset_y, width, height, min_x, min_y, max_x, max_y, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		skipped := 0
		if rec.Skipped {
			skipped = 1
		}
		_, err = stmt.Exec(rec.Index, rec.Path, rec.OffsetX, rec.OffsetY, rec.Width, rec.Height,
			rec.Bounds[0], rec.Bounds[1], rec.Bounds[2], rec.Bounds[3], skipped)
		if err != nil {
			return fmt.Errorf("failed to insert tile %d: %w", rec.Index, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("tile catalog updated: %d records", len(records))
	return nil
}

// Tiles 读取全部切片记录，按序号升序
func (tc *TileCatalog) Tiles() ([]TileRecord, error) {
	rows, err := tc.db.Query(`SELECT tile_index, path, offset_x, offset_y, width, height,
		min_x, min_y, max_x, max_y, skipped FROM tiles ORDER BY tile_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiles: %w", err)
	}
	defer rows.Close()

	var records []TileRecord
	for rows.Next() {
		var rec TileRecord
		var skipped int
		if err := rows.Scan(&rec.Index, &rec.Path, &rec.OffsetX, &rec.OffsetY, &rec.Width, &rec.Height,
			&rec.Bounds[0], &rec.Bounds[1], &rec.Bounds[2], &rec.Bounds[3], &skipped); err != nil {
			return nil, fmt.Errorf("failed to scan tile record: %w", err)
		}
		rec.Skipped = skipped != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SetMetadata 写入目录元数据项
func (tc *TileCatalog) SetMetadata(name, value string) error {
	_, err := tc.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", name, value)
	if err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", name, err)
	}
	return nil
}

// Metadata 读取目录元数据项，不存在时返回空串
func (tc *TileCatalog) Metadata(name string) (string, error) {
	var value string
	err := tc.db.QueryRow("SELECT value FROM metadata WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %s: %w", name, err)
	}
	return value, nil
}
