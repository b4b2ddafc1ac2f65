// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store is the durable food table: an embedded SQLite file accessed
// through gorm, filled once in bulk and then only read.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const insertBatchSize = 200

var (
	ErrStoreExists  = errors.New("store already exists")
	ErrStoreMissing = errors.New("store does not exist")
)

// Store is a handle on one table artifact.
type Store struct {
	DB   *gorm.DB
	path string
}

// Create makes a new, empty store at path. It refuses to touch an existing
// file, so a populated store can never be bulk-loaded twice.
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrStoreExists)
	}

	s, err := open(path)
	if err != nil {
		return nil, err
	}

	if err := s.DB.AutoMigrate(&Food{}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return s, nil
}

// Open opens an existing store. It never creates one.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrStoreMissing)
		}
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	log.Debugf("opened store %s", path)
	return &Store{DB: db, path: path}, nil
}

// Path is the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get store handle: %w", err)
	}
	return sqlDB.Close()
}

// InsertAll loads every food from foods in one transaction. Any error from
// the sequence or the database rolls back the whole load, so the table is
// either fully populated or untouched. It must only be called on a store
// fresh from Create.
func (s *Store) InsertAll(ctx context.Context, foods iter.Seq2[Food, error]) (int, error) {
	var total int

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch := make([]Food, 0, insertBatchSize)

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := tx.Create(&batch).Error; err != nil {
				return fmt.Errorf("failed to insert foods: %w", err)
			}
			total += len(batch)
			batch = batch[:0]
			return nil
		}

		for food, err := range foods {
			if err != nil {
				return err
			}
			food.ID = 0
			food.Folded = FoldName(food.Name)
			batch = append(batch, food)
			if len(batch) == insertBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		return flush()
	})
	if err != nil {
		return 0, err
	}

	log.Debugf("inserted %d foods into %s", total, s.path)
	return total, nil
}

// FindExact returns the first food, in registry order, whose name is name.
func (s *Store) FindExact(ctx context.Context, name string) (Food, bool, error) {
	var food Food
	err := s.DB.WithContext(ctx).
		Where("name = ?", NormalizeName(name)).
		Order("id").
		Take(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Food{}, false, nil
	}
	if err != nil {
		return Food{}, false, fmt.Errorf("failed to find %q: %w", name, err)
	}
	return food, true, nil
}

// FindLike returns, in registry order, the names containing fragment,
// ignoring case.
func (s *Store) FindLike(ctx context.Context, fragment string) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).
		Model(&Food{}).
		Where("folded LIKE ? ESCAPE '\\'", likePattern(fragment)).
		Order("id").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", fragment, err)
	}
	return names, nil
}

// Search returns up to limit foods whose name contains fragment, ignoring
// case, in registry order. An empty fragment matches everything; limit <= 0 means no limit.
func (s *Store) Search(ctx context.Context, fragment string, limit int) ([]Food, error) {
	q := s.DB.WithContext(ctx).Order("id")
	if fragment != "" {
		q = q.Where("folded LIKE ? ESCAPE '\\'", likePattern(fragment))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var foods []Food
	if err := q.Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", fragment, err)
	}
	return foods, nil
}

// Count is the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&Food{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count foods: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(fragment string) string {
	return "%" + likeEscaper.Replace(FoldName(fragment)) + "%"
}
