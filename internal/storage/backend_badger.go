package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/dgraph-io/badger/v3"
)

// BadgerBackend хранит каждый регион под отдельным ключом BadgerDB.
// Дескрипторы регионов здесь только учитываются: БД открыта всё время жизни мира.
type BadgerBackend struct {
	db      *badger.DB
	dbPath  string
	open    map[vec.Vec2]struct{}
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerBackend открывает BadgerDB в <world>/badger
func NewBadgerBackend(worldDir string) (*BadgerBackend, error) {
	dbPath := filepath.Join(worldDir, "badger")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerBackend{
		db:      db,
		dbPath:  dbPath,
		open:    make(map[vec.Vec2]struct{}),
		isReady: true,
	}, nil
}

func (bb *BadgerBackend) Open(id vec.Vec2) error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()

	if !bb.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	bb.open[id] = struct{}{}
	return nil
}

func (bb *BadgerBackend) Read(id vec.Vec2) ([]byte, error) {
	bb.mutex.RLock()
	defer bb.mutex.RUnlock()

	if !bb.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := bb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(regionKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	// Регион ещё не сохранялся
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return data, nil
}

func (bb *BadgerBackend) Write(id vec.Vec2, data []byte) error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()

	if !bb.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	bb.open[id] = struct{}{}

	err := bb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(regionKey(id), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

func (bb *BadgerBackend) CloseRegion(id vec.Vec2) error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()

	delete(bb.open, id)
	return nil
}

// Close синхронизирует и закрывает БД
func (bb *BadgerBackend) Close() error {
	bb.mutex.Lock()
	defer bb.mutex.Unlock()

	if !bb.isReady {
		return nil
	}

	bb.isReady = false
	bb.open = make(map[vec.Vec2]struct{})
	return bb.db.Close()
}
