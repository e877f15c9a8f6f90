package storage

import "github.com/annel0/voxel-terrain/internal/vec"

// Backend хранит сериализованные регионы целиком.
// Отсутствующий регион читается как (nil, nil).
type Backend interface {
	// Open открывает дескриптор региона; повторный вызов ничего не делает
	Open(id vec.Vec2) error
	// Read возвращает содержимое региона
	Read(id vec.Vec2) ([]byte, error)
	// Write заменяет содержимое региона целиком и сбрасывает его на диск
	Write(id vec.Vec2, data []byte) error
	// CloseRegion закрывает дескриптор региона
	CloseRegion(id vec.Vec2) error
	// Close закрывает все дескрипторы и само хранилище
	Close() error
}

// OpenBackend создаёт хранилище указанного типа в директории мира
func OpenBackend(kind, worldDir string) (Backend, error) {
	switch kind {
	case "badger":
		return NewBadgerBackend(worldDir)
	default:
		return NewFileBackend(worldDir)
	}
}
