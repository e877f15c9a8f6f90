package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/annel0/voxel-terrain/internal/vec"
)

// FileBackend хранит каждый регион в отдельном файле <world>/regions/r.<x>.<y>.region
type FileBackend struct {
	basePath string                // Директория файлов регионов
	handles  map[vec.Vec2]*os.File // nil - регион открыт, но файла ещё нет
	mu       sync.Mutex
}

// NewFileBackend создаёт файловое хранилище регионов
func NewFileBackend(worldDir string) (*FileBackend, error) {
	basePath := filepath.Join(worldDir, "regions")
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}

	return &FileBackend{
		basePath: basePath,
		handles:  make(map[vec.Vec2]*os.File),
	}, nil
}

// Path возвращает путь к файлу региона
func (fb *FileBackend) Path(id vec.Vec2) string {
	return filepath.Join(fb.basePath, regionFileName(id))
}

// Open открывает существующий файл региона; отсутствующий файл не создаётся до первой записи
func (fb *FileBackend) Open(id vec.Vec2) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.openLocked(id, false)
}

func (fb *FileBackend) openLocked(id vec.Vec2, create bool) error {
	if f, ok := fb.handles[id]; ok && (f != nil || !create) {
		return nil
	}

	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(fb.Path(id), flags, 0644)
	if os.IsNotExist(err) && !create {
		fb.handles[id] = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка открытия файла региона %s: %w", fb.Path(id), err)
	}
	fb.handles[id] = f
	return nil
}

// Read читает файл региона целиком
func (fb *FileBackend) Read(id vec.Vec2) ([]byte, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := fb.openLocked(id, false); err != nil {
		return nil, err
	}
	f := fb.handles[id]
	if f == nil {
		return nil, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла региона %s: %w", f.Name(), err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла региона %s: %w", f.Name(), err)
	}
	return data, nil
}

// Write обрезает файл и записывает содержимое заново
func (fb *FileBackend) Write(id vec.Vec2, data []byte) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := fb.openLocked(id, true); err != nil {
		return err
	}
	f := fb.handles[id]

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("ошибка записи файла региона %s: %w", f.Name(), err)
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("ошибка записи файла региона %s: %w", f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ошибка сброса файла региона %s: %w", f.Name(), err)
	}
	return nil
}

// CloseRegion закрывает файл региона
func (fb *FileBackend) CloseRegion(id vec.Vec2) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	f, ok := fb.handles[id]
	if !ok {
		return nil
	}
	delete(fb.handles, id)
	if f == nil {
		return nil
	}
	return f.Close()
}

// OpenHandles возвращает количество открытых дескрипторов
func (fb *FileBackend) OpenHandles() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.handles)
}

// Close закрывает все файлы
func (fb *FileBackend) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var lastErr error
	for id, f := range fb.handles {
		if f != nil {
			if err := f.Close(); err != nil {
				lastErr = fmt.Errorf("ошибка закрытия региона %v: %w", id, err)
			}
		}
	}
	fb.handles = make(map[vec.Vec2]*os.File)
	return lastErr
}
