package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"browser-mcp/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

const clearConcurrency = 8

var ErrInvalidName = errors.New("invalid file name")

// DiskStore is a flat directory of files. It backs both the embedded
// screenshot server and the standalone upload server.
type DiskStore struct {
	dir string

	once    sync.Once
	initErr error
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (d *DiskStore) Dir() string { return d.dir }

// ensure creates the directory with its parents once. A failure is
// remembered and returned by every later call.
func (d *DiskStore) ensure() error {
	d.once.Do(func() {
		if err := os.MkdirAll(d.dir, 0o755); err != nil {
			d.initErr = fmt.Errorf("create directory %s: %w", d.dir, err)
		}
	})
	return d.initErr
}

// GenerateName returns "<unix-ms>-<9 digits><ext>".
func GenerateName(ext string) string {
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (d *DiskStore) path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.dir, name), nil
}

func (d *DiskStore) Exists(name string) bool {
	p, err := d.path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func (d *DiskStore) Save(name string, r io.Reader) error {
	if err := d.ensure(); err != nil {
		return err
	}
	p, err := d.path(name)
	if err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(p)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// lookup resolves a name that should already exist. A name that could
// never have been stored is reported as not found.
func (d *DiskStore) lookup(name string) (string, error) {
	p, err := d.path(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrNotFound, err)
	}
	return p, nil
}

// Open returns entity.ErrNotFound for missing files and invalid names.
func (d *DiskStore) Open(name string) (*os.File, error) {
	p, err := d.lookup(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, entity.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, entity.ErrNotFound)
	}
	return f, nil
}

// Remove returns entity.ErrNotFound for missing files and invalid names.
func (d *DiskStore) Remove(name string) error {
	p, err := d.lookup(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, entity.ErrNotFound)
	}
	return err
}

// Clear removes every regular file concurrently. All removals are
// attempted; the first failure is returned together with the failure count.
func (d *DiskStore) Clear(ctx context.Context) error {
	if err := d.ensure(); err != nil {
		return err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	var (
		mu       sync.Mutex
		firstErr error
		failed   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(clearConcurrency)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if firstErr != nil {
		return fmt.Errorf("%d file(s) could not be removed: %w", failed, firstErr)
	}
	return nil
}
