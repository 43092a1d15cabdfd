package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"

	"quibble/internal/diag"
	"quibble/internal/fix"
	"quibble/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 value.
type Digest = [sha256.Size]byte

// DiskCache хранит результаты линтинга файлов на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

// DiskPayload is the cached lint result of one file.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash Digest

	// Span.File is meaningless across runs; it is rebound on load.
	Diagnostics []diag.Diagnostic
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(afero.NewOsFs(), filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir on fsys.
func NewDiskCache(fsys afero.Fs, dir string) (*DiskCache, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("create cache dir %s: %w", dir, err)
	}
	return &DiskCache{fs: fsys, dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey combines everything a file's lint result depends on.
func CacheKey(content, config Digest, version string) Digest {
	v := sha256.Sum256([]byte(version))
	return combineDigest(content, config, v)
}

// combineDigest: H(d1 || d2 ...).
func combineDigest(digests ...Digest) Digest {
	h := sha256.New()
	for _, d := range digests {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Файлы лежат в подкаталоге "files" с двухсимвольным шардом.
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := c.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := afero.TempFile(c.fs, filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, c.fs.Remove(tmp))
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		err = multierr.Append(err, f.Close())
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return c.fs.Rename(tmp, p)
}

// Get reads a payload. Missing entries and entries of another schema
// report ok=false without error.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (ok bool, err error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := c.fs.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, errors.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fs.RemoveAll(c.dir); err != nil {
		return errors.Errorf("drop cache %s: %w", c.dir, err)
	}
	return c.fs.MkdirAll(c.dir, 0o755)
}

// newPayload snapshots diagnostics for storage.
func newPayload(file *source.File, diags []diag.Diagnostic) *DiskPayload {
	return &DiskPayload{
		Path:        file.Path,
		ContentHash: file.Hash,
		Diagnostics: diags,
	}
}

// restore rebinds cached spans to id.
func (p *DiskPayload) restore(id source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(p.Diagnostics))
	for i, d := range p.Diagnostics {
		d.Primary.File = id
		notes := make([]diag.Note, len(d.Notes))
		for j, n := range d.Notes {
			n.Span.File = id
			notes[j] = n
		}
		d.Notes = notes
		fixes := make([]diag.Fix, len(d.Fixes))
		for j, f := range d.Fixes {
			edits := make([]diag.TextEdit, len(f.Edits))
			for k, e := range f.Edits {
				e.Span.File = id
				edits[k] = e
			}
			// ids derived from the span carry the old file id
			if len(edits) > 0 && f.ID == fix.StableID(d.Code, f.Edits[0].Span) {
				f.ID = fix.StableID(d.Code, edits[0].Span)
			}
			f.Edits = edits
			fixes[j] = f
		}
		d.Fixes = fixes
		out[i] = d
	}
	return out
}
