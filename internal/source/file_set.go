package source

import (
	"crypto/sha256"
	"math"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ErrFileTooLarge is returned by Load for files whose offsets do not fit a Span.
var ErrFileTooLarge = errors.New("file too large")

// maxFileSize is the largest content a Span can address.
var maxFileSize int64 = math.MaxUint32

// FileSet manages a collection of source files and resolves spans to positions.
// It is safe for concurrent use; *File values never move once added.
type FileSet struct {
	mu      sync.RWMutex
	fs      afero.Fs
	files   []*File
	index   map[string]FileID // path -> latest id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet backed by the OS filesystem.
func NewFileSet() *FileSet {
	return NewFileSetWithFs(afero.NewOsFs(), "")
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	return NewFileSetWithFs(afero.NewOsFs(), baseDir)
}

// NewFileSetWithFs creates a FileSet that loads files through fs.
func NewFileSetWithFs(fs afero.Fs, baseDir string) *FileSet {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSet{
		fs:      fs,
		files:   make([]*File, 0),
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// Fs returns the filesystem the set loads from.
func (fileSet *FileSet) Fs() afero.Fs {
	return fileSet.fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.mu.Lock()
	fileSet.baseDir = dir
	fileSet.mu.Unlock()
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	fileSet.mu.RLock()
	dir := fileSet.baseDir
	fileSet.mu.RUnlock()
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return dir
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(errors.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, &File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file, normalizes CRLF/BOM, and calls Add. Files larger than
// a Span can address fail with ErrFileTooLarge.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	info, err := fileSet.fs.Stat(path)
	if err != nil {
		return 0, errors.Errorf("read %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return 0, errors.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
	}
	content, err := afero.ReadFile(fileSet.fs, path)
	if err != nil {
		return 0, errors.Errorf("read %s: %w", path, err)
	}
	// файл мог вырасти между Stat и чтением
	if int64(len(content)) > maxFileSize {
		return 0, errors.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, len(content))
	}
	content, flags := Normalize(content)
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (editor buffer, stdin, or test) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := Normalize(content)
	return fileSet.Add(name, content, flags|FileVirtual)
}

// Get returns the file metadata for the given ID, or nil when the id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// Len returns the number of files ever added.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// GetByPath возвращает *File по пути, если был загружен в этот FileSet.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return fileSet.files[id], true
	}
	return nil, false
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Ext returns the lower-case extension of the file path, dot included.
func (f *File) Ext() string {
	return lowerExt(f.Path)
}

// Denormalize returns content in its on-disk form: CRLF endings and BOM
// are restored when they were stripped on load.
func (f *File) Denormalize(content []byte) []byte {
	if f.Flags&FileNormalizedCRLF != 0 {
		content = restoreCRLF(content)
	}
	if f.Flags&FileHadBOM != 0 {
		content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
	}
	return content
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	var start, end, lenLineIdx, lenContent uint32
	var err error
	lenLineIdx, err = safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		return ""
	}
	lenContent, err = safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return ""
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start > lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// короткий или относительный путь оставляем как есть
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}
