// Package naming generates storage ids for uploaded files.
package naming

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/filedrop/service/internal/storage"
)

// RandomBytes is the width of the random segment. 8 bytes gives 64 bits of
// entropy, above the 48-bit floor the store relies on for uniqueness.
const RandomBytes = 8

const maxExtensionLength = 16

// extensionRegex matches what may follow the final dot of an original name.
var extensionRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Generator produces ids of the form <base36 millis>-<hex random><.ext>.
type Generator struct {
	random io.Reader
	now    func() time.Time

	mu   sync.Mutex
	last int64
}

// NewGenerator returns a Generator backed by crypto/rand and the wall clock.
func NewGenerator() *Generator {
	return &Generator{random: rand.Reader, now: time.Now}
}

// NewGeneratorWith returns a Generator using the given entropy source and clock.
func NewGeneratorWith(random io.Reader, now func() time.Time) *Generator {
	return &Generator{random: random, now: now}
}

// Generate returns a fresh id for a file originally named originalName. The
// caller must still confirm the id is unused before committing.
func (g *Generator) Generate(originalName string) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}

	buf := make([]byte, RandomBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	id := strconv.FormatInt(g.stamp(), 36) + "-" + hex.EncodeToString(buf) + ext
	if err := storage.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// stamp returns the current unix millis, never lower than a previous stamp.
func (g *Generator) stamp() int64 {
	ms := g.now().UnixMilli()
	g.mu.Lock()
	defer g.mu.Unlock()
	if ms < g.last {
		ms = g.last
	}
	g.last = ms
	return ms
}

// Extension returns the suffix of originalName from its last dot, including
// the dot, with case preserved. It returns "" when there is none. Names that
// carry path elements, or whose suffix is not a plain extension, are rejected
// with storage.ErrInvalidName rather than silently cleaned.
func Extension(originalName string) (string, error) {
	if strings.TrimSpace(originalName) == "" {
		return "", storage.ErrInvalidName
	}
	if strings.ContainsAny(originalName, `/\`) || strings.ContainsRune(originalName, 0) {
		return "", storage.ErrInvalidName
	}
	if originalName == "." || originalName == ".." {
		return "", storage.ErrInvalidName
	}
	if len(originalName) >= 2 && originalName[1] == ':' {
		return "", storage.ErrInvalidName
	}

	i := strings.LastIndexByte(originalName, '.')
	// No dot, or a dotfile such as ".bashrc" with nothing before it.
	if i <= 0 {
		return "", nil
	}
	ext := originalName[i+1:]
	if ext == "" {
		return "", nil
	}
	if len(ext) > maxExtensionLength || !extensionRegex.MatchString(ext) {
		return "", storage.ErrInvalidName
	}
	return "." + ext, nil
}
