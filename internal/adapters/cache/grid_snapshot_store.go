package cache

import (
	"biodiversity-map-service/internal/domain"
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultSnapshotTTL is how long a built level set stays reusable.
const DefaultSnapshotTTL = time.Hour

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{1,32}$`)

// FileGridSnapshotStore keeps zstd-compressed JSON snapshots of built LOD
// levels on disk, one file per observation-set fingerprint.
type FileGridSnapshotStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewFileGridSnapshotStore(dir string, ttl time.Duration) (*FileGridSnapshotStore, error) {
	if dir == "" {
		return nil, errors.New("grid snapshot store: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("grid snapshot store: create dir %q: %w", dir, err)
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &FileGridSnapshotStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s *FileGridSnapshotStore) path(fingerprint string) (string, error) {
	if !fingerprintPattern.MatchString(fingerprint) {
		return "", fmt.Errorf("grid snapshot store: invalid fingerprint %q", fingerprint)
	}
	return filepath.Join(s.dir, "levels-"+fingerprint+".json.zst"), nil
}

// Load returns the snapshot for fingerprint unless it is missing or older than the TTL.
func (s *FileGridSnapshotStore) Load(ctx context.Context, fingerprint string) (domain.Levels, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Levels{}, false, err
	}

	p, err := s.path(fingerprint)
	if err != nil {
		return domain.Levels{}, false, err
	}

	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Levels{}, false, nil
	}
	if err != nil {
		return domain.Levels{}, false, fmt.Errorf("stat snapshot: %w", err)
	}
	if s.now().Sub(info.ModTime()) >= s.ttl {
		_ = os.Remove(p)
		return domain.Levels{}, false, nil
	}

	f, err := os.Open(p)
	if err != nil {
		return domain.Levels{}, false, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return domain.Levels{}, false, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var levels domain.Levels
	if err := json.NewDecoder(dec).Decode(&levels); err != nil {
		return domain.Levels{}, false, fmt.Errorf("decode snapshot: %w", err)
	}

	return levels, true, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (s *FileGridSnapshotStore) Save(ctx context.Context, fingerprint string, levels domain.Levels) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.path(fingerprint)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "levels-*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(levels); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
