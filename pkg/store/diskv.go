package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/week"
)

const (
	weeksBucket  = "weeks"
	usersBucket  = "users"
	sequenceFile = ".sequence"
)

// OpenDiskv creates a Persistence backed by diskv rooted at basePath. Each
// week is a JSON file at weeks/<user>/<number>.
func OpenDiskv(basePath string, opts ...Option) (Persistence, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath, log: buildOptions(opts).log}, nil
}

type persistence struct {
	// mu serializes read-modify-write cycles so concurrent upserts of the
	// same week never produce two ids.
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	log      *zap.Logger
}

func (p *persistence) readJSON(key string, target any) (bool, error) {
	// Other processes write the same tree, so bypass the in-memory cache.
	rc, err := p.d.ReadStream(key, true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}

func (p *persistence) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) GetWeek(_ context.Context, userID string, number int) (*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	r := &week.Record{}
	found, err := p.readJSON(weekKey(userID, number), r)
	if err != nil || !found {
		return nil, err
	}
	return r, nil
}

func (p *persistence) SaveWeek(ctx context.Context, r *week.Record) (*week.Record, error) {
	if r == nil || r.UserID == "" {
		return nil, errors.New("store: user id required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.GetWeek(ctx, r.UserID, r.WeekNumber)
	if err != nil {
		return nil, err
	}
	next := r.Clone()
	if existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	} else {
		id, err := p.nextID()
		if err != nil {
			return nil, fmt.Errorf("store: allocate id: %w", err)
		}
		next.ID = id
	}
	if err := p.writeJSON(weekKey(next.UserID, next.WeekNumber), next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (p *persistence) ListWeeks(ctx context.Context, userID string) ([]*week.Record, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	prefix := strings.Join([]string{weeksBucket, encodeUser(userID), ""}, "-")
	all := make([]*week.Record, 0)
	for key := range p.d.KeysPrefix(prefix, ctx.Done()) {
		r := &week.Record{}
		found, err := p.readJSON(key, r)
		if err != nil {
			p.log.Warn("skipping unreadable week", zap.String("key", key), zap.Error(err))
			continue
		}
		if found {
			all = append(all, r)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortRecords(all)
	return all, nil
}

func (p *persistence) GetUser(_ context.Context, userID string) (*week.User, error) {
	if userID == "" {
		return nil, errors.New("store: user id required")
	}
	u := &week.User{}
	found, err := p.readJSON(userKey(userID), u)
	if err != nil || !found {
		return nil, err
	}
	return u, nil
}

func (p *persistence) SaveUser(_ context.Context, u *week.User) (*week.User, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("store: user id required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	next := u.Clone()
	existing := &week.User{}
	found, err := p.readJSON(userKey(u.ID), existing)
	if err != nil {
		return nil, err
	}
	if found && !existing.CreatedAt.IsZero() {
		next.CreatedAt = existing.CreatedAt
	}
	if err := p.writeJSON(userKey(next.ID), next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (p *persistence) Close() error { return nil }

func (p *persistence) sequencePath() string {
	return filepath.Join(p.basePath, sequenceFile)
}

// nextID bumps the id counter kept beside the buckets. Callers hold p.mu.
func (p *persistence) nextID() (int64, error) {
	path := p.sequencePath()
	var current int64
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return 0, err
	case len(strings.TrimSpace(string(data))) > 0:
		current, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence file: %w", err)
		}
	}
	current++
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatInt(current, 10)), 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	return current, nil
}

func sortRecords(records []*week.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].WeekNumber < records[j].WeekNumber
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// weekKey makes `weeks-<user>-<number>`. Numbers are zero padded so file
// listings sort naturally.
func weekKey(userID string, number int) string {
	return fmt.Sprintf("%s-%s-%04d", weeksBucket, encodeUser(userID), number)
}

// userKey makes `users-<user>`.
func userKey(userID string) string {
	return fmt.Sprintf("%s-%s", usersBucket, encodeUser(userID))
}

// encodeUser hex encodes ids so they contain neither path separators nor
// the key delimiter.
func encodeUser(userID string) string {
	return hex.EncodeToString([]byte(userID))
}

func decodeUser(encoded string) string {
	b, err := hex.DecodeString(encoded)
	if err != nil {
		return ""
	}
	return string(b)
}
