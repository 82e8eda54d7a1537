package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/stuproj/projectshelf/internal/infra/blob"
	"github.com/stuproj/projectshelf/internal/pkg/utils"
	"go.uber.org/zap"
)

// maxNameAttempts bounds the suffixed retries after a name collision.
const maxNameAttempts = 5

// FileIntake stores uploaded files under sanitized, timestamp-prefixed names.
type FileIntake interface {
	// Save stores fh and returns its stored name. A nil header or an empty
	// client filename stores nothing and returns "".
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	// Discard removes stored files, logging failures.
	Discard(ctx context.Context, names ...string)
}

type IntakeOptions struct {
	AllowedExtensions []string
	EnforceExtensions bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type fileIntake struct {
	store   blob.Store
	allowed map[string]struct{}
	enforce bool
	now     func() time.Time
	log     *zap.Logger
}

func NewFileIntake(store blob.Store, opts IntakeOptions, log *zap.Logger) FileIntake {
	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &fileIntake{
		store:   store,
		allowed: allowed,
		enforce: opts.EnforceExtensions,
		now:     now,
		log:     log,
	}
}

func (s *fileIntake) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}

	safe := utils.SecureFilename(fh.Filename)
	if s.enforce {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(safe), "."))
		if _, ok := s.allowed[ext]; !ok {
			return "", fmt.Errorf("%w: %q", ErrExtensionNotAllowed, fh.Filename)
		}
	}

	base := utils.StoredName(s.now(), safe)
	name := base
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		err := s.write(ctx, name, fh)
		if err == nil {
			s.log.Debug("stored upload", zap.String("client_name", fh.Filename), zap.String("stored_name", name))
			return name, nil
		}
		if !errors.Is(err, blob.ErrExists) {
			return "", fmt.Errorf("store %s: %w", fh.Filename, err)
		}

		suffix, err := utils.RandomKey(6)
		if err != nil {
			return "", err
		}
		name = utils.WithSuffix(base, suffix)
	}
	return "", fmt.Errorf("store %s: no free name after %d attempts", fh.Filename, maxNameAttempts)
}

func (s *fileIntake) write(ctx context.Context, name string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return s.store.Create(ctx, name, f, fh.Size, fh.Header.Get("Content-Type"))
}

func (s *fileIntake) Discard(ctx context.Context, names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.store.Remove(ctx, name); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.log.Warn("failed to discard upload", zap.String("stored_name", name), zap.Error(err))
		}
	}
}
