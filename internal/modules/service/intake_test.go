package service

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stuproj/projectshelf/internal/infra/blob"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

func newTestIntake(t *testing.T, opts IntakeOptions) (FileIntake, *blob.LocalStore) {
	t.Helper()
	store, err := blob.NewLocal(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewFileIntake(store, opts, zap.NewNop()), store
}

func readStored(t *testing.T, store blob.Store, name string) string {
	t.Helper()
	obj, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer obj.Body.Close()
	b, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	return string(b)
}

func TestFileIntake_AbsentUpload(t *testing.T) {
	intake, _ := newTestIntake(t, IntakeOptions{})

	name, err := intake.Save(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, name)
}

func TestFileIntake_EmptyFilename(t *testing.T) {
	intake, _ := newTestIntake(t, IntakeOptions{})

	fh := fileHeader(t, "x.pdf", nil)
	fh.Filename = ""

	name, err := intake.Save(context.Background(), fh)
	assert.NoError(t, err)
	assert.Empty(t, name)
}

func TestFileIntake_SanitizesTraversal(t *testing.T) {
	intake, store := newTestIntake(t, IntakeOptions{})

	fh := fileHeader(t, "evil.pdf", []byte("payload"))
	fh.Filename = "../../evil.pdf"

	name, err := intake.Save(context.Background(), fh)
	require.NoError(t, err)

	assert.Equal(t, "20240309140507_evil.pdf", name)
	assert.Regexp(t, regexp.MustCompile(`^\d{14}_`), name)
	assert.False(t, strings.ContainsAny(name, `/\`))
	assert.Equal(t, "payload", readStored(t, store, name))
}

func TestFileIntake_SameSecondCollision(t *testing.T) {
	intake, store := newTestIntake(t, IntakeOptions{})
	ctx := context.Background()

	first, err := intake.Save(ctx, fileHeader(t, "report.pdf", []byte("first")))
	require.NoError(t, err)
	second, err := intake.Save(ctx, fileHeader(t, "report.pdf", []byte("second")))
	require.NoError(t, err)

	assert.Equal(t, "20240309140507_report.pdf", first)
	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^20240309140507_report_[A-Za-z0-9]{6}\.pdf$`, second)

	// neither upload overwrote the other
	assert.Equal(t, "first", readStored(t, store, first))
	assert.Equal(t, "second", readStored(t, store, second))
}

func TestFileIntake_ExtensionAllowlist(t *testing.T) {
	tests := []struct {
		name        string
		enforce     bool
		filename    string
		expectError bool
	}{
		{"enforced allows pdf", true, "report.pdf", false},
		{"enforced allows upper case", true, "CODE.ZIP", false},
		{"enforced rejects exe", true, "setup.exe", true},
		{"enforced rejects missing extension", true, "README", true},
		{"inert allows exe", false, "setup.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intake, _ := newTestIntake(t, IntakeOptions{
				AllowedExtensions: []string{"pdf", ".zip", "rar"},
				EnforceExtensions: tt.enforce,
			})

			name, err := intake.Save(context.Background(), fileHeader(t, tt.filename, []byte("x")))
			if tt.expectError {
				assert.ErrorIs(t, err, ErrExtensionNotAllowed)
				assert.Empty(t, name)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, name)
			}
		})
	}
}

func TestFileIntake_Discard(t *testing.T) {
	intake, store := newTestIntake(t, IntakeOptions{})
	ctx := context.Background()

	name, err := intake.Save(ctx, fileHeader(t, "manual.pdf", []byte("m")))
	require.NoError(t, err)

	intake.Discard(ctx, name, "", "20000101000000_missing.pdf")

	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}
