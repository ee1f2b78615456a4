package filestore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	s1, err := New(path)
	require.NoError(t, err)

	_, err = s1.Get(ctx, "kj-connect-user")
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, s1.Set(ctx, "kj-connect-user", []byte(`{"id":"3"}`)))
	require.NoError(t, s1.Set(ctx, "other", []byte("x")))

	s2, err := New(path)
	require.NoError(t, err)
	got, err := s2.Get(ctx, "kj-connect-user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"3"}`, string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s2.Delete(ctx, "kj-connect-user"))
	require.NoError(t, s2.Delete(ctx, "kj-connect-user"))
	_, err = s1.Get(ctx, "kj-connect-user")
	require.ErrorIs(t, err, ports.ErrNotFound)

	other, err := s1.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "x", string(other))
}

func TestStore_CorruptFileReadsAsCorruptSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := New(path)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "kj-connect-user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrNotFound)
	assert.True(t, apperrors.IsCorruptSession(err))
}

func TestStore_WritesReplaceCorruptFile(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		write func(s *Store) error
		want  map[string]string
	}{
		{
			name:  "set",
			write: func(s *Store) error { return s.Set(ctx, "kj-connect-user", []byte(`{"id":"2"}`)) },
			want:  map[string]string{"kj-connect-user": `{"id":"2"}`},
		},
		{
			name:  "delete",
			write: func(s *Store) error { return s.Delete(ctx, "kj-connect-user") },
			want:  map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
			s, err := New(path, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			require.NoError(t, err)

			require.NoError(t, tt.write(s))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			var got map[string]string
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "k")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
