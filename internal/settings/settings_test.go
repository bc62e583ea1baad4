// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		want    Settings
		wantErr bool
	}{
		{
			name: "missing file yields zero settings",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "none", FileName)
			},
			want: Settings{},
		},
		{
			name: "reads last output dir",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), FileName)
				require.NoError(t, os.WriteFile(p, []byte("last_output_dir: /tmp/pdfs\n"), 0o644))
				return p
			},
			want: Settings{LastOutputDir: "/tmp/pdfs"},
		},
		{
			name: "ignores unknown keys",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), FileName)
				require.NoError(t, os.WriteFile(p, []byte("dark_mode: true\nlast_output_dir: out\n"), 0o644))
				return p
			},
			want: Settings{LastOutputDir: "out"},
		},
		{
			name: "malformed yaml",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), FileName)
				require.NoError(t, os.WriteFile(p, []byte("last_output_dir: [\n"), 0o644))
				return p
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", FileName)
	require.NoError(t, Save(p, Settings{LastOutputDir: "/data/knows"}))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/data/knows", got.LastOutputDir)
}
