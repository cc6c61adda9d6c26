package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/app"
	"github.com/vk/sigchain/internal/builder"
	"github.com/vk/sigchain/internal/chain"
	"github.com/vk/sigchain/internal/hcl"
	"github.com/vk/sigchain/internal/sequence"
)

func writeChain(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newApp(t *testing.T, path string) (*app.App, error) {
	t.Helper()
	cfg, err := app.NewConfig(app.Config{ChainPaths: []string{path}, Passes: -1})
	require.NoError(t, err)
	a, _ := app.SetupAppTest(t, cfg, hcl.NewLoader())
	return a, a.Run(context.Background())
}

// Test for: malformed HCL is rejected at startup.
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	path := writeChain(t, `module "lcg_source" "src" { arguments = {`)

	assert.Panics(t, func() { _, _ = newApp(t, path) })
}

// Test for: a chain without a chain block fails validation at startup.
func TestErrorHandling_MissingChainBlock_IsRejected(t *testing.T) {
	path := writeChain(t, `module "lcg_source" "src" { arguments = { size = 4 } }`)

	assert.Panics(t, func() { _, _ = newApp(t, path) })
}

func TestErrorHandling_BuildErrors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr error
	}{
		{
			name: "unknown unit type",
			hcl: `
				module "viterbi" "dec" {}
				chain { first = "dec.decode" }
			`,
			wantErr: builder.ErrUnknownUnit,
		},
		{
			name: "required argument missing",
			hcl: `
				module "lcg_source" "src" {}
				chain { first = "src.generate" }
			`,
			wantErr: hcl.ErrMissingArgument,
		},
		{
			name: "unknown argument",
			hcl: `
				module "lcg_source" "src" {
					arguments = { size = 4, colour = "red" }
				}
				chain { first = "src.generate" }
			`,
			wantErr: hcl.ErrUnknownArgument,
		},
		{
			name: "unknown socket",
			hcl: `
				module "lcg_source" "src" {
					arguments = { size = 4 }
				}
				module "bpsk_modulator" "mod" {
					arguments = { size = 4 }
				}
				bind {
					from = "src.generate.bits"
					to   = "mod.modulate.in"
				}
				chain { first = "src.generate" }
			`,
			wantErr: builder.ErrUnknownSocket,
		},
		{
			name: "last never reached",
			hcl: `
				module "lcg_source" "src" {
					arguments = { size = 4 }
				}
				module "bpsk_modulator" "mod" {
					arguments = { size = 4 }
				}
				chain {
					first = "src.generate"
					last  = "mod.modulate"
				}
			`,
			wantErr: sequence.ErrUnterminated,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newApp(t, writeChain(t, tc.hcl))

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("construction errors carry their call site", func(t *testing.T) {
		_, err := newApp(t, writeChain(t, `
			module "lcg_source" "src" {
				arguments = { size = 4 }
			}
			module "bpsk_modulator" "mod" {
				arguments = { size = 4 }
			}
			chain {
				first = "src.generate"
				last  = "mod.modulate"
			}
		`))

		var ce *chain.ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "partition", ce.Op)
		assert.NotEmpty(t, ce.File)
	})
}
