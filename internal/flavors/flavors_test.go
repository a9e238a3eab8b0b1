package flavors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	d := New([][]string{{"--training.compile"}}, "")
	assert.Equal(t, DefaultDescription, d.Description)
	assert.Equal(t, DefaultNGPU, d.NGPU)
	assert.False(t, d.RequiresSeedCheckpoint)

	d = New(nil, "PP", WithSeedCheckpoint(), WithNGPU(2))
	assert.True(t, d.RequiresSeedCheckpoint)
	assert.Equal(t, 2, d.NGPU)
}

func TestGroups_EmptyRunsOnce(t *testing.T) {
	d := New(nil, "bare")
	groups := d.Groups()
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0])
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name  string
		group []string
		want  []string
	}{
		{"nil group", nil, nil},
		{"single flag", []string{"--training.compile"}, []string{"--training.compile"}},
		{
			"several flags in one string",
			[]string{"--training.tensor_parallel_degree 2 --model.norm_type=rmsnorm"},
			[]string{"--training.tensor_parallel_degree", "2", "--model.norm_type=rmsnorm"},
		},
		{
			"quoted value",
			[]string{"--job.dump_folder '/tmp/my out/default/'", "--training.steps 20"},
			[]string{"--job.dump_folder", "/tmp/my out/default/", "--training.steps", "20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Args(tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgs_Unterminated(t *testing.T) {
	_, err := Args([]string{"--job.dump_folder '/tmp"})
	require.Error(t, err)
}

func TestDumpFolder(t *testing.T) {
	tests := []struct {
		name   string
		group  []string
		want   string
		wantOK bool
	}{
		{"absent", []string{"--checkpoint.enable_checkpoint"}, "", false},
		{"space separated", []string{"--checkpoint.enable_checkpoint", "--job.dump_folder /out/pp/"}, "/out/pp/", true},
		{"equals form", []string{"--job.dump_folder=/out/pp/"}, "/out/pp/", true},
		{"last wins", []string{"--job.dump_folder /a/", "--job.dump_folder /b/"}, "/b/", true},
		{"flag without value", []string{"--job.dump_folder"}, "", false},
		{"inside a longer string", []string{"--training.steps 20 --job.dump_folder /c/"}, "/c/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DumpFolder(tt.group)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_LookupUnregistered(t *testing.T) {
	reg := Builtin("/out")
	assert.Empty(t, reg.Lookup("llama_7b.toml"))
	assert.Equal(t, []string{"debug_model.toml"}, reg.Names())
}

func TestBuiltin(t *testing.T) {
	reg := Builtin("/out")
	require.NoError(t, reg.Validate())

	defs := reg.Lookup("debug_model.toml")
	require.Len(t, defs, 9)

	var seeded []string
	for _, d := range defs {
		for _, g := range d.Groups() {
			_, ok := DumpFolder(g)
			assert.True(t, ok, "flavor %q has no dump folder", d.Description)
		}
		if d.RequiresSeedCheckpoint {
			seeded = append(seeded, d.Description)
		}
	}
	assert.Equal(t, []string{"PP 1D test", "PP+DP 2D test", "PP+TP 2D test"}, seeded)

	assert.Equal(t, "Default", defs[0].Description)
	folder, _ := DumpFolder(defs[0].Groups()[0])
	assert.Equal(t, "/out/default/", folder)

	ckpt := defs[3]
	require.Len(t, ckpt.Groups(), 2)
	assert.Contains(t, ckpt.Groups()[1], "--training.steps 20")

	assert.Equal(t, 2, defs[6].NGPU)
	assert.Equal(t, DefaultNGPU, defs[7].NGPU)
}

func TestBuiltin_QuotesOutputDir(t *testing.T) {
	defs := Builtin("/tmp/my out").Lookup("debug_model.toml")
	folder, ok := DumpFolder(defs[0].Groups()[0])
	require.True(t, ok)
	assert.Equal(t, "/tmp/my out/default/", folder)
}

const registryYAML = `
debug_model.toml:
  - description: Default
    override_args:
      - ["--job.dump_folder {{output_dir}}/default/"]
  - description: PP 1D test
    requires_seed_checkpoint: true
    ngpu: 2
    override_args:
      - ["--checkpoint.enable_checkpoint", "--job.dump_folder {{output_dir}}/pp/"]
      - ["--job.dump_folder {{output_dir}}/pp/", "--training.steps 20"]
llama_7b.toml:
  - override_args:
      - []
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(registryYAML), "/out")
	require.NoError(t, err)
	assert.Equal(t, []string{"debug_model.toml", "llama_7b.toml"}, reg.Names())

	defs := reg.Lookup("debug_model.toml")
	require.Len(t, defs, 2)
	assert.Equal(t, "Default", defs[0].Description)
	assert.Equal(t, DefaultNGPU, defs[0].NGPU)
	assert.Equal(t, []string{"--job.dump_folder /out/default/"}, defs[0].OverrideArgs[0])

	pp := defs[1]
	assert.True(t, pp.RequiresSeedCheckpoint)
	assert.Equal(t, 2, pp.NGPU)
	require.Len(t, pp.Groups(), 2)

	bare := reg.Lookup("llama_7b.toml")
	require.Len(t, bare, 1)
	assert.Equal(t, DefaultDescription, bare[0].Description)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "debug_model.toml: [unclosed"},
		{"negative ngpu", "a.toml:\n  - ngpu: -1\n"},
		{"bad quoting", "a.toml:\n  - override_args:\n      - [\"--x '\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "/out")
			require.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flavors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0644))

	reg, err := LoadFile(path, "/ci/out")
	require.NoError(t, err)
	folder, ok := DumpFolder(reg.Lookup("debug_model.toml")[1].Groups()[0])
	require.True(t, ok)
	assert.Equal(t, "/ci/out/pp/", folder)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), "/out")
	require.Error(t, err)
}
