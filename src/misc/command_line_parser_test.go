package misc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, args ...string) *CommandLineParser {
	t.Helper()

	parser := new(CommandLineParser)
	parser.Init()
	AddSimulatorOptions(parser)
	require.NoError(t, parser.Parse(append([]string{"systolicsim"}, args...)))
	return parser
}

func TestParserDefaults(t *testing.T) {
	parser := newTestParser(t)

	require.Equal(t, int64(16), parser.IntParameter("ic0"))
	require.Equal(t, "serial", parser.StringParameter("engine_mode"))
	require.False(t, parser.IsArgSet("ic0"))
	require.False(t, parser.IsArgSet("no_such_option"))
	require.Empty(t, parser.StringifyArgs())
}

func TestParserOverrides(t *testing.T) {
	parser := newTestParser(t, "--ic0", "4", "--engine_mode=akita", "--weight_buffering", "single")

	require.Equal(t, int64(4), parser.IntParameter("ic0"))
	require.Equal(t, "akita", parser.StringParameter("engine_mode"))
	require.Equal(t, "single", parser.StringParameter("weight_buffering"))
	require.True(t, parser.IsArgSet("ic0"))
	require.Equal(t, "--ic0 4 --engine_mode=akita --weight_buffering single", parser.StringifyArgs())
	require.Contains(t, parser.StringifyOptions(), "ic0: 4\n")
	require.Contains(t, parser.StringifyHelpMsgs(), "--accumulation_buffer_size")
}

func TestParserRejectsBadInput(t *testing.T) {
	parser := new(CommandLineParser)
	parser.Init()
	AddSimulatorOptions(parser)

	require.Error(t, parser.Parse([]string{"systolicsim", "--ic0", "many"}))
	require.Error(t, parser.Parse([]string{"systolicsim", "--unknown", "1"}))

	require.Panics(t, func() { parser.AddOption(INT, "ic0", "1", "duplicate") })
	require.Panics(t, func() { parser.AddOption(INT, "broken", "x", "non-integer default") })
	require.Panics(t, func() { parser.IntParameter("engine_mode") })
	require.Panics(t, func() { parser.StringParameter("missing") })
}

func TestValidatorAcceptsDefaults(t *testing.T) {
	parser := newTestParser(t, "--bin_dirpath", t.TempDir())

	validator := new(CommandLineValidator)
	validator.Init(parser)
	require.NotPanics(t, validator.Validate)
}

func TestValidatorRejectsInvalidOptions(t *testing.T) {
	cases := map[string][]string{
		"threads":          {"--num_simulation_threads", "0"},
		"engine":           {"--engine_mode", "gpu"},
		"grid":             {"--oc0", "0"},
		"precision":        {"--output_precision", "64"},
		"product width":    {"--input_precision", "31", "--weight_precision", "32"},
		"output width":     {"--output_precision", "63"},
		"overflow":         {"--overflow_mode", "clip"},
		"buffering":        {"--weight_buffering", "triple"},
		"tile above max":   {"--fx", "8"},
		"buffer too small": {"--accumulation_buffer_size", "16"},
	}

	for name, args := range cases {
		args := append([]string{"--bin_dirpath", t.TempDir()}, args...)
		parser := newTestParser(t, args...)

		validator := new(CommandLineValidator)
		validator.Init(parser)
		require.Panics(t, validator.Validate, name)
	}
}

func TestConfigureRuntime(t *testing.T) {
	dir := t.TempDir()
	parser := newTestParser(t,
		"--bin_dirpath", dir,
		"--engine_mode", "akita",
		"--verbose", "2",
		"--ic0", "8",
		"--oc0", "4",
		"--overflow_mode", "saturate",
		"--weight_buffering", "single",
		"--ox1", "3",
		"--fx", "5",
		"--seed", "99",
	)
	defer SetRuntimeEngineMode(DefaultEngineMode())
	defer SetRuntimeVerbosity(0)

	ConfigureRuntime(parser)

	loader := new(ConfigLoader)
	loader.Init()

	require.Equal(t, EngineModeAkita, RuntimeEngineMode())
	require.Equal(t, 2, RuntimeVerbosity())
	require.Equal(t, filepath.Clean(dir), loader.BinDirpath())
	require.Equal(t, 8, loader.IC0())
	require.Equal(t, 4, loader.OC0())
	require.Equal(t, "saturate", loader.OverflowMode())
	require.Equal(t, "single", loader.WeightBuffering())
	require.Equal(t, 3, loader.LayerOX1())
	require.Equal(t, 5, loader.LayerFX())
	require.Equal(t, int64(99), loader.Seed())
	require.Equal(t, 1000, loader.ClockMhz())
}

func TestEngineModeFromString(t *testing.T) {
	mode, ok := EngineModeFromString("akita")
	require.True(t, ok)
	require.Equal(t, EngineModeAkita, mode)

	_, ok = EngineModeFromString("Akita")
	require.False(t, ok)
	require.Equal(t, EngineModeSerial, DefaultEngineMode())
}

func TestStatFactoryLines(t *testing.T) {
	stats := new(StatFactory)
	stats.Init("Array")
	stats.Increment("tiles", 2)
	stats.Increment("tiles", 1)
	stats.Set("cycles", 40)

	require.Equal(t, int64(3), stats.Value("tiles"))
	require.Equal(t, int64(0), stats.Value("missing"))
	require.Equal(t, []string{"Array_cycles: 40", "Array_tiles: 3"}, stats.ToLines())
}

func TestFileDumperCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.txt")

	dumper := new(FileDumper)
	dumper.Init(path)
	dumper.WriteLines([]string{"a: 1", "b: 2"})

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a: 1\nb: 2\n", string(content))
}

func TestFloat16Conversion(t *testing.T) {
	require.Equal(t, uint16(0x3C00), Float32ToFloat16(1))
	require.Equal(t, float32(-2), Float16ToFloat32(0xC000))
	require.Equal(t, float32(0.33325195), RoundTripFloat16(1.0/3.0))
	require.Equal(t, float32(65504), Float16ToFloat32(Float32ToFloat16(65504)))
}
