package misc

import (
	"path/filepath"
	"strings"
)

type ConfigLoader struct{}

type runtimeConfig struct {
	binDirpath           string
	clockMhz             int
	numSimulationThreads int
	seed                 int64
	stimulus             string
	progressInterval     int
}

type arrayRuntimeConfig struct {
	ic0                    int
	oc0                    int
	accumulationBufferSize int
	inputPrecision         int
	weightPrecision        int
	outputPrecision        int
	overflowMode           string
	weightBuffering        string
	ic1Max                 int
	fyMax                  int
	fxMax                  int
	ox0Max                 int
	oy0Max                 int
}

type layerRuntimeConfig struct {
	ox1 int
	oy1 int
	oc1 int
	ic1 int
	fx  int
	fy  int
	ox0 int
	oy0 int
}

var globalConfig = runtimeConfig{
	binDirpath:           "bin",
	clockMhz:             1000,
	numSimulationThreads: 4,
	seed:                 1,
	stimulus:             "uniform",
	progressInterval:     0,
}

var globalArrayConfig = arrayRuntimeConfig{
	ic0:                    16,
	oc0:                    16,
	accumulationBufferSize: 1024,
	inputPrecision:         8,
	weightPrecision:        8,
	outputPrecision:        32,
	overflowMode:           "wrap",
	weightBuffering:        "double",
	ic1Max:                 16,
	fyMax:                  7,
	fxMax:                  7,
	ox0Max:                 32,
	oy0Max:                 32,
}

var globalLayerConfig = layerRuntimeConfig{
	ox1: 1,
	oy1: 1,
	oc1: 1,
	ic1: 1,
	fx:  3,
	fy:  3,
	ox0: 8,
	oy0: 8,
}

func ConfigureRuntime(parser *CommandLineParser) {
	if parser == nil {
		return
	}

	if mode, ok := EngineModeFromString(parser.StringParameter("engine_mode")); ok {
		SetRuntimeEngineMode(mode)
	}
	SetRuntimeVerbosity(int(parser.IntParameter("verbose")))

	globalConfig.binDirpath = resolveDirPath(parser.StringParameter("bin_dirpath"))
	globalConfig.clockMhz = int(parser.IntParameter("clock_mhz"))
	globalConfig.numSimulationThreads = int(parser.IntParameter("num_simulation_threads"))
	globalConfig.seed = parser.IntParameter("seed")
	globalConfig.stimulus = strings.TrimSpace(parser.StringParameter("stimulus"))
	globalConfig.progressInterval = int(parser.IntParameter("progress_interval"))

	globalArrayConfig.ic0 = int(parser.IntParameter("ic0"))
	globalArrayConfig.oc0 = int(parser.IntParameter("oc0"))
	globalArrayConfig.accumulationBufferSize = int(parser.IntParameter("accumulation_buffer_size"))
	globalArrayConfig.inputPrecision = int(parser.IntParameter("input_precision"))
	globalArrayConfig.weightPrecision = int(parser.IntParameter("weight_precision"))
	globalArrayConfig.outputPrecision = int(parser.IntParameter("output_precision"))
	globalArrayConfig.overflowMode = strings.TrimSpace(parser.StringParameter("overflow_mode"))
	globalArrayConfig.weightBuffering = strings.TrimSpace(parser.StringParameter("weight_buffering"))
	globalArrayConfig.ic1Max = int(parser.IntParameter("ic1_max"))
	globalArrayConfig.fyMax = int(parser.IntParameter("fy_max"))
	globalArrayConfig.fxMax = int(parser.IntParameter("fx_max"))
	globalArrayConfig.ox0Max = int(parser.IntParameter("ox0_max"))
	globalArrayConfig.oy0Max = int(parser.IntParameter("oy0_max"))

	globalLayerConfig.ox1 = int(parser.IntParameter("ox1"))
	globalLayerConfig.oy1 = int(parser.IntParameter("oy1"))
	globalLayerConfig.oc1 = int(parser.IntParameter("oc1"))
	globalLayerConfig.ic1 = int(parser.IntParameter("ic1"))
	globalLayerConfig.fx = int(parser.IntParameter("fx"))
	globalLayerConfig.fy = int(parser.IntParameter("fy"))
	globalLayerConfig.ox0 = int(parser.IntParameter("ox0"))
	globalLayerConfig.oy0 = int(parser.IntParameter("oy0"))
}

func (this *ConfigLoader) Init() {}

func (this *ConfigLoader) BinDirpath() string {
	return globalConfig.binDirpath
}

func (this *ConfigLoader) ClockMhz() int {
	return globalConfig.clockMhz
}

func (this *ConfigLoader) NumSimulationThreads() int {
	return globalConfig.numSimulationThreads
}

func (this *ConfigLoader) Seed() int64 {
	return globalConfig.seed
}

func (this *ConfigLoader) Stimulus() string {
	return globalConfig.stimulus
}

func (this *ConfigLoader) ProgressInterval() int {
	return globalConfig.progressInterval
}

func (this *ConfigLoader) IC0() int {
	return globalArrayConfig.ic0
}

func (this *ConfigLoader) OC0() int {
	return globalArrayConfig.oc0
}

func (this *ConfigLoader) AccumulationBufferSize() int {
	return globalArrayConfig.accumulationBufferSize
}

func (this *ConfigLoader) InputPrecision() int {
	return globalArrayConfig.inputPrecision
}

func (this *ConfigLoader) WeightPrecision() int {
	return globalArrayConfig.weightPrecision
}

func (this *ConfigLoader) OutputPrecision() int {
	return globalArrayConfig.outputPrecision
}

func (this *ConfigLoader) OverflowMode() string {
	return globalArrayConfig.overflowMode
}

func (this *ConfigLoader) WeightBuffering() string {
	return globalArrayConfig.weightBuffering
}

func (this *ConfigLoader) IC1Max() int {
	return globalArrayConfig.ic1Max
}

func (this *ConfigLoader) FYMax() int {
	return globalArrayConfig.fyMax
}

func (this *ConfigLoader) FXMax() int {
	return globalArrayConfig.fxMax
}

func (this *ConfigLoader) OX0Max() int {
	return globalArrayConfig.ox0Max
}

func (this *ConfigLoader) OY0Max() int {
	return globalArrayConfig.oy0Max
}

func (this *ConfigLoader) LayerOX1() int {
	return globalLayerConfig.ox1
}

func (this *ConfigLoader) LayerOY1() int {
	return globalLayerConfig.oy1
}

func (this *ConfigLoader) LayerOC1() int {
	return globalLayerConfig.oc1
}

func (this *ConfigLoader) LayerIC1() int {
	return globalLayerConfig.ic1
}

func (this *ConfigLoader) LayerFX() int {
	return globalLayerConfig.fx
}

func (this *ConfigLoader) LayerFY() int {
	return globalLayerConfig.fy
}

func (this *ConfigLoader) LayerOX0() int {
	return globalLayerConfig.ox0
}

func (this *ConfigLoader) LayerOY0() int {
	return globalLayerConfig.oy0
}

func resolveDirPath(dirpath string) string {
	dirpath = strings.TrimSpace(dirpath)
	if dirpath == "" {
		return ""
	}

	if resolved, err := filepath.Abs(dirpath); err == nil {
		return resolved
	}
	return filepath.Clean(dirpath)
}
