package misc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	"systolicsim/src/simulator/systolic/fixed"
)

// widest lane the simulator accepts, kept in step with systolic.MaxLaneBits
const maxLaneBits = 62

var weightBufferingNames = []string{"single", "double", "single-buffered", "double-buffered"}

type CommandLineValidator struct {
	command_line_parser *CommandLineParser
}

func (this *CommandLineValidator) Init(command_line_parser *CommandLineParser) {
	this.command_line_parser = command_line_parser
}

func (this *CommandLineValidator) Validate() {
	if this.command_line_parser.IntParameter("num_simulation_threads") <= 0 {
		err := errors.New("num_simulation_threads <= 0")
		panic(err)
	}

	if this.command_line_parser.IntParameter("verbose") < 0 {
		err := errors.New("verbose < 0")
		panic(err)
	}

	engine_mode := this.command_line_parser.StringParameter("engine_mode")
	if _, ok := EngineModeFromString(engine_mode); !ok {
		err := fmt.Errorf("engine_mode %s is not supported", engine_mode)
		panic(err)
	}

	if this.command_line_parser.IntParameter("clock_mhz") <= 0 {
		err := errors.New("clock_mhz <= 0")
		panic(err)
	}

	for _, name := range []string{
		"ic0", "oc0", "accumulation_buffer_size",
		"ic1_max", "fy_max", "fx_max", "ox0_max", "oy0_max",
		"ox1", "oy1", "oc1",
	} {
		if this.command_line_parser.IntParameter(name) <= 0 {
			err := fmt.Errorf("%s <= 0", name)
			panic(err)
		}
	}

	for _, name := range []string{"input_precision", "weight_precision", "output_precision"} {
		bits := this.command_line_parser.IntParameter(name)
		if bits <= 0 || bits > maxLaneBits {
			err := fmt.Errorf("%s %d is outside [1, %d]", name, bits, maxLaneBits)
			panic(err)
		}
	}

	if this.command_line_parser.IntParameter("input_precision")+
		this.command_line_parser.IntParameter("weight_precision") > maxLaneBits {
		err := fmt.Errorf("input_precision + weight_precision > %d", maxLaneBits)
		panic(err)
	}

	overflow_mode := strings.TrimSpace(this.command_line_parser.StringParameter("overflow_mode"))
	if _, ok := fixed.OverflowFromString(overflow_mode); !ok {
		err := fmt.Errorf("overflow_mode %s is not supported", overflow_mode)
		panic(err)
	}

	weight_buffering := strings.TrimSpace(this.command_line_parser.StringParameter("weight_buffering"))
	if !lo.Contains(weightBufferingNames, weight_buffering) {
		err := fmt.Errorf("weight_buffering %s is not supported", weight_buffering)
		panic(err)
	}

	stimulus := strings.TrimSpace(this.command_line_parser.StringParameter("stimulus"))
	if stimulus != "uniform" && stimulus != "fp16" {
		err := fmt.Errorf("stimulus %s is not supported", stimulus)
		panic(err)
	}

	bounds := []struct {
		name     string
		max_name string
	}{
		{"ic1", "ic1_max"},
		{"fy", "fy_max"},
		{"fx", "fx_max"},
		{"ox0", "ox0_max"},
		{"oy0", "oy0_max"},
	}
	for _, bound := range bounds {
		value := this.command_line_parser.IntParameter(bound.name)
		max_value := this.command_line_parser.IntParameter(bound.max_name)
		if value <= 0 || value > max_value {
			err := fmt.Errorf("%s %d is outside [1, %s=%d]", bound.name, value, bound.max_name, max_value)
			panic(err)
		}
	}

	tile_size := this.command_line_parser.IntParameter("ox0") * this.command_line_parser.IntParameter("oy0")
	if tile_size > this.command_line_parser.IntParameter("accumulation_buffer_size") {
		err := fmt.Errorf("ox0 * oy0 = %d exceeds accumulation_buffer_size", tile_size)
		panic(err)
	}

	bin_dirpath := this.command_line_parser.StringParameter("bin_dirpath")
	if strings.TrimSpace(bin_dirpath) == "" {
		err := errors.New("bin_dirpath is empty")
		panic(err)
	}
	if info, stat_err := os.Stat(bin_dirpath); stat_err == nil && !info.IsDir() {
		err := fmt.Errorf("bin_dirpath %s is not a directory", bin_dirpath)
		panic(err)
	}
}
