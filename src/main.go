package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"systolicsim/src/misc"
	"systolicsim/src/simulator"
	"systolicsim/src/simulator/conv"
	"systolicsim/src/simulator/systolic"
)

func main() {
	root_command := NewRootCommand()
	if err := root_command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[systolic] %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func NewRootCommand() *cobra.Command {
	command_line_parser := new(misc.CommandLineParser)

	root_command := &cobra.Command{
		Use:          "systolicsim",
		Short:        "Cycle-level model of a weight-stationary systolic array running a conv layer",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command_line_parser.SetArgs(os.Args[1:])
			return RunSimulation(command_line_parser)
		},
	}
	command_line_parser.InitWithFlagSet(root_command.PersistentFlags())
	misc.AddSimulatorOptions(command_line_parser)

	root_command.AddCommand(&cobra.Command{
		Use:          "layer",
		Short:        "Run the layer on num_simulation_threads arrays in parallel",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command_line_parser.SetArgs(os.Args[1:])
			return RunLayer(cmd.Context(), command_line_parser)
		},
	})

	return root_command
}

func configure(command_line_parser *misc.CommandLineParser) *misc.ConfigLoader {
	command_line_validator := new(misc.CommandLineValidator)
	command_line_validator.Init(command_line_parser)
	command_line_validator.Validate()

	misc.ConfigureRuntime(command_line_parser)

	config_loader := new(misc.ConfigLoader)
	config_loader.Init()

	bin_dirpath := config_loader.BinDirpath()

	args_file_dumper := new(misc.FileDumper)
	args_file_dumper.Init(filepath.Join(bin_dirpath, "args.txt"))
	args_file_dumper.WriteLines([]string{command_line_parser.StringifyArgs()})

	options_file_dumper := new(misc.FileDumper)
	options_file_dumper.Init(filepath.Join(bin_dirpath, "options.txt"))
	options_file_dumper.WriteLines([]string{command_line_parser.StringifyOptions()})

	return config_loader
}

// RunSimulation runs the layer cycle by cycle on one array.
func RunSimulation(command_line_parser *misc.CommandLineParser) error {
	configure(command_line_parser)

	mode := misc.RuntimeEngineMode()
	if misc.RuntimeVerbosity() >= 1 {
		fmt.Printf("[systolic] initializing %s engine\n", mode)
	}

	simulator_ := new(simulator.Simulator)
	simulator_.Init(command_line_parser)
	atexit.Register(simulator_.Fini)

	for !simulator_.IsFinished() {
		simulator_.Cycle()
	}

	simulator_.Dump()

	platform, ok := simulator_.Platform().(interface {
		Err() error
		Mismatches() []conv.Mismatch
	})
	if !ok {
		return nil
	}
	if err := platform.Err(); err != nil {
		return err
	}
	if n := len(platform.Mismatches()); n > 0 {
		return fmt.Errorf("%d output mismatches against the reference convolution", n)
	}
	return nil
}

// RunLayer runs the layer on a pool of arrays and checks it against the
// reference convolution.
func RunLayer(ctx context.Context, command_line_parser *misc.CommandLineParser) error {
	config_loader := configure(command_line_parser)
	if ctx == nil {
		ctx = context.Background()
	}

	params := systolic.LoadParameters(config_loader)
	layer_params := conv.LayerParams{
		OX1: config_loader.LayerOX1(),
		OY1: config_loader.LayerOY1(),
		OC1: config_loader.LayerOC1(),
		IC1: config_loader.LayerIC1(),
		FX:  config_loader.LayerFX(),
		FY:  config_loader.LayerFY(),
		OX0: config_loader.LayerOX0(),
		OY0: config_loader.LayerOY0(),
	}
	source, _ := conv.SourceFromString(config_loader.Stimulus())

	layer, err := conv.GenerateLayer(layer_params, params, config_loader.Seed(), source)
	if err != nil {
		return err
	}

	result, err := conv.RunLayer(ctx, layer, config_loader.NumSimulationThreads())
	if err != nil {
		return err
	}

	mismatches, err := conv.Compare(conv.Reference(layer), result.Output, 16)
	if err != nil {
		return err
	}

	stat_factory := new(misc.StatFactory)
	stat_factory.Init("LayerRunner")
	stat_factory.Set("arrays", int64(result.Arrays))
	stat_factory.Set("cycles", result.Cycles)
	stat_factory.Set("tiles_total", int64(len(layer_params.Tiles())))
	stat_factory.Set("mismatches", int64(len(mismatches)))

	lines := stat_factory.ToLines()
	lines = append(lines, result.Stats.ToLines("SystolicArrays")...)

	file_dumper := new(misc.FileDumper)
	file_dumper.Init(filepath.Join(config_loader.BinDirpath(), "layer_log.txt"))
	file_dumper.WriteLines(lines)

	fmt.Printf("[systolic] %s on %d arrays finished in %d cycles, %d mismatches\n",
		layer_params, result.Arrays, result.Cycles, len(mismatches))

	if len(mismatches) > 0 {
		return fmt.Errorf("%d output mismatches against the reference convolution, first %s",
			len(mismatches), mismatches[0])
	}
	return nil
}
