package misc

// AddSimulatorOptions registers the option table of the simulator.
func AddSimulatorOptions(command_line_parser *CommandLineParser) {
	// verbose level
	// level 0: only prints simulation output
	// level 1: level 0 + prints one line per finished tile
	// level 2: level 1 + prints every accumulation buffer write
	command_line_parser.AddOption(INT, "verbose", "0", "verbosity of the simulation")

	command_line_parser.AddOption(INT, "num_simulation_threads", "4",
		"number of arrays simulated in parallel by the layer runner")

	command_line_parser.AddOption(
		STRING,
		"engine_mode",
		string(DefaultEngineMode()),
		"what drives the array clock (serial|akita)",
	)
	command_line_parser.AddOption(INT, "clock_mhz", "1000", "array clock frequency in MHz")

	command_line_parser.AddOption(STRING, "bin_dirpath", "bin", "path to the output directory")

	command_line_parser.AddOption(INT, "ic0", "16", "PE rows (input channels per pass)")
	command_line_parser.AddOption(INT, "oc0", "16", "PE columns (output channels per tile)")
	command_line_parser.AddOption(
		INT,
		"accumulation_buffer_size",
		"1024",
		"accumulation buffer slots (output pixels per tile)",
	)

	command_line_parser.AddOption(INT, "input_precision", "8", "signed input lane width in bits")
	command_line_parser.AddOption(INT, "weight_precision", "8", "signed weight lane width in bits")
	command_line_parser.AddOption(INT, "output_precision", "32", "signed output lane width in bits")
	command_line_parser.AddOption(
		STRING,
		"overflow_mode",
		"wrap",
		"output lane overflow behaviour (wrap|saturate)",
	)
	command_line_parser.AddOption(
		STRING,
		"weight_buffering",
		"double",
		"weight bank strategy (single|double)",
	)

	command_line_parser.AddOption(INT, "ic1_max", "16", "largest accepted IC1 per tile")
	command_line_parser.AddOption(INT, "fy_max", "7", "largest accepted FY per tile")
	command_line_parser.AddOption(INT, "fx_max", "7", "largest accepted FX per tile")
	command_line_parser.AddOption(INT, "ox0_max", "32", "largest accepted OX0 per tile")
	command_line_parser.AddOption(INT, "oy0_max", "32", "largest accepted OY0 per tile")

	command_line_parser.AddOption(INT, "ox1", "1", "image tiles along x")
	command_line_parser.AddOption(INT, "oy1", "1", "image tiles along y")
	command_line_parser.AddOption(INT, "oc1", "1", "kernel tiles")
	command_line_parser.AddOption(INT, "ic1", "1", "input channel groups per tile")
	command_line_parser.AddOption(INT, "fx", "3", "filter width")
	command_line_parser.AddOption(INT, "fy", "3", "filter height")
	command_line_parser.AddOption(INT, "ox0", "8", "output pixels per tile along x")
	command_line_parser.AddOption(INT, "oy0", "8", "output pixels per tile along y")

	command_line_parser.AddOption(INT, "seed", "1", "seed of the generated layer")
	command_line_parser.AddOption(
		STRING,
		"stimulus",
		"uniform",
		"how layer values are drawn (uniform|fp16)",
	)
	command_line_parser.AddOption(
		INT,
		"progress_interval",
		"0",
		"cycles between progress lines (<=0 disables)",
	)
}
