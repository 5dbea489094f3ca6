package simulator

import (
	"fmt"

	"systolicsim/src/misc"
)

type Platform interface {
	Init(command_line_parser *misc.CommandLineParser)
	Fini()
	IsFinished() bool
	Cycle()
	Dump()
}

func newPlatformForMode(mode misc.EngineMode) Platform {
	switch mode {
	case misc.EngineModeSerial:
		return new(SystolicPlatform)
	case misc.EngineModeAkita:
		return new(AkitaPlatform)
	default:
		panic(fmt.Sprintf("unsupported engine mode: %s", mode))
	}
}
