package misc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type OptionType int

const (
	INT OptionType = iota
	STRING
)

type option struct {
	option_type   OptionType
	name          string
	default_value string
	help_msg      string

	int_value    *int64
	string_value *string
}

// CommandLineParser keeps the option table of the simulator. Options are
// registered on a pflag.FlagSet, either a private one or the flag set of the
// cobra command that owns the parser.
type CommandLineParser struct {
	flag_set *pflag.FlagSet
	options  []*option
	by_name  map[string]*option
	args     []string
}

func (this *CommandLineParser) Init() {
	this.InitWithFlagSet(pflag.NewFlagSet("systolicsim", pflag.ContinueOnError))
}

func (this *CommandLineParser) InitWithFlagSet(flag_set *pflag.FlagSet) {
	this.flag_set = flag_set
	this.options = make([]*option, 0)
	this.by_name = make(map[string]*option)
	this.args = make([]string, 0)
}

func (this *CommandLineParser) AddOption(
	option_type OptionType,
	name string,
	default_value string,
	help_msg string,
) {
	if _, found := this.by_name[name]; found {
		err := fmt.Errorf("option %s is already registered", name)
		panic(err)
	}

	option_ := &option{
		option_type:   option_type,
		name:          name,
		default_value: default_value,
		help_msg:      help_msg,
	}

	switch option_type {
	case INT:
		value, err := strconv.ParseInt(default_value, 10, 64)
		if err != nil {
			panic(fmt.Errorf("option %s has non-integer default %q", name, default_value))
		}
		option_.int_value = this.flag_set.Int64(name, value, help_msg)
	case STRING:
		option_.string_value = this.flag_set.String(name, default_value, help_msg)
	default:
		err := errors.New("option type is not valid")
		panic(err)
	}

	this.options = append(this.options, option_)
	this.by_name[name] = option_
}

// Parse reads args in os.Args form: the first element is the program name.
func (this *CommandLineParser) Parse(args []string) error {
	if len(args) == 0 {
		return nil
	}

	this.args = append(this.args[:0], args[1:]...)
	return this.flag_set.Parse(args[1:])
}

// SetArgs records arguments parsed by an owning command.
func (this *CommandLineParser) SetArgs(args []string) {
	this.args = append(this.args[:0], args...)
}

func (this *CommandLineParser) IsArgSet(name string) bool {
	if this.flag_set.Lookup(name) == nil {
		return false
	}
	return this.flag_set.Changed(name)
}

func (this *CommandLineParser) IntParameter(name string) int64 {
	option_ := this.lookup(name)
	if option_.option_type != INT {
		err := fmt.Errorf("option %s is not an integer", name)
		panic(err)
	}
	return *option_.int_value
}

func (this *CommandLineParser) StringParameter(name string) string {
	option_ := this.lookup(name)
	if option_.option_type != STRING {
		err := fmt.Errorf("option %s is not a string", name)
		panic(err)
	}
	return *option_.string_value
}

func (this *CommandLineParser) lookup(name string) *option {
	option_, found := this.by_name[name]
	if !found {
		err := fmt.Errorf("option %s is not registered", name)
		panic(err)
	}
	return option_
}

func (this *CommandLineParser) StringifyHelpMsgs() string {
	return "usage: systolicsim [options]\n" + this.flag_set.FlagUsages()
}

func (this *CommandLineParser) StringifyArgs() string {
	return strings.Join(this.args, " ")
}

func (this *CommandLineParser) StringifyOptions() string {
	lines := make([]string, 0, len(this.options))
	for _, option_ := range this.options {
		switch option_.option_type {
		case INT:
			lines = append(lines, fmt.Sprintf("%s: %d", option_.name, *option_.int_value))
		case STRING:
			lines = append(lines, fmt.Sprintf("%s: %s", option_.name, *option_.string_value))
		}
	}
	return strings.Join(lines, "\n")
}
