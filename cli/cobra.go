package cli

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovh/lagoonctl/sdk"
)

// ShellMode will os.Exit if false, display only exit code if true
var ShellMode bool

// Exit codes
const (
	ExitCodeWrongUsage = 1
	ExitCodeError      = 50
)

//ExitOnError if the error is not nil; exit the process with printing help functions and the error
func ExitOnError(err error, helpFunc ...func() error) {
	if err == nil {
		return
	}

	fmt.Println("Error:", ErrorMessage(err))
	for _, f := range helpFunc {
		f() // nolint
	}

	OSExit(ExitCode(err))
}

// ErrorMessage returns the message displayed for err.
func ErrorMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Error()
	}
	if sdk.ErrorIs(err, sdk.ErrWrongRequest) {
		return err.Error() + " (see --help)"
	}
	return err.Error()
}

// ExitCode returns the process exit code matching err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ExitCodeError
}

// OSExit will os.Exit if ShellMode is false, display only exit code if true
func OSExit(code int) {
	if ShellMode {
		// display code only if os.Exit is not ok
		if code != 0 {
			fmt.Printf("Command exit with code %d\n", code)
		}
	} else {
		os.Exit(code)
	}
}

// SubCommands represents an array of cobra.Command
type SubCommands []*cobra.Command

// NewCommand creates a new cobra command with or without a RunFunc and eventually subCommands
func NewCommand(c Command, run RunFunc, subCommands SubCommands, mod ...CommandModifier) *cobra.Command {
	return newCommand(c, run, subCommands, mod...)
}

// NewGetCommand creates a new cobra command with a RunGetFunc and eventually subCommands
func NewGetCommand(c Command, run RunGetFunc, subCommands SubCommands, mod ...CommandModifier) *cobra.Command {
	return newCommand(c, run, subCommands, mod...)
}

// NewDeleteCommand creates a new cobra command with a RunDeleteFunc and eventually subCommands
func NewDeleteCommand(c Command, run RunDeleteFunc, subCommands SubCommands, mod ...CommandModifier) *cobra.Command {
	return newCommand(c, run, subCommands, mod...)
}

// NewListCommand creates a new cobra command with a RunListFunc and eventually subCommands
func NewListCommand(c Command, run RunListFunc, subCommands SubCommands, mod ...CommandModifier) *cobra.Command {
	return newCommand(c, run, subCommands, mod...)
}

func commandUse(c Command) string {
	use := c.Name
	for _, a := range c.Args {
		use += " " + strings.ToUpper(a.Name)
	}
	for _, a := range c.OptionalArgs {
		use += " [" + strings.ToUpper(a.Name) + "]"
	}
	if c.VariadicArgs.Name != "" {
		use += " " + strings.ToUpper(c.VariadicArgs.Name) + " ..."
	}
	return use
}

// checkArgs returns ErrWrongUsage when the number of args does not fit the command.
func checkArgs(c Command, args []string) error {
	//Command must receive as least mandatory args
	if len(c.Args) > len(args) {
		return ErrWrongUsage
	}
	//If there is no optional args but there more args than expected
	if c.VariadicArgs.Name == "" && len(args) > len(c.Args)+len(c.OptionalArgs) {
		return ErrWrongUsage
	}
	//If there is a variadic arg, we condider at least one arg mandatory
	if c.VariadicArgs.Name != "" && len(args) < len(c.Args)+1 {
		return ErrWrongUsage
	}
	return nil
}

func newCommand(c Command, run interface{}, subCommands SubCommands, mods ...CommandModifier) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(os.Stdout)
	cmd.Use = commandUse(c)

	if len(mods) == 0 {
		mods = []CommandModifier{CommandWithExtraFlags, CommandWithExtraAliases}
	}

	if run != nil {
		for _, mod := range mods {
			mod(&c, run)
		}
	}
	cmd.Aliases = c.Aliases
	for _, f := range c.Flags {
		switch f.Type {
		case FlagBool:
			b, _ := strconv.ParseBool(f.Default)
			_ = cmd.Flags().BoolP(f.Name, f.ShortHand, b, f.Usage)
		case FlagSlice:
			_ = cmd.Flags().StringSliceP(f.Name, f.ShortHand, nil, f.Usage)
		case FlagArray:
			_ = cmd.Flags().StringArrayP(f.Name, f.ShortHand, nil, f.Usage)
		default:
			_ = cmd.Flags().StringP(f.Name, f.ShortHand, f.Default, f.Usage)
		}
	}

	cmd.Short = c.Short
	cmd.Long = c.Long
	cmd.Hidden = c.Hidden
	cmd.Example = c.Example

	cmd.AddCommand(subCommands...)

	if run == nil || reflect.ValueOf(run).IsNil() {
		cmd.Run = nil
		cmd.RunE = nil
		return cmd
	}

	cmd.Run = func(cmd *cobra.Command, args []string) {
		if c.PreRun != nil {
			if err := c.PreRun(&c, &args); err != nil {
				ExitOnError(err)
				return
			}
		}
		if err := checkArgs(c, args); err != nil {
			ExitOnError(err, cmd.Help)
			return
		}
		vals, err := commandValues(cmd, c, args)
		if err != nil {
			ExitOnError(err, cmd.Help)
			return
		}
		ExitOnError(runCommand(cmd, run, vals))
	}

	return cmd
}

// commandValues gathers args, command flags and the persistent flags of the root command.
func commandValues(cmd *cobra.Command, c Command, args []string) (Values, error) {
	definedArgs := append([]Arg{}, c.Args...)
	definedArgs = append(definedArgs, c.OptionalArgs...)

	vals := Values{}
	for i := range args {
		if i < len(definedArgs) {
			s := definedArgs[i].Name
			if definedArgs[i].IsValid != nil && !definedArgs[i].IsValid(args[i]) {
				return nil, &Error{Code: ExitCodeWrongUsage, Err: fmt.Errorf("%s is invalid", s)}
			}
			vals[s] = append(vals[s], args[i])
			continue
		}
		vals[c.VariadicArgs.Name] = append(vals[c.VariadicArgs.Name], args[i:]...)
		break
	}

	for i := range c.Flags {
		s := c.Flags[i].Name
		switch c.Flags[i].Type {
		case FlagBool:
			b, err := cmd.Flags().GetBool(s)
			if err != nil {
				return nil, err
			}
			vals[s] = append(vals[s], fmt.Sprintf("%v", b))
		case FlagSlice:
			slice, err := cmd.Flags().GetStringSlice(s)
			if err != nil {
				return nil, err
			}
			vals[s] = append(vals[s], strings.Join(slice, "||"))
		case FlagArray:
			array, err := cmd.Flags().GetStringArray(s)
			if err != nil {
				return nil, err
			}
			vals[s] = array
		default:
			val, err := cmd.Flags().GetString(s)
			if err != nil {
				return nil, err
			}
			vals[s] = append(vals[s], val)
		}
		if c.Flags[i].IsValid != nil {
			for _, v := range vals[s] {
				if !c.Flags[i].IsValid(v) {
					return nil, &Error{Code: ExitCodeWrongUsage, Err: fmt.Errorf("%s is invalid", s)}
				}
			}
		}
	}

	for _, name := range []string{"file", "log-level"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			vals[name] = append(vals[name], f.Value.String())
		}
	}
	for _, name := range []string{"insecure", "verbose"} {
		b, _ := cmd.Flags().GetBool(name)
		vals[name] = append(vals[name], fmt.Sprintf("%v", b))
	}
	return vals, nil
}

func runCommand(cmd *cobra.Command, run interface{}, vals Values) error {
	w := cmd.OutOrStdout()
	format := vals.GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	var fields []string
	if f := vals.GetString("fields"); f != "" {
		fields = strings.Split(f, ",")
	}

	switch f := run.(type) {
	case RunFunc:
		return f(vals)

	case RunGetFunc:
		i, err := f(vals)
		if err != nil {
			return err
		}
		return PrintGet(w, i, format, quiet, fields, verbose)

	case RunListFunc:
		filters, err := parseFilters(vals.GetString("filter"))
		if err != nil {
			return err
		}
		s, err := f(vals)
		if err != nil {
			return err
		}
		return PrintList(w, s, format, quiet, filters, fields, verbose)

	case RunDeleteFunc:
		if !vals.GetBool("force") && !AskConfirm("Are you sure to delete?") {
			fmt.Fprintln(w, "Deletion aborted")
			return nil
		}
		if err := f(vals); err != nil {
			return err
		}
		fmt.Fprintln(w, "Delete with success")
		return nil
	}
	return fmt.Errorf("unknown function type: %T", run)
}

func parseFilters(filter string) (map[string]string, error) {
	filters := make(map[string]string)
	if filter == "" {
		return filters, nil
	}
	for _, t := range strings.Split(filter, " ") {
		s := strings.SplitN(t, "=", 2)
		if len(s) != 2 {
			return nil, &Error{Code: ExitCodeWrongUsage, Err: fmt.Errorf("filter should be formatted like name=value")}
		}
		filters[s[0]] = s[1]
	}
	return filters, nil
}
