package display

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvOutput selects machine output for every command when set to "json".
const EnvOutput = "DEVIZE_OUTPUT"

// ShouldOutputJSON determines if a command should output JSON based on its
// --json flag, the root's persistent --json flag, then DEVIZE_OUTPUT.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return os.Getenv(EnvOutput) == FormatJSON
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return os.Getenv(EnvOutput) == FormatJSON
}

// OutputJSON marshals v with MarshalJSON and prints it to the command's
// output stream.
func OutputJSON(cmd *cobra.Command, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
