package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/taskscout/taskscout/types"
)

// HandleError prints the message and exits: status 2 for a bad invocation,
// 1 for everything else.
func HandleError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	if types.HasCode(technicalErr, types.ErrCodeInvalidArgument) {
		os.Exit(2)
	}
	os.Exit(1)
}

// PrintError prints the user-facing message on stderr. Verbose runs also
// get the underlying cause, unless the message already spells it out.
func PrintError(userMsg string, technicalErr error) {
	fmt.Fprintln(os.Stderr, userMsg)
	if technicalErr == nil || !viper.GetBool("verbose") {
		return
	}
	if !strings.Contains(userMsg, technicalErr.Error()) {
		fmt.Fprintf(os.Stderr, "  cause: %v\n", technicalErr)
	}
}

// LogError notes a non-fatal error; visible only in verbose runs.
func LogError(msg string, err error) {
	if !viper.GetBool("verbose") {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug: %s: %v\n", msg, err)
		return
	}
	fmt.Fprintf(os.Stderr, "debug: %s\n", msg)
}

// errorCategory maps an error to the coarse category telemetry records:
// the lowercased code for coded errors, "other" for the rest.
func errorCategory(err error) string {
	if err == nil {
		return ""
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		return strings.ToLower(string(coded.Code))
	}
	return "other"
}
