package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/taskscout/taskscout/internal/ui"
)

func isJSON() bool {
	return viper.GetBool("json")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirmOrAbort asks for a y/yes answer. JSON mode auto-confirms so
// scripted pipelines never stall; other non-interactive runs refuse and
// point at --yes instead of hanging on a read.
func confirmOrAbort(prompt string) bool {
	if isJSON() {
		return true
	}
	if !ui.IsInteractive() {
		fmt.Println("Refusing to prompt without a terminal; rerun with --yes to confirm.")
		return false
	}

	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "y", "yes":
		return true
	default:
		fmt.Println("Cancelled.")
		return false
	}
}
