package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const consentNotice = `TaskScout can report anonymous usage statistics to guide development.

  Sent:       command names, outcome, error category, OS/arch, version
  Never sent: item titles or bodies, roster names, file paths, keys

Change your answer anytime with "taskscout config telemetry enable|disable".`

// CheckAndPromptConsent prompts on the first run only; afterwards it just
// reports the recorded choice.
func CheckAndPromptConsent() (bool, error) {
	cfg, err := Load()
	if err != nil {
		return false, err
	}
	if !cfg.NeedsConsent() {
		return cfg.IsEnabled(), nil
	}
	return PromptForConsent()
}

// PromptForConsent shows the consent notice, records the answer, and
// returns the user's choice. Non-interactive runs record an opt-out
// without prompting so CI never sees the question twice.
func PromptForConsent() (bool, error) {
	cfg, err := Load()
	if err != nil {
		return false, err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, record(cfg, false)
	}

	fmt.Println()
	fmt.Println(consentNotice)
	fmt.Println()
	fmt.Print("Enable anonymous telemetry? [Y/n] ")

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		// A dead stdin counts as "no".
		return false, record(cfg, false)
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	enabled := answer == "" || answer == "y" || answer == "yes"
	if err := record(cfg, enabled); err != nil {
		return false, err
	}

	if enabled {
		fmt.Println("Telemetry enabled. Thank you!")
	} else {
		fmt.Println("Telemetry stays off. Enable it later with \"taskscout config telemetry enable\".")
	}
	return enabled, nil
}

func record(cfg *Config, enabled bool) error {
	if enabled {
		cfg.Enable()
	} else {
		cfg.Disable()
	}
	return cfg.Save()
}
