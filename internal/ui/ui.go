package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Printf("\n%s %s\n", ColorBold("▶"), ColorBold(title))
	fmt.Println(strings.Repeat("─", 50))
}

// PrintKeyValue prints a key-value pair in a formatted way
func PrintKeyValue(key, value string) {
	fmt.Printf("  %-20s %s\n", ColorDim(key+":"), value)
}

// ShowStepExecution displays the batch step currently running
func ShowStepExecution(step string, current, total int) {
	fmt.Printf("\n%s Running [%d/%d]: %s\n",
		ColorProgress("►"),
		current,
		total,
		ColorBold(step),
	)
}

// ShowStepResult displays the result of a batch step
func ShowStepResult(step string, success bool, message string, duration string) {
	if success {
		fmt.Printf("  %s %s (%s)\n",
			ColorSuccess("✓"),
			step,
			ColorDim(duration),
		)
	} else {
		fmt.Printf("  %s %s\n",
			ColorError("✗"),
			step,
		)
		if message != "" {
			fmt.Printf("    %s\n", ColorError(message))
		}
	}
}

// Input displays a text input prompt
func Input(message, defaultValue, help string) (string, error) {
	var result string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Password displays a password input prompt
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// Select displays a selection prompt
func Select(message string, options []string) (string, error) {
	var result string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}

	err := survey.AskOne(prompt, &result)
	return result, err
}

// ShowLogo displays the application logo
func ShowLogo() {
	logo := `
   _____ _       _        _____
  |  ___| | __ _| | _____|  ___|__  _ __ __ _  ___
  | |_  | |/ _` + "`" + ` | |/ / _ \ |_ / _ \| '__/ _` + "`" + ` |/ _ \
  |  _| | | (_| |   <  __/  _| (_) | | | (_| |  __/
  |_|   |_|\__,_|_|\_\___|_|  \___/|_|  \__, |\___|
                                        |___/
        Bronze, silver, gold - one command
`
	fmt.Println(ColorInfo(logo))
}
