package options

import (
	"time"

	"github.com/manifoldco/promptui"

	"tableflip.dev/lifedots/pkg/lifecal"
)

// BirthDateValidator rejects anything lifecal would not accept as a birth
// date on now.
func BirthDateValidator(now time.Time) promptui.ValidateFunc {
	return func(input string) error {
		_, err := lifecal.ParseBirthDate(input, now)
		return err
	}
}

// PromptBirthDate asks for a birth date on the terminal until a valid one is
// entered.
func PromptBirthDate(now time.Time) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}

	prompt := promptui.Prompt{
		Label:     "When were you born? (YYYY-MM-DD)",
		Templates: templates,
		Validate:  BirthDateValidator(now),
	}
	return prompt.Run()
}
