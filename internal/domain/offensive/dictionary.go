package offensive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/forPelevin/vidlyze/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Entry binds a moderation category (wire name) to its watch-words.
type Entry struct {
	Category string   `json:"category" validate:"required"`
	Words    []string `json:"words" validate:"min=1,dive,required"`
}

// Dictionary is ordered; matching walks it front to back.
type Dictionary []Entry

func DefaultDictionary() Dictionary {
	return Dictionary{
		{Category: "hate", Words: []string{"hateword1", "hateword2"}},
		{Category: "harassment", Words: []string{"fuck", "harassword2"}},
		{Category: "self-harm", Words: []string{"suicide", "harmword2"}},
	}
}

// LoadDictionary reads a JSON array of entries.
func LoadDictionary(path string) (Dictionary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Dictionary
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return d, nil
}

func (d Dictionary) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("no entries")
	}
	for i, e := range d {
		if err := validate.Struct(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, fieldError(err))
		}
		if !slices.Contains(types.CategoryNames, e.Category) {
			return fmt.Errorf("entry %d: unknown category %q", i, e.Category)
		}
		for _, w := range e.Words {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("entry %d (%s): empty watch-word", i, e.Category)
			}
			if strings.ContainsFunc(w, isSpace) {
				return fmt.Errorf("entry %d (%s): watch-word %q contains whitespace", i, e.Category, w)
			}
		}
	}
	return nil
}

func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return fmt.Errorf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag())
}

// Clone returns a deep copy so callers cannot mutate shared configuration.
func (d Dictionary) Clone() Dictionary {
	out := make(Dictionary, len(d))
	for i, e := range d {
		out[i] = Entry{Category: e.Category, Words: slices.Clone(e.Words)}
	}
	return out
}
