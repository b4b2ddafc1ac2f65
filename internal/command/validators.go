// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	validOutputFlagValues := []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

var apiVersionRe = regexp.MustCompile(`^[0-9A-Za-z._-]+$`)

// APIVersionValidator keeps the version usable as part of a file name.
func APIVersionValidator(value any) error {
	if !apiVersionRe.MatchString(value.(string)) {
		return errors.New("must be non-empty and contain only letters, digits, '.', '_' or '-'")
	}
	return nil
}

func PositiveValidator(value any) error {
	if value.(int) < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if value.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
