package cmd_test

import (
	"testing"

	"go.followtheprocess.codes/test"
	"go.tmplforge.dev/tmplforge/internal/cmd"
)

func TestSmoke(t *testing.T) {
	_, err := cmd.Build()
	test.Ok(t, err)
}
