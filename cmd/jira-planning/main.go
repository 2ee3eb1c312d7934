package main

import (
	"fmt"
	"os"

	"github.com/Tsess/jira-planning/internal/cmd"
	apperrors "github.com/Tsess/jira-planning/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		switch {
		case cmd.IsSilent(err):
		case apperrors.IsUserFacing(err):
			fmt.Fprintln(os.Stderr, err)
		default:
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
