package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

// errNotConfigured is returned when a command runs before its service exists.
var errNotConfigured = errors.New("service not configured")

// parseNutrients turns name=amount arguments into a vector. Amounts must be
// numbers; range checks are left to the services.
func parseNutrients(args []string) (domain.NutrientVector, error) {
	v := make(domain.NutrientVector, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, domain.NewValidationError("nutrients", fmt.Sprintf("%q is not name=amount", arg))
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, domain.NewValidationError(name, fmt.Sprintf("%q is not a number", raw))
		}
		v[name] = amount
	}
	return v, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// terminalWidth reports the width of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}
