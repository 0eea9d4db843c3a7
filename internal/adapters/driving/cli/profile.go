package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

var (
	profileJSON  bool
	profileInput domain.UserProfile
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change profile fields",
	Long: `Change the profile fields given as flags and keep the rest.

Example:
  nutrisense profile set --name Sam --timezone Europe/Berlin --activity moderate`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileInput.Name, "name", "", "how to address the user")
	f.Float64Var(&profileInput.WeightKg, "weight", 0, "body weight in kg")
	f.Float64Var(&profileInput.HeightCm, "height", 0, "height in cm")
	f.IntVar(&profileInput.Age, "age", 0, "age in years")
	f.StringVar(&profileInput.Sex, "sex", "", "sex")
	f.StringVar(&profileInput.ActivityLevel, "activity", "",
		"activity level ("+strings.Join(domain.ActivityLevels, ", ")+")")
	f.StringVar(&profileInput.DietaryPreferences, "diet", "", "dietary preferences")
	f.StringVar(&profileInput.FoodAllergies, "allergies", "", "food allergies or intolerances")
	f.StringVar(&profileInput.HealthConditions, "conditions", "", "health conditions")
	f.StringVar(&profileInput.Timezone, "timezone", "", "IANA timezone used for day windows")

	for _, c := range []*cobra.Command{profileShowCmd, profileSetCmd} {
		c.Flags().BoolVar(&profileJSON, "json", false, "output as JSON")
		profileCmd.AddCommand(c)
	}
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	if profileService == nil {
		return fmt.Errorf("profile %w", errNotConfigured)
	}
	profile, err := profileService.Get(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return outputProfile(cmd, profile)
}

func runProfileSet(cmd *cobra.Command, _ []string) error {
	if profileService == nil {
		return fmt.Errorf("profile %w", errNotConfigured)
	}
	ctx := cmd.Context()

	current, err := profileService.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		current = &domain.UserProfile{UserID: userID}
	case err != nil:
		return err
	}

	next := *current
	flags := cmd.Flags()
	if flags.Changed("name") {
		next.Name = profileInput.Name
	}
	if flags.Changed("weight") {
		next.WeightKg = profileInput.WeightKg
	}
	if flags.Changed("height") {
		next.HeightCm = profileInput.HeightCm
	}
	if flags.Changed("age") {
		next.Age = profileInput.Age
	}
	if flags.Changed("sex") {
		next.Sex = profileInput.Sex
	}
	if flags.Changed("activity") {
		next.ActivityLevel = profileInput.ActivityLevel
	}
	if flags.Changed("diet") {
		next.DietaryPreferences = profileInput.DietaryPreferences
	}
	if flags.Changed("allergies") {
		next.FoodAllergies = profileInput.FoodAllergies
	}
	if flags.Changed("conditions") {
		next.HealthConditions = profileInput.HealthConditions
	}
	if flags.Changed("timezone") {
		next.Timezone = profileInput.Timezone
	}

	updated, err := profileService.Update(ctx, next)
	if err != nil {
		return err
	}
	return outputProfile(cmd, updated)
}

func outputProfile(cmd *cobra.Command, p *domain.UserProfile) error {
	view := present.FromProfile(p)
	if profileJSON {
		return printJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile for %s\n", view.UserID)
	fields := []struct {
		label string
		value string
	}{
		{"name", view.Name},
		{"weight_kg", optionalAmount(view.WeightKg)},
		{"height_cm", optionalAmount(view.HeightCm)},
		{"age", optionalAmount(float64(view.Age))},
		{"sex", view.Sex},
		{"activity", view.ActivityLevel},
		{"diet", view.DietaryPreferences},
		{"allergies", view.FoodAllergies},
		{"conditions", view.HealthConditions},
		{"timezone", view.Timezone},
		{"updated_at", view.UpdatedAt},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(out, "  %-12s %s\n", f.label, f.value)
	}
	return nil
}

func optionalAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return present.FormatAmount(v)
}
