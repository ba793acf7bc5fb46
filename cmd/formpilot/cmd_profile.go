package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formpilot/internal/api"
)

// profileCmd manages the stored answer profile
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your stored answer profile",
	Long: `The profile holds the answers used to fill forms: name, register number,
department, contact details and so on. Fields not covered by the fixed set
go in extra fields as key=value pairs.

Available subcommands:
  show - Print the stored profile
  set  - Create or update profile fields`,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile",
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update profile fields",
	Long: `Set profile fields from flags. Only the flags you pass change; other
fields keep their stored values.

Example:
  formpilot profile set --name "Alice Example" --department CSE --year 3
  formpilot profile set --extra "dietary=vegetarian" --extra "tshirt=M"`,
	RunE: runProfileSet,
}

var profileClearCmd = &cobra.Command{
	Use:   "clear-field <field>",
	Short: "Blank out one profile field",
	Long: `Clear a stored field so it no longer answers questions. Field names match
the set flags (name, register, department, ...), or an extra-field key.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileClear,
}

var profileFlags struct {
	fullName       string
	registerNumber string
	department     string
	year           string
	email          string
	phone          string
	gender         string
	collegeName    string
	address        string
	skills         string
	interests      string
	bio            string
	extras         []string
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	p, err := client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	if p == nil {
		fmt.Println("No profile yet. Run 'formpilot profile set' to create one.")
		return nil
	}

	printField := func(label, value string) {
		if value != "" {
			fmt.Printf("  %-16s %s\n", label+":", value)
		}
	}

	fmt.Println("Profile")
	fmt.Println(strings.Repeat("-", 40))
	printField("Name", p.FullName)
	printField("Register no", p.RegisterNumber)
	printField("Department", p.Department)
	printField("Year", p.Year)
	printField("Email", p.Email)
	printField("Phone", p.Phone)
	printField("Gender", p.Gender)
	printField("College", p.CollegeName)
	printField("Address", p.Address)
	printField("Skills", p.Skills)
	printField("Interests", p.Interests)
	printField("Bio", p.Bio)

	if len(p.ExtraFields) > 0 {
		fmt.Println("  Extra fields:")
		for k, v := range p.ExtraFields {
			fmt.Printf("    %s = %s\n", k, v)
		}
	}
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	existing, err := client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}

	var p api.Profile
	creating := existing == nil
	if !creating {
		p = *existing
	}

	// Only flags the user passed overwrite stored values.
	apply := func(flag string, dst *string, value string) {
		if cmd.Flags().Changed(flag) {
			*dst = value
		}
	}
	apply("name", &p.FullName, profileFlags.fullName)
	apply("register", &p.RegisterNumber, profileFlags.registerNumber)
	apply("department", &p.Department, profileFlags.department)
	apply("year", &p.Year, profileFlags.year)
	apply("email", &p.Email, profileFlags.email)
	apply("phone", &p.Phone, profileFlags.phone)
	apply("gender", &p.Gender, profileFlags.gender)
	apply("college", &p.CollegeName, profileFlags.collegeName)
	apply("address", &p.Address, profileFlags.address)
	apply("skills", &p.Skills, profileFlags.skills)
	apply("interests", &p.Interests, profileFlags.interests)
	apply("bio", &p.Bio, profileFlags.bio)

	for _, kv := range profileFlags.extras {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --extra %q, expected key=value", kv)
		}
		if p.ExtraFields == nil {
			p.ExtraFields = make(map[string]string)
		}
		p.ExtraFields[key] = value
	}

	var saved *api.Profile
	if creating {
		saved, err = client.SaveProfile(cmd.Context(), p)
	} else {
		saved, err = client.UpdateProfile(cmd.Context(), p)
	}
	if err != nil {
		return err
	}

	if creating {
		fmt.Printf("✓ Profile created for %s\n", saved.FullName)
	} else {
		fmt.Println("✓ Profile updated")
	}
	return nil
}

func runProfileClear(cmd *cobra.Command, args []string) error {
	client, store, _, err := newClient()
	if err != nil {
		return err
	}
	if err := requireLogin(store); err != nil {
		return err
	}

	existing, err := client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no profile to clear")
	}

	p := *existing
	field := args[0]
	targets := map[string]*string{
		"name":       &p.FullName,
		"register":   &p.RegisterNumber,
		"department": &p.Department,
		"year":       &p.Year,
		"email":      &p.Email,
		"phone":      &p.Phone,
		"gender":     &p.Gender,
		"college":    &p.CollegeName,
		"address":    &p.Address,
		"skills":     &p.Skills,
		"interests":  &p.Interests,
		"bio":        &p.Bio,
	}

	if dst, ok := targets[field]; ok {
		*dst = ""
	} else if _, ok := p.ExtraFields[field]; ok {
		delete(p.ExtraFields, field)
	} else {
		return fmt.Errorf("unknown field %q", field)
	}

	if _, err := client.UpdateProfile(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Printf("✓ Cleared %s\n", field)
	return nil
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileFlags.fullName, "name", "", "Full name")
	f.StringVar(&profileFlags.registerNumber, "register", "", "Register number")
	f.StringVar(&profileFlags.department, "department", "", "Department")
	f.StringVar(&profileFlags.year, "year", "", "Year of study")
	f.StringVar(&profileFlags.email, "email", "", "Contact email")
	f.StringVar(&profileFlags.phone, "phone", "", "Phone number")
	f.StringVar(&profileFlags.gender, "gender", "", "Gender")
	f.StringVar(&profileFlags.collegeName, "college", "", "College name")
	f.StringVar(&profileFlags.address, "address", "", "Address")
	f.StringVar(&profileFlags.skills, "skills", "", "Comma-separated skills")
	f.StringVar(&profileFlags.interests, "interests", "", "Comma-separated interests")
	f.StringVar(&profileFlags.bio, "bio", "", "Short bio")
	f.StringArrayVar(&profileFlags.extras, "extra", nil, "Extra field as key=value (repeatable)")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileClearCmd)
}
