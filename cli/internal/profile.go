package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/freelancekenya/kazi/internal/api"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileAddSkillCommand())

	return cmd
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			profile, err := ctx.Backend.GetUserProfile(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch profile: %w", err)
			}

			var md strings.Builder
			fmt.Fprintf(&md, "# %s\n\n", profile.FullName)
			fmt.Fprintf(&md, "- Email: %s\n", profile.Email)
			if profile.PhoneNumber != "" {
				fmt.Fprintf(&md, "- Phone: %s\n", profile.PhoneNumber)
			}
			if profile.Town != "" {
				fmt.Fprintf(&md, "- Town: %s\n", profile.Town)
			}
			if profile.ReferralCode != "" {
				fmt.Fprintf(&md, "- Referral code: `%s`\n", profile.ReferralCode)
			}
			if profile.TotalReviews > 0 {
				fmt.Fprintf(&md, "- Rating: %.1f (%d reviews)\n", profile.Rating, profile.TotalReviews)
			}
			if profile.IsAvailable {
				md.WriteString("- Available for work\n")
			}
			md.WriteString("\n")

			if len(profile.Skills) > 0 {
				md.WriteString("## Skills\n\n")
				for _, skill := range profile.Skills {
					fmt.Fprintf(&md, "- %s (level %d, %d years)\n",
						skill.SkillName, skill.ProficiencyLevel, skill.YearsExperience)
				}
				md.WriteString("\n")
			}

			if len(profile.Portfolio) > 0 {
				md.WriteString("## Portfolio\n\n")
				for _, item := range profile.Portfolio {
					fmt.Fprintf(&md, "- **%s**: %s\n", item.Title, item.Description)
				}
			}

			return printMarkdown(ctx.Config, md.String())
		},
	}
}

func newProfileAddSkillCommand() *cobra.Command {
	var (
		proficiency int
		years       int
	)

	cmd := &cobra.Command{
		Use:   "add-skill SKILL_NAME",
		Short: "Add a skill to your profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			ack, err := ctx.Backend.AddSkill(reqCtx, api.AddSkillRequest{
				UserID:           userID,
				SkillName:        args[0],
				ProficiencyLevel: proficiency,
				YearsExperience:  years,
			})
			if err != nil {
				return fmt.Errorf("failed to add skill: %w", err)
			}

			if ack.Message != "" {
				fmt.Println(ack.Message)
			} else {
				fmt.Printf("✓ Skill %q added\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&proficiency, "proficiency", 3, "Proficiency level (1-5)")
	cmd.Flags().IntVar(&years, "years", 1, "Years of experience")

	return cmd
}
