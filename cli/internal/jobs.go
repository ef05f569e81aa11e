package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/freelancekenya/kazi/internal/api"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and apply to jobs",
	}

	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsShowCommand())
	cmd.AddCommand(newJobsApplyCommand())
	cmd.AddCommand(newJobsApplicationsCommand())

	return cmd
}

func newJobsListCommand() *cobra.Command {
	var (
		category  string
		search    string
		minBudget float64
		maxBudget float64
		skills    []string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open jobs",
		Long: `List open jobs, optionally filtered.

Examples:
  kazi jobs list
  kazi jobs list --search "logo design" --min-budget 500
  kazi jobs list --category 3 --skills 12,17`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			jobs, err := ctx.Backend.GetJobs(reqCtx, api.JobFilters{
				CategoryID:     category,
				SearchTerm:     search,
				MinBudget:      minBudget,
				MaxBudget:      maxBudget,
				SkillsRequired: skills,
			})
			if err != nil {
				return fmt.Errorf("failed to fetch jobs: %w", err)
			}

			if len(jobs) == 0 {
				fmt.Println("No open jobs match your filters.")
				return nil
			}

			if limit > 0 && len(jobs) > limit {
				jobs = jobs[:limit]
			}

			var md strings.Builder
			fmt.Fprintf(&md, "# Open jobs (%d)\n\n", len(jobs))
			for _, job := range jobs {
				fmt.Fprintf(&md, "## %s\n\n", job.Title)
				fmt.Fprintf(&md, "`%s` | %s | KSh %.0f - %.0f (%s)",
					job.ID, job.Category, job.BudgetMin, job.BudgetMax, job.PaymentType)
				if job.IsUrgent {
					md.WriteString(" | **URGENT**")
				}
				md.WriteString("\n\n")
				md.WriteString(job.Description)
				md.WriteString("\n\n")
				if len(job.SkillsRequired) > 0 {
					names := make([]string, len(job.SkillsRequired))
					for i, s := range job.SkillsRequired {
						names[i] = s.Name
					}
					fmt.Fprintf(&md, "Skills: %s\n\n", strings.Join(names, ", "))
				}
				fmt.Fprintf(&md, "Client: %s (%.1f) | Applicants: %d\n\n",
					job.ClientName, job.ClientRating, job.ApplicantsCount)
			}

			return printMarkdown(ctx.Config, md.String())
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category ID filter")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term")
	cmd.Flags().Float64Var(&minBudget, "min-budget", 0, "Minimum budget in KSh")
	cmd.Flags().Float64Var(&maxBudget, "max-budget", 0, "Maximum budget in KSh")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Skill ID filters")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum jobs to show (0 = all)")

	return cmd
}

func newJobsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show a job posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			// The backend has no single-job endpoint; select from the listing
			jobs, err := ctx.Backend.GetJobs(reqCtx, api.JobFilters{})
			if err != nil {
				return fmt.Errorf("failed to fetch jobs: %w", err)
			}

			for _, job := range jobs {
				if job.ID != args[0] {
					continue
				}

				var md strings.Builder
				fmt.Fprintf(&md, "# %s\n\n", job.Title)
				fmt.Fprintf(&md, "Category: %s | Budget: KSh %.0f - %.0f (%s) | Posted: %s\n\n",
					job.Category, job.BudgetMin, job.BudgetMax, job.PaymentType, job.CreatedAt)
				if job.IsUrgent {
					md.WriteString("**URGENT**\n\n")
				}
				md.WriteString(job.Description)
				md.WriteString("\n\n")
				if len(job.SkillsRequired) > 0 {
					names := make([]string, len(job.SkillsRequired))
					for i, s := range job.SkillsRequired {
						names[i] = s.Name
					}
					fmt.Fprintf(&md, "Skills: %s\n\n", strings.Join(names, ", "))
				}
				fmt.Fprintf(&md, "Client: %s (%.1f) | Applicants: %d\n",
					job.ClientName, job.ClientRating, job.ApplicantsCount)

				return printMarkdown(ctx.Config, md.String())
			}

			return fmt.Errorf("job %q not found", args[0])
		},
	}
}

func newJobsApplyCommand() *cobra.Command {
	var (
		coverLetter  string
		proposedRate float64
	)

	cmd := &cobra.Command{
		Use:   "apply JOB_ID",
		Short: "Apply to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			ack, err := ctx.Backend.ApplyToJob(reqCtx, api.JobApplicationRequest{
				JobID:        args[0],
				FreelancerID: userID,
				CoverLetter:  coverLetter,
				FixedPrice:   proposedRate,
			})
			if err != nil {
				return fmt.Errorf("application failed: %w", err)
			}

			if ack.Message != "" {
				fmt.Println(ack.Message)
			} else {
				fmt.Println("✓ Application submitted")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&coverLetter, "message", "m", "", "Cover letter")
	cmd.Flags().Float64Var(&proposedRate, "rate", 0, "Proposed rate in KSh")
	cmd.MarkFlagRequired("message")

	return cmd
}

func newJobsApplicationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "applications",
		Short: "List your job applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			applications, err := ctx.Backend.GetJobApplications(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch applications: %w", err)
			}

			if len(applications) == 0 {
				fmt.Println("No applications yet.")
				return nil
			}

			var md strings.Builder
			fmt.Fprintf(&md, "# Your applications (%d)\n\n", len(applications))
			fmt.Fprintf(&md, "| Job | Status | Applied |\n|---|---|---|\n")
			for _, app := range applications {
				fmt.Fprintf(&md, "| %s | %s | %s |\n", app.JobTitle, app.Status, app.AppliedAt)
			}

			return printMarkdown(ctx.Config, md.String())
		},
	}
}
