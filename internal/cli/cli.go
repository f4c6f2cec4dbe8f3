package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/log"
	internal_storage "github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/storage"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/pkg/service"
	"github.com/spf13/cobra"
)

func SetupCLI(rootCmd *cobra.Command) {
	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new workflow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			owner, _ := cmd.Flags().GetString("owner")
			org, _ := cmd.Flags().GetString("org")
			config, _ := cmd.Flags().GetString("config")
			svc := service.NewWorkflowService(store, log.GetLogger())
			id, err := svc.CreateWorkflow(service.CreateWorkflowInput{
				OwnerID:    owner,
				OrgID:      org,
				Title:      args[0],
				JSONConfig: config,
			})
			if err != nil {
				log.GetLogger().Errorf("Failed to create workflow: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to create workflow: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Created workflow '%s' with ID %d\n", args[0], id)
		},
	}
	createCmd.Flags().String("owner", "cli", "Owning user id")
	createCmd.Flags().String("org", "default", "Owning organization id")
	createCmd.Flags().String("config", "", "Serialized graph configuration (JSON)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all workflows",
		Run: func(cmd *cobra.Command, args []string) {
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewWorkflowService(store, log.GetLogger())
			workflows, err := svc.ListWorkflows("")
			if err != nil {
				log.GetLogger().Errorf("Failed to list workflows: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to list workflows: %v\n", err)
				os.Exit(1)
			}
			if len(workflows) == 0 {
				fmt.Fprintf(os.Stdout, "No workflows found.\n")
				return
			}
			fmt.Fprintf(os.Stdout, "Workflows:\n")
			for _, wf := range workflows {
				fmt.Fprintf(os.Stdout, "- ID: %d, Title: %s, Status: %s, Created: %s\n",
					wf.ID, wf.Title, wf.Status, wf.CreatedAt.Format(time.RFC3339))
			}
		},
	}

	activateCmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Activate a workflow so it can be run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewWorkflowService(store, log.GetLogger())
			if err := svc.ActivateWorkflow(id); err != nil {
				log.GetLogger().Errorf("Failed to activate workflow: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to activate workflow: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Activated workflow with ID %d\n", id)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Execute an active workflow's graph",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			store := initStore(cmd)
			defer store.Close()
			runner := service.NewWorkflowRunner(store, log.GetLogger())
			result, err := runner.StartRun(context.Background(), id, "cli")
			if err != nil {
				log.GetLogger().Errorf("Run failed: %v", err)
				fmt.Fprintf(os.Stderr, "Error: run failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Run %d completed successfully\n", result.RunID)
		},
	}

	logsCmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "Print the log trace of a run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			store := initStore(cmd)
			defer store.Close()
			svc := service.NewWorkflowService(store, log.GetLogger())
			logs, err := svc.GetRunLogs(id)
			if err != nil {
				log.GetLogger().Errorf("Failed to fetch run logs: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to fetch run logs: %v\n", err)
				os.Exit(1)
			}
			for _, l := range logs {
				fmt.Fprintf(os.Stdout, "%3d %s %s\n", l.Seq, l.LoggedAt.Format(time.RFC3339), l.Message)
			}
		},
	}

	rootCmd.AddCommand(createCmd, listCmd, activateCmd, runCmd, logsCmd)
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing id as number: %v\n", err)
		os.Exit(1)
	}
	return id
}

func initStore(cmd *cobra.Command) *internal_storage.PostgresStore {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
