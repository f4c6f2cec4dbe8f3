package main

import (
	"fmt"
	"os"

	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/cli"
	internal_http "github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/http"
	"github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/log"
	internal_storage "github.com/anirazizfsm-maker/ai-workflow-builder-sub000/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "flowd"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow management server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.GetLogger().Debugf("No .env file found: %v", err)
		}
		dbConnStr, _ := cmd.Flags().GetString("db")
		if dbConnStr == "" {
			dbConnStr = os.Getenv("DATABASE_URL")
		}
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = os.Getenv("PORT")
		}
		if port == "" {
			port = "8080"
		}
		store, err := internal_storage.InitStore(dbConnStr)
		if err != nil {
			log.GetLogger().Errorf("Failed to initialize store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := internal_http.StartServer(port, store); err != nil {
			log.GetLogger().Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("db", "", "Database connection string")
	serveCmd.Flags().String("port", "", "HTTP listen port (default 8080 or $PORT)")
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
