package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/log"
	"github.com/sqlpilot/sqlpilot/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "sqlpilot",
	Short: "Natural language to SQL query assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("address", "0.0.0.0:8000", "listen address")
	flags.String("api-key", "", "OpenAI API key")
	flags.String("base-url", "", "OpenAI API base URL")
	flags.String("model", "gpt-4o", "model for all pipeline stages")
	flags.String("data-dir", ".", "directory for downloaded and materialized data")
	flags.String("cors-origin", "http://localhost:3000", "allowed CORS origin")
	flags.Bool("examine", false, "enable the query examination stage")
	flags.Bool("optimize", false, "enable the query optimization stage")
	flags.Bool("viz-advise", false, "enable the visualization advice stage")
	flags.Bool("debug", false, "enable debug logging")

	viper.BindPFlags(flags)
	viper.BindEnv("api_key", "OPENAI_API_KEY")
	viper.SetEnvPrefix("sqlpilot")
	viper.AutomaticEnv()
}

func serve() error {
	log.SetDebug(viper.GetBool("debug"))

	apiKey := viper.GetString("api-key")
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key is required (--api-key or OPENAI_API_KEY)")
	}

	completer := llm.NewOpenAI(&llm.Config{
		ApiKey:  apiKey,
		BaseUrl: viper.GetString("base-url"),
		Model:   viper.GetString("model"),
	})

	srv, err := server.New(&server.Config{
		Address:    viper.GetString("address"),
		CORSOrigin: viper.GetString("cors-origin"),
		DataDir:    viper.GetString("data-dir"),
		Examine:    viper.GetBool("examine"),
		Optimize:   viper.GetBool("optimize"),
		VizAdvise:  viper.GetBool("viz-advise"),
	}, completer)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.ListenAndServe()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v\n", err)
		os.Exit(1)
	}
}
