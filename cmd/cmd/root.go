/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"autopress/internal/config"
	"autopress/internal/core"
	"autopress/internal/feeds"
	"autopress/internal/generate"
	"autopress/internal/images"
	"autopress/internal/keywords"
	"autopress/internal/llm"
	"autopress/internal/logger"
	"autopress/internal/pipeline"
	"autopress/internal/publish"
	"autopress/internal/server"
	"autopress/internal/store"
	"autopress/internal/topics"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autopress",
	Short: "Autopress writes and publishes blog articles unattended.",
	Long: `Autopress is an unattended article pipeline: each run picks a subject
from configured feeds or invents one, writes the article with Gemini,
derives keywords, finds a header image, and publishes the post.

Run it from cron for hands-off publishing, or start the HTTP server to
accept article requests from other systems.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.autopress.yaml)")

	runCmd.Flags().String("topic", "", "write about this topic instead of selecting one")
	runCmd.Flags().String("description", "", "one-line angle for --topic")
	runCmd.Flags().String("type", "", "content type for --topic (how-to, listicle, opinion, ...)")
	rootCmd.AddCommand(runCmd)

	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)

	topicsCmd.Flags().Int("limit", 20, "number of subjects to show")
	topicsCmd.Flags().Bool("dry-run", false, "select a subject and release it instead of listing used ones")
	rootCmd.AddCommand(topicsCmd)

	historyCmd.Flags().Int("limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline run and publish the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		p, st, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()

		var outcome core.PublishOutcome
		topic, _ := cmd.Flags().GetString("topic")
		if topic != "" {
			description, _ := cmd.Flags().GetString("description")
			typeName, _ := cmd.Flags().GetString("type")
			contentType := core.ContentTypeArticle
			if typeName != "" {
				contentType = core.ContentType(strings.ToLower(typeName))
				if !knownContentType(contentType) {
					return fmt.Errorf("unknown content type %q", typeName)
				}
			}
			outcome = p.RunWithSubject(ctx, &core.Subject{
				Title:       topic,
				Description: description,
				Origin:      core.OriginExternalRequest,
				ContentType: contentType,
			})
		} else {
			outcome = p.RunOnce(ctx)
		}

		printOutcome(outcome)
		if outcome.Status != core.StatusPublished {
			return fmt.Errorf("run %s did not publish: %s", outcome.RunID, outcome.Note)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for article requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}

		p, st, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(p, st, cfg.Server)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info("signal received, shutting down", "signal", sig.String())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List subjects the pipeline has already used",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			return dryRunSelection(cmd.Context(), cfg)
		}

		st, err := store.NewStore(cfg.App.DataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		subjects, err := st.ListUsedSubjects(limit)
		if err != nil {
			return err
		}

		if len(subjects) == 0 {
			fmt.Println("No subjects used yet.")
			return nil
		}
		for _, s := range subjects {
			fmt.Printf("%s  %-10s %-16s %s\n", s.Timestamp.Format("2006-01-02 15:04"), s.Status, s.Origin, s.Title)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent run outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		st, err := store.NewStore(cfg.App.DataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.RecentRuns(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		for _, r := range runs {
			line := fmt.Sprintf("%s  %-9s %s", r.Timestamp.Format("2006-01-02 15:04"), r.Status, r.Title)
			if r.URL != "" {
				line += "  " + r.URL
			}
			if r.Note != "" {
				line += "  (" + r.Note + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

// dryRunSelection runs topic selection once, prints the pick, and releases
// the reservation so a later run can still use it.
func dryRunSelection(ctx context.Context, cfg *config.Config) error {
	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	llmClient, err := llm.NewClient(cfg.AI.Gemini)
	if err != nil {
		return err
	}

	feedTimeout := 30 * time.Second
	if d, err := time.ParseDuration(cfg.Feeds.Timeout); err == nil {
		feedTimeout = d
	}
	selector := topics.NewSelector(feeds.NewManager(cfg.Feeds.UserAgent, feedTimeout), llmClient, st, topics.Options{
		FeedURLs:             cfg.Feeds.URLs,
		RandomThreshold:      cfg.Topics.RandomThreshold,
		MaxGenerationRetries: cfg.Topics.MaxGenerationRetries,
		Weights:              cfg.Topics.Weights,
	})

	subject, err := selector.Select(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Title:       %s\n", subject.Title)
	if subject.Description != "" {
		fmt.Printf("Description: %s\n", subject.Description)
	}
	fmt.Printf("Origin:      %s\n", subject.Origin)
	fmt.Printf("Type:        %s\n", subject.ContentType)
	if subject.SourceLink != "" {
		fmt.Printf("Source:      %s\n", subject.SourceLink)
	}

	return st.ReleaseSubject(subject.Title)
}

// buildPipeline wires every stage from configuration. The returned store must
// be closed by the caller.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *store.Store, error) {
	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening tracking store: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.AI.Gemini)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	feedTimeout := 30 * time.Second
	if d, err := time.ParseDuration(cfg.Feeds.Timeout); err == nil {
		feedTimeout = d
	}
	feedManager := feeds.NewManager(cfg.Feeds.UserAgent, feedTimeout)

	selector := topics.NewSelector(feedManager, llmClient, st, topics.Options{
		FeedURLs:             cfg.Feeds.URLs,
		RandomThreshold:      cfg.Topics.RandomThreshold,
		MaxGenerationRetries: cfg.Topics.MaxGenerationRetries,
		Weights:              cfg.Topics.Weights,
	})

	generator := generate.NewGenerator(llmClient, cfg.Publish.WordCount)
	extractor := keywords.NewExtractor(llmClient)

	var resolver pipeline.ImageResolver
	provider, err := images.NewProvider(images.ProviderType(cfg.Images.Provider), cfg.Images.Pexels.APIKey)
	if err != nil {
		logger.Warn("image provider unavailable, publishing without header images", "error", err.Error())
	} else {
		resolver = images.NewResolver(provider, cfg.Images.PageSize)
	}

	publisher, err := publish.NewBlogger(cfg.Publish.Blogger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return pipeline.New(selector, generator, extractor, resolver, publisher, st), st, nil
}

func knownContentType(ct core.ContentType) bool {
	for _, known := range core.ContentTypes() {
		if known == ct {
			return true
		}
	}
	return false
}

func printOutcome(outcome core.PublishOutcome) {
	fmt.Printf("Run:      %s\n", outcome.RunID)
	fmt.Printf("Status:   %s\n", outcome.Status)
	if outcome.Title != "" {
		fmt.Printf("Title:    %s\n", outcome.Title)
	}
	if outcome.URL != "" {
		fmt.Printf("URL:      %s\n", outcome.URL)
	}
	if len(outcome.Keywords) > 0 {
		fmt.Printf("Keywords: %s\n", strings.Join(outcome.Keywords, ", "))
	}
	if outcome.Note != "" {
		fmt.Printf("Note:     %s\n", outcome.Note)
	}
}
