package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/daily-hug/internal/client"
	"github.com/zhouzirui/daily-hug/internal/config"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
	chatui "github.com/zhouzirui/daily-hug/internal/ui/chat"
)

// options 是启动界面收集到的会话参数。
type options struct {
	userName    string
	personaName string
	traits      []string
	endpoint    string
	timeout     time.Duration
	logFile     string
	markFailed  bool
}

func main() {
	// .env 缺失时直接使用系统环境变量
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg, run).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, runFn func(context.Context, persona.Params, options) error) *cobra.Command {
	opts := options{}
	traits := persona.NewMemoryStore(persona.Seed())

	cmd := &cobra.Command{
		Use:          "daily-hug",
		Short:        "Chat with a friendly persona in the terminal",
		Long:         "daily-hug opens a chat with a persona that greets you and keeps a light daily conversation going.\n\n" + traitHelp(traits),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := persona.NewParams(traits, opts.userName, opts.personaName, cfg.Session.DefaultPersonaName, opts.traits)
			if err != nil {
				return err
			}
			return runFn(cmd.Context(), params, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.userName, "user", "u", "", "your name")
	flags.StringVarP(&opts.personaName, "persona", "p", "", "persona name (default "+cfg.Session.DefaultPersonaName+")")
	flags.StringArrayVarP(&opts.traits, "trait", "t", nil, fmt.Sprintf("persona trait, repeat up to %d times", persona.MaxTraits))
	flags.StringVar(&opts.endpoint, "endpoint", cfg.Client.EndpointURL, "chat endpoint base URL")
	flags.DurationVar(&opts.timeout, "timeout", cfg.Client.Timeout, "per-request timeout")
	flags.StringVar(&opts.logFile, "log-file", "daily-hug.log", "file receiving diagnostics while the screen is open")
	flags.BoolVar(&opts.markFailed, "mark-failed", cfg.Session.MarkFailedTurns, "mark replies that never arrived instead of leaving them pending")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func traitHelp(traits persona.Store) string {
	help := "Traits:"
	for _, trait := range traits.List() {
		help += fmt.Sprintf("\n  %s (%s)", trait.Label, trait.Gloss)
	}
	return help
}

func run(ctx context.Context, params persona.Params, opts options) error {
	logFile, err := tea.LogToFile(opts.logFile, "daily-hug")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	endpoint := client.New(client.Config{BaseURL: opts.endpoint, Timeout: opts.timeout})

	controllerOpts := []conversation.Option{conversation.WithLogger(log.Default())}
	if opts.markFailed {
		controllerOpts = append(controllerOpts, conversation.WithFailureMarking())
	}
	controller := conversation.NewController(params, endpoint, controllerOpts...)

	log.Printf("[chat] session start user=%s persona=%s traits=%q endpoint=%s", params.UserName(), params.PersonaName(), params.JoinedTraits(), opts.endpoint)

	program := tea.NewProgram(chatui.New(ctx, controller, persona.NewMemoryStore(persona.Seed())), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat screen: %w", err)
	}
	return nil
}
