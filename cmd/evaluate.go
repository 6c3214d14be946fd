package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/essay-feedback/internal/config"
	"github.com/giantswarm/essay-feedback/internal/essay"
	"github.com/giantswarm/essay-feedback/internal/evaluator"
	"github.com/giantswarm/essay-feedback/internal/llm"
	"github.com/giantswarm/essay-feedback/internal/prompt"
	"github.com/giantswarm/essay-feedback/internal/selector"
)

const resultHeader = "Resultado da avaliação:"

type evaluateOptions struct {
	model       string
	endpoint    string
	apiKey      string
	promptsFile string
	temperature float64
	retries     int
	timeout     time.Duration
	index       int
}

func (o *evaluateOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.model, "model", "", "Model name (default from prompt config, gemma:7b)")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "", "OpenAI-compatible API endpoint (default "+llm.DefaultBaseURL+")")
	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "API key, if the endpoint needs one")
	cmd.Flags().StringVar(&o.promptsFile, "prompts", "", "YAML file overriding the prompt templates")
	cmd.Flags().Float64Var(&o.temperature, "temperature", 0, "Sampling temperature (server default when unset)")
	cmd.Flags().IntVar(&o.retries, "retries", 0, "Extra attempts after transient backend failures")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Timeout for the model call (e.g. 5m). 0 means no timeout")
	cmd.Flags().IntVar(&o.index, "index", 0, "1-based essay to evaluate; asks interactively when 0")
}

func (o *evaluateOptions) run(cmd *cobra.Command, args []string) error {
	env, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	promptsFile := o.promptsFile
	if promptsFile == "" {
		promptsFile = env.PromptsFile
	}
	promptCfg, err := prompt.Load(promptsFile)
	if err != nil {
		return err
	}
	builder, err := prompt.NewBuilder(promptCfg)
	if err != nil {
		return err
	}

	retries := env.Retries
	if cmd.Flags().Changed("retries") {
		retries = o.retries
	}

	evalCfg := evaluator.Config{Model: firstNonEmpty(o.model, env.Model, promptCfg.Model)}
	if cmd.Flags().Changed("temperature") {
		evalCfg.Temperature = llm.Float64Ptr(o.temperature)
	}

	client := newLLMClientFromFlags(env, o.endpoint, o.apiKey, retries)
	e := evaluator.New(client, builder, evalCfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}

	p := selector.New(cmd.InOrStdin(), cmd.OutOrStdout())
	return runEvaluation(ctx, p, cmd.OutOrStdout(), e, path, o.index)
}

// runEvaluation loads the batch, selects one record, evaluates it and
// prints it. Nothing is printed to out after a failure.
func runEvaluation(ctx context.Context, p *selector.Prompter, out io.Writer, e *evaluator.Evaluator, path string, index int) error {
	if path == "" {
		var err error
		if path, err = p.Path(); err != nil {
			return err
		}
	}

	batch, err := essay.LoadBatch(path)
	if err != nil {
		return err
	}
	slog.Debug("batch loaded", "file", path, "records", len(batch))

	if index == 0 {
		if index, err = p.Index(len(batch)); err != nil {
			return err
		}
	}
	rec, err := batch.Select(index)
	if err != nil {
		return err
	}

	if err := e.Apply(ctx, rec); err != nil {
		return err
	}

	fmt.Fprintln(out, resultHeader)
	return essay.Encode(out, rec)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
