package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kwclassify/internal/classifier"
	"kwclassify/internal/jobs"
	"kwclassify/internal/keywords"
	"kwclassify/internal/models"
)

type classifyOptions struct {
	topic      string
	file       string
	input      string
	threshold  int
	categories []string
	mode       string
	outputDir  string
}

// classifyOutput is printed to stdout when a job completes.
type classifyOutput struct {
	JobID        string            `json:"job_id"`
	Topic        string            `json:"topic"`
	Statistics   models.Statistics `json:"statistics"`
	AcceptedFile string            `json:"accepted_file"`
	RejectedFile string            `json:"rejected_file"`
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(global *globalOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a CSV file or keyword list in the foreground",
		Long: `Classify keywords against a topic without starting the server.

Keywords come from a CSV file with title, views and views_per_year columns
(--file) or from inline text with one keyword per line (--input). Statistics
and the exported file paths are printed as JSON when the job finishes.

Examples:
  kwclassify classify --topic "Ys video game series" --file keywords.csv
  kwclassify classify --topic "Ys video game series" --input $'ys origin walkthrough\nyes button'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(global, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			outputDir := rt.cfg.OutputDir
			if opts.outputDir != "" {
				outputDir = opts.outputDir
			}
			coordinator := jobs.NewCoordinator(jobs.NewStore(), classifier.New(rt.ollamaClient(), rt.log), outputDir, rt.log)

			var threshold *int
			if cmd.Flags().Changed("threshold") {
				threshold = &opts.threshold
			}

			return runClassify(ctx, coordinator, rt.defaults, opts, threshold, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.topic, "topic", "", "Topic to screen keywords against (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file with title, views, views_per_year columns")
	cmd.Flags().StringVar(&opts.input, "input", "", "Inline keywords, one per line (title[,views,views_per_year])")
	cmd.Flags().IntVar(&opts.threshold, "threshold", classifier.DefaultConfidenceThreshold, "Minimum relevance confidence (0-100)")
	cmd.Flags().StringSliceVar(&opts.categories, "categories", nil, "Comma-separated category list")
	cmd.Flags().StringVar(&opts.mode, "mode", string(classifier.ModeCombined), "Classification mode: combined or two_call")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for exported CSV files (default OUTPUT_DIR)")

	_ = cmd.MarkFlagRequired("topic")
	cmd.MarkFlagsMutuallyExclusive("file", "input")
	cmd.MarkFlagsOneRequired("file", "input")

	return cmd
}

func runClassify(ctx context.Context, coordinator *jobs.Coordinator, defaults classifier.Settings, opts *classifyOptions, threshold *int, stdout, stderr io.Writer) error {
	mode, err := classifier.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	settings := defaults.WithOverrides(threshold, opts.categories, "")
	if mode == classifier.ModeTwoCall {
		settings = settings.WithTwoCall("", "")
	}

	var rows []models.Keyword
	if opts.file != "" {
		rows, err = keywords.LoadFile(opts.file)
		if err != nil {
			return err
		}
	} else {
		rows = keywords.ParseManual(opts.input)
	}

	id, err := coordinator.Submit(opts.topic, rows, settings)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Classifying %d keywords (job %s)\n", len(rows), id)

	progress, err := waitWithProgress(ctx, coordinator, id, stderr)
	if err != nil {
		return err
	}
	if progress.Status == models.JobFailed {
		return errors.New("job failed: " + progress.Error)
	}

	res, err := coordinator.Results(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(classifyOutput{
		JobID:        id,
		Topic:        opts.topic,
		Statistics:   res.Statistics,
		AcceptedFile: res.AcceptedFile,
		RejectedFile: res.RejectedFile,
	})
}

// waitWithProgress blocks until the job finishes, reporting progress to w
// every second.
func waitWithProgress(ctx context.Context, coordinator *jobs.Coordinator, id string, w io.Writer) (models.JobProgress, error) {
	job, err := coordinator.Job(id)
	if err != nil {
		return models.JobProgress{}, err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-job.Done():
			return job.Progress(), nil
		case <-ctx.Done():
			return job.Progress(), ctx.Err()
		case <-ticker.C:
			p := job.Progress()
			if p.Progress != last {
				last = p.Progress
				fmt.Fprintf(w, "  %d/%d (%.1f%%) %s\n", p.Progress, p.Total, p.Percentage, p.CurrentKeyword)
			}
		}
	}
}
