package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/email-classifier/internal/classifier"
	"github.com/email-classifier/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type classifyOptions struct {
	file    string
	example bool
	index   int
	json    bool
}

func NewClassifyCommand(root *rootOptions) *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify an email",
		Long: `Classify email text given as arguments, read from stdin, or extracted from a
.txt or .pdf file. Prints the category, confidence and suggested reply.`,
		Example: `  emailclassifier classify "Preciso de ajuda com o login"
  emailclassifier classify --file chamado.pdf
  cat email.txt | emailclassifier classify
  emailclassifier classify --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Classify a .txt or .pdf file")
	cmd.Flags().BoolVar(&opts.example, "example", false, "Classify a built-in example email")
	cmd.Flags().IntVar(&opts.index, "example-index", -1, "Pick a specific example (0-based) instead of a random one")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("file", "example")

	return cmd
}

func runClassify(cmd *cobra.Command, root *rootOptions, opts *classifyOptions, args []string) error {
	errOut := cmd.ErrOrStderr()
	notifier := classifier.NotifierFunc(func(n domain.Notification) {
		if n.Level == domain.NotifyWarning {
			renderNotification(errOut, n)
		}
	})

	a, err := newApp(root, false)
	if err != nil {
		return err
	}
	defer a.Close()
	a.startController(notifier)

	source, err := classifySource(cmd, opts, args, a.controller.MaxFileSize())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if a.cfg.Submission.RequireAvailability {
		a.controller.CheckHealth(ctx)
	}

	result, err := a.controller.Process(ctx, source)
	if err != nil {
		a.logger.Debug("classification failed", zap.Error(err))
		return err
	}

	if opts.json {
		return renderJSON(cmd.OutOrStdout(), result)
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

// classifySource picks the input: --file, --example, arguments, then stdin.
func classifySource(cmd *cobra.Command, opts *classifyOptions, args []string, maxFileSize int64) (domain.Source, error) {
	switch {
	case opts.file != "":
		file, err := readFile(opts.file, maxFileSize)
		if err != nil {
			return domain.Source{}, err
		}
		return domain.FileSource(file), nil

	case opts.example || opts.index >= 0:
		example := pickExample(opts.index)
		fmt.Fprintf(cmd.ErrOrStderr(), "Example: %s (expected %s)\n", example.Description, example.Expected)
		return domain.TextSource(example.Text), nil

	case len(args) > 0:
		return domain.TextSource(strings.Join(args, " ")), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return domain.Source{}, errors.New("no input: pass text, --file, --example or pipe text on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return domain.Source{}, fmt.Errorf("failed to read stdin: %w", err)
	}
	return domain.TextSource(string(data)), nil
}

// readFile loads path, rejecting files over maxSize before reading them.
func readFile(path string, maxSize int64) (*domain.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewValidationError("file", err)
	}
	if info.Size() > maxSize {
		return nil, domain.NewValidationError("file", domain.ErrFileTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewValidationError("file", err)
	}
	defer f.Close()

	// The file may grow between Stat and Open.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, domain.NewValidationError("file", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.NewValidationError("file", domain.ErrFileTooLarge)
	}

	return classifier.NewFile(filepath.Base(path), "", data), nil
}
